package waves

import "sort"

// OptionGenerator enumerates every skip tuple of a fixed arity with
// components in [0, bound]. Tuples are ordered by ascending component sum,
// ties broken lexicographically, so simpler (lower-skip) readings are tried
// first. The generator imposes no ceiling on bound; callers are responsible
// for keeping (bound+1)^arity tractable.
type OptionGenerator struct {
	arity   int
	bound   int
	options [][]int
}

// NewOptionGenerator creates a generator. arity must be positive and bound
// non-negative; anything else is a programming error.
func NewOptionGenerator(arity, bound int) *OptionGenerator {
	if arity <= 0 {
		panic("waves: option generator arity must be positive")
	}
	if bound < 0 {
		panic("waves: option generator bound must be non-negative")
	}
	return &OptionGenerator{arity: arity, bound: bound}
}

// Count returns (bound+1)^arity, the number of tuples produced.
func (g *OptionGenerator) Count() int {
	n := 1
	for i := 0; i < g.arity; i++ {
		n *= g.bound + 1
	}
	return n
}

// Options returns all tuples in search order. The slice is computed once and
// shared between calls; callers must not mutate it.
func (g *OptionGenerator) Options() [][]int {
	if g.options != nil {
		return g.options
	}

	// Bounded odometer: lexicographic enumeration, then a stable reorder by
	// component sum.
	all := make([][]int, 0, g.Count())
	cur := make([]int, g.arity)
	for {
		tuple := make([]int, g.arity)
		copy(tuple, cur)
		all = append(all, tuple)

		i := g.arity - 1
		for i >= 0 && cur[i] == g.bound {
			cur[i] = 0
			i--
		}
		if i < 0 {
			break
		}
		cur[i]++
	}

	sort.SliceStable(all, func(a, b int) bool {
		sa, sb := tupleSum(all[a]), tupleSum(all[b])
		if sa != sb {
			return sa < sb
		}
		for i := range all[a] {
			if all[a][i] != all[b][i] {
				return all[a][i] < all[b][i]
			}
		}
		return false
	})

	g.options = all
	return g.options
}

func tupleSum(t []int) int {
	s := 0
	for _, v := range t {
		s += v
	}
	return s
}
