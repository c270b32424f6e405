package waves

import "testing"

func TestOptionGeneratorCount(t *testing.T) {
	g := NewOptionGenerator(5, 12)
	if got := g.Count(); got != 371293 {
		t.Fatalf("expected 13^5 = 371293, got %d", got)
	}
	if got := len(g.Options()); got != 371293 {
		t.Fatalf("expected 371293 tuples, got %d", got)
	}
}

func TestOptionGeneratorOrder(t *testing.T) {
	g := NewOptionGenerator(2, 1)
	opts := g.Options()

	want := [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	if len(opts) != len(want) {
		t.Fatalf("expected %d tuples, got %d", len(want), len(opts))
	}
	for i := range want {
		for j := range want[i] {
			if opts[i][j] != want[i][j] {
				t.Fatalf("tuple %d: expected %v, got %v", i, want[i], opts[i])
			}
		}
	}
}

func TestOptionGeneratorSumOrdering(t *testing.T) {
	g := NewOptionGenerator(3, 2)
	opts := g.Options()

	prev := -1
	for _, o := range opts {
		if s := tupleSum(o); s < prev {
			t.Fatalf("tuples not ordered by sum: %v after sum %d", o, prev)
		} else {
			prev = s
		}
	}
}

func TestOptionGeneratorMemoized(t *testing.T) {
	g := NewOptionGenerator(3, 3)
	a := g.Options()
	b := g.Options()
	if &a[0] != &b[0] {
		t.Fatalf("expected shared backing slice across calls")
	}
}

func TestOptionGeneratorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for zero arity")
		}
	}()
	NewOptionGenerator(0, 3)
}
