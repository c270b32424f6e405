package waves

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// scanMinBars is how much series must remain past a start index for a scan
// to bother searching there.
const scanMinBars = 50

// Candidate couples a structurally valid pattern with its score and the
// skip tuple that produced it.
type Candidate struct {
	Pattern *Pattern
	Score   Score
	Skips   []int
}

func (c Candidate) Probability() float64 { return c.Score.Probability }

// SearchResult is the outcome of a best-pattern search with targets.
type SearchResult struct {
	Found        bool
	Message      string
	Candidate    *Candidate
	CurrentPrice float64
	Targets      *TargetSet
	Levels       *SupportResistance
}

// Distribution groups candidates from one start index into probability
// bands.
type Distribution struct {
	Found      bool
	Message    string
	Total      int
	Best       *Candidate
	Bands      map[string]*DistributionBand
	Candidates []Candidate
}

type DistributionBand struct {
	Count          int
	SkipTuples     [][]int
	AvgProbability float64
}

var distributionBands = []struct {
	name  string
	floor float64
}{
	{"90-100%", 90},
	{"80-89%", 80},
	{"70-79%", 70},
	{"60-69%", 60},
	{"50-59%", 0},
}

// ScanHit is one pattern located by a whole-series scan.
type ScanHit struct {
	StartIdx  int
	StartTime time.Time
	EndIdx    int
	EndTime   time.Time
	Candidate Candidate
}

// Searcher enumerates skip tuples at a start index, keeps the structurally
// valid patterns clearing the probability floor, and ranks them.
type Searcher struct {
	tun            Tunables
	scorer         *Scorer
	targets        *TargetCalculator
	impulseGen     *OptionGenerator
	correctionGen  *OptionGenerator
	minProbability float64
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithSkipBounds replaces the default per-wave skip ceilings.
func WithSkipBounds(nImpulse, nCorrection int) SearcherOption {
	return func(s *Searcher) {
		s.impulseGen = NewOptionGenerator(5, nImpulse)
		s.correctionGen = NewOptionGenerator(3, nCorrection)
	}
}

// WithMinProbability replaces the default 50% probability floor.
func WithMinProbability(min float64) SearcherOption {
	return func(s *Searcher) { s.minProbability = min }
}

// WithTunables replaces the stock engine constants.
func WithTunables(tun Tunables) SearcherOption {
	return func(s *Searcher) {
		s.tun = tun
		s.scorer = NewScorer(tun, DefaultWeights())
		s.targets = NewTargetCalculator(tun)
	}
}

// NewSearcher builds a searcher with skip bounds of 12 per wave and a 50%
// probability floor unless overridden.
func NewSearcher(opts ...SearcherOption) *Searcher {
	tun := DefaultTunables()
	s := &Searcher{
		tun:            tun,
		scorer:         NewScorer(tun, DefaultWeights()),
		targets:        NewTargetCalculator(tun),
		impulseGen:     NewOptionGenerator(5, 12),
		correctionGen:  NewOptionGenerator(3, 12),
		minProbability: 50,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ImpulseCandidates returns the best impulse patterns starting at start,
// sorted by probability descending, at most max of them. Ties preserve
// search order, so simpler skip tuples win.
func (se *Searcher) ImpulseCandidates(s *Series, start, max int) []Candidate {
	var out []Candidate
	for _, skips := range se.impulseGen.Options() {
		p := buildImpulse(s, start, skips)
		if p == nil {
			continue
		}
		score := se.scorer.ScoreImpulse(p.Waves)
		if !score.Valid || score.Probability < se.minProbability {
			continue
		}
		out = append(out, Candidate{Pattern: p, Score: score, Skips: skips})
	}
	rankCandidates(out)
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// CorrectionCandidates is the three-wave counterpart of ImpulseCandidates.
func (se *Searcher) CorrectionCandidates(s *Series, start, max int) []Candidate {
	var out []Candidate
	for _, skips := range se.correctionGen.Options() {
		p := buildCorrection(s, start, skips)
		if p == nil {
			continue
		}
		score := se.scorer.ScoreCorrection(p.Waves)
		if !score.Valid || score.Probability < se.minProbability {
			continue
		}
		out = append(out, Candidate{Pattern: p, Score: score, Skips: skips})
	}
	rankCandidates(out)
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

func rankCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(a, b int) bool {
		return cs[a].Probability() > cs[b].Probability()
	})
}

// FindWithTargets locates the single best pattern at start and projects
// the forward targets from it: wave 5 for impulses, wave C for corrections.
// currentPrice < 0 substitutes the close at the pattern's end bar.
func (se *Searcher) FindWithTargets(s *Series, start int, typ PatternType, currentPrice float64) SearchResult {
	var cs []Candidate
	switch typ {
	case PatternImpulse:
		cs = se.ImpulseCandidates(s, start, 1)
	case PatternCorrection:
		cs = se.CorrectionCandidates(s, start, 1)
	default:
		return SearchResult{Message: fmt.Sprintf("unknown pattern type %q", typ)}
	}
	if len(cs) == 0 {
		return SearchResult{
			Message: fmt.Sprintf("no valid %s pattern found meeting %.0f%% probability threshold", typ, se.minProbability),
		}
	}

	best := cs[0]
	if currentPrice < 0 {
		end := best.Pattern.EndIdx()
		if end < s.Len() {
			currentPrice = s.Close(end)
		}
	}

	res := SearchResult{Found: true, Candidate: &best, CurrentPrice: currentPrice}

	ws := best.Pattern.Waves
	switch typ {
	case PatternImpulse:
		ts := se.targets.Wave5Targets(ws[0], ws[1], ws[2], ws[3], currentPrice)
		res.Targets = &ts
	case PatternCorrection:
		ts := se.targets.WaveCTargets(ws[0], ws[1], currentPrice)
		res.Targets = &ts
	}

	lv := best.Pattern.Levels()
	res.Levels = &lv
	return res
}

// Distribution groups all candidates at start into probability bands to
// show how skip-tuple choice moves the score.
func (se *Searcher) Distribution(s *Series, start int, typ PatternType, minProbability float64) Distribution {
	var cs []Candidate
	if typ == PatternImpulse {
		cs = se.ImpulseCandidates(s, start, 100)
	} else {
		cs = se.CorrectionCandidates(s, start, 100)
	}

	var kept []Candidate
	for _, c := range cs {
		if c.Probability() >= minProbability {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return Distribution{
			Message: fmt.Sprintf("no patterns found with probability >= %.0f%%", minProbability),
		}
	}

	bands := make(map[string]*DistributionBand)
	for _, c := range kept {
		name := bandFor(c.Probability())
		b := bands[name]
		if b == nil {
			b = &DistributionBand{}
			bands[name] = b
		}
		b.Count++
		b.SkipTuples = append(b.SkipTuples, c.Skips)
		b.AvgProbability += c.Probability()
	}
	for _, b := range bands {
		b.AvgProbability /= float64(b.Count)
	}

	return Distribution{
		Found:      true,
		Total:      len(kept),
		Best:       &kept[0],
		Bands:      bands,
		Candidates: kept,
	}
}

func bandFor(prob float64) string {
	for _, b := range distributionBands {
		if prob >= b.floor {
			return b.name
		}
	}
	return distributionBands[len(distributionBands)-1].name
}

// Scan walks the series in step-sized strides, keeping the best pattern at
// each start index that clears minProbability. Hits come back in start
// order.
func (se *Searcher) Scan(s *Series, typ PatternType, minProbability float64, step int) []ScanHit {
	if step <= 0 {
		step = 10
	}

	var hits []ScanHit
	for idx := 0; idx < s.Len()-scanMinBars; idx += step {
		var cs []Candidate
		if typ == PatternImpulse {
			cs = se.ImpulseCandidates(s, idx, 1)
		} else {
			cs = se.CorrectionCandidates(s, idx, 1)
		}
		if len(cs) == 0 || cs[0].Probability() < minProbability {
			continue
		}
		end := cs[0].Pattern.EndIdx()
		hits = append(hits, ScanHit{
			StartIdx:  idx,
			StartTime: s.Time(idx),
			EndIdx:    end,
			EndTime:   s.Time(end),
			Candidate: cs[0],
		})
	}
	return hits
}

// RenderReport formats a search result as a plain-text analysis report.
func RenderReport(typ PatternType, res SearchResult) string {
	if !res.Found {
		return res.Message
	}

	c := res.Candidate
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "ELLIOTT WAVE ANALYSIS REPORT - %s\n", strings.ToUpper(string(typ)))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Overall Probability: %.1f%%\n", c.Probability())
	fmt.Fprintf(&b, "Category: %s\n", c.Score.Category)
	fmt.Fprintf(&b, "Wave Configuration: %v\n", c.Skips)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "PROBABILITY BREAKDOWN:")
	fmt.Fprintf(&b, "  Rules Compliance: %.0f%%\n", c.Score.Rules.Score)
	fmt.Fprintf(&b, "  Fibonacci Ratios: %.1f%%\n", c.Score.Fibonacci)
	fmt.Fprintf(&b, "  Guidelines: %.1f%%\n", c.Score.Guidelines.Score)
	fmt.Fprintf(&b, "  Structure Quality: %.1f%%\n", c.Score.Structure.Score)
	fmt.Fprintln(&b)

	if res.Targets != nil {
		t := res.Targets
		fmt.Fprintln(&b, "PRICE TARGETS:")
		fmt.Fprintf(&b, "  Current Price: $%.2f\n", res.CurrentPrice)
		fmt.Fprintf(&b, "  Wave: %s\n", t.Wave)
		fmt.Fprintf(&b, "  Direction: %s\n", t.Direction)
		fmt.Fprintln(&b)
		for _, tg := range t.Targets {
			fmt.Fprintf(&b, "  %s: $%.2f (%s) - Probability: %.0f%%\n",
				strings.ToUpper(tg.Level), tg.Price, tg.Ratio, tg.Probability*100)
			if tg.Description != "" {
				fmt.Fprintf(&b, "    %s\n", tg.Description)
			}
		}
	}

	fmt.Fprintln(&b, rule)
	return b.String()
}
