package waves

import (
	"reflect"
	"strings"
	"testing"
)

// textbookImpulseSeries has exactly one detectable impulse starting at bar
// 0: 100->200, ->138.2, ->300, ->238.19, ->338.19.
func textbookImpulseSeries() *Series {
	return pointSeries(100, 150, 200, 170, 138.2, 200, 250, 300, 270, 238.19, 280, 338.19, 300)
}

func textbookCorrectionSeries() *Series {
	return pointSeries(300, 250, 200, 240, 261.8, 220, 161.8, 180)
}

func newTestSearcher() *Searcher {
	return NewSearcher(WithSkipBounds(2, 2))
}

func TestImpulseCandidates(t *testing.T) {
	se := newTestSearcher()
	cs := se.ImpulseCandidates(textbookImpulseSeries(), 0, 10)

	if len(cs) != 1 {
		t.Fatalf("expected exactly 1 candidate, got %d", len(cs))
	}
	c := cs[0]
	if !closeTo(c.Probability(), 97.5, 0.05) {
		t.Fatalf("probability = %v", c.Probability())
	}
	for _, sk := range c.Skips {
		if sk != 0 {
			t.Fatalf("expected zero-skip tuple, got %v", c.Skips)
		}
	}
	if c.Pattern.StartIdx() != 0 || c.Pattern.EndIdx() != 11 {
		t.Fatalf("pattern span %d..%d", c.Pattern.StartIdx(), c.Pattern.EndIdx())
	}
	if got := c.Pattern.Waves[4].Label; got != "5" {
		t.Fatalf("last wave label = %q", got)
	}
}

func TestCorrectionCandidates(t *testing.T) {
	se := newTestSearcher()
	cs := se.CorrectionCandidates(textbookCorrectionSeries(), 0, 10)

	if len(cs) != 1 {
		t.Fatalf("expected exactly 1 candidate, got %d", len(cs))
	}
	if cs[0].Probability() != 100 {
		t.Fatalf("probability = %v", cs[0].Probability())
	}
	labels := []string{"A", "B", "C"}
	for i, w := range cs[0].Pattern.Waves {
		if w.Label != labels[i] {
			t.Fatalf("wave %d label = %q", i, w.Label)
		}
	}
}

func TestCandidatesRespectProbabilityFloor(t *testing.T) {
	se := NewSearcher(WithSkipBounds(2, 2), WithMinProbability(99))
	if cs := se.ImpulseCandidates(textbookImpulseSeries(), 0, 10); len(cs) != 0 {
		t.Fatalf("expected floor to reject all, got %d", len(cs))
	}
}

func TestFindWithTargetsImpulse(t *testing.T) {
	se := newTestSearcher()
	res := se.FindWithTargets(textbookImpulseSeries(), 0, PatternImpulse, -1)

	if !res.Found {
		t.Fatalf("expected pattern: %s", res.Message)
	}
	// Default current price is the close on the pattern's end bar.
	if !closeTo(res.CurrentPrice, 338.19, 1e-9) {
		t.Fatalf("current price = %v", res.CurrentPrice)
	}
	if res.Targets == nil || res.Targets.Wave != "Wave 5" {
		t.Fatalf("targets = %+v", res.Targets)
	}
	if res.Levels == nil || res.Levels.MajorResistance != 338.19 {
		t.Fatalf("levels = %+v", res.Levels)
	}
}

func TestFindWithTargetsCorrection(t *testing.T) {
	se := newTestSearcher()
	res := se.FindWithTargets(textbookCorrectionSeries(), 0, PatternCorrection, 170)

	if !res.Found {
		t.Fatalf("expected pattern: %s", res.Message)
	}
	if res.Targets == nil || res.Targets.Wave != "Wave C" {
		t.Fatalf("targets = %+v", res.Targets)
	}
}

func TestFindWithTargetsNotFound(t *testing.T) {
	se := newTestSearcher()
	res := se.FindWithTargets(pointSeries(10, 20, 30, 40, 50), 0, PatternImpulse, -1)

	if res.Found {
		t.Fatalf("expected no pattern on monotonic rise")
	}
	if !strings.Contains(res.Message, "no valid impulse pattern") {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestDistribution(t *testing.T) {
	se := newTestSearcher()
	d := se.Distribution(textbookImpulseSeries(), 0, PatternImpulse, 60)

	if !d.Found || d.Total != 1 {
		t.Fatalf("distribution = %+v", d)
	}
	band := d.Bands["90-100%"]
	if band == nil || band.Count != 1 {
		t.Fatalf("expected single candidate in 90-100%% band, got %+v", d.Bands)
	}
	if !closeTo(band.AvgProbability, 97.5, 0.05) {
		t.Fatalf("band avg = %v", band.AvgProbability)
	}
	if d.Best == nil || d.Best.Pattern.EndIdx() != 11 {
		t.Fatalf("best = %+v", d.Best)
	}
}

func TestDistributionEmpty(t *testing.T) {
	se := newTestSearcher()
	d := se.Distribution(textbookImpulseSeries(), 0, PatternImpulse, 99)
	if d.Found {
		t.Fatalf("expected empty distribution")
	}
}

func TestScanFindsPaddedImpulse(t *testing.T) {
	prices := []float64{100, 150, 200, 170, 138.2, 200, 250, 300, 270, 238.19, 280, 338.19}
	for len(prices) < 70 {
		prices = append(prices, 300)
	}
	s := pointSeries(prices...)

	se := newTestSearcher()
	hits := se.Scan(s, PatternImpulse, 70, 5)

	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].StartIdx != 0 || hits[0].EndIdx != 11 {
		t.Fatalf("hit span %d..%d", hits[0].StartIdx, hits[0].EndIdx)
	}
}

func TestScanRepeatable(t *testing.T) {
	se := newTestSearcher()
	s := repeatedImpulseSeries()

	first := se.Scan(s, PatternImpulse, 70, 5)
	if len(first) == 0 {
		t.Fatalf("expected hits")
	}
	for run := 0; run < 3; run++ {
		if again := se.Scan(s, PatternImpulse, 70, 5); !reflect.DeepEqual(first, again) {
			t.Fatalf("scan hits changed between runs")
		}
	}
}

func TestScanShortSeries(t *testing.T) {
	se := newTestSearcher()
	if hits := se.Scan(textbookImpulseSeries(), PatternImpulse, 50, 5); hits != nil {
		t.Fatalf("series shorter than the scan minimum must yield no hits")
	}
}

func TestRenderReport(t *testing.T) {
	se := newTestSearcher()
	res := se.FindWithTargets(textbookImpulseSeries(), 0, PatternImpulse, -1)

	report := RenderReport(PatternImpulse, res)
	for _, want := range []string{
		"ELLIOTT WAVE ANALYSIS REPORT - IMPULSE",
		"Overall Probability: 97.5%",
		"PROBABILITY BREAKDOWN:",
		"PRICE TARGETS:",
		"Wave: Wave 5",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

func TestRenderReportNotFound(t *testing.T) {
	msg := RenderReport(PatternImpulse, SearchResult{Message: "nothing"})
	if msg != "nothing" {
		t.Fatalf("report = %q", msg)
	}
}
