package waves

import (
	"context"
	"reflect"
	"testing"

	"WaveScope/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func paddedImpulseSeries() *Series {
	prices := []float64{100, 150, 200, 170, 138.2, 200, 250, 300, 270, 238.19, 280, 338.19}
	for len(prices) < 70 {
		prices = append(prices, 300)
	}
	return pointSeries(prices...)
}

// repeatedImpulseSeries holds two impulses with identical bar-to-bar
// differences, one starting at bar 0 and one at bar 70.
func repeatedImpulseSeries() *Series {
	prices := []float64{100, 150, 200, 170, 138.2, 200, 250, 300, 270, 238.19, 280, 338.19}
	for len(prices) < 70 {
		prices = append(prices, 300)
	}
	for _, p := range []float64{300, 350, 400, 370, 338.2, 400, 450, 500, 470, 438.19, 480, 538.19} {
		prices = append(prices, p)
	}
	for len(prices) < 140 {
		prices = append(prices, 500)
	}
	return pointSeries(prices...)
}

func TestLabelAll(t *testing.T) {
	l := NewLabeler(newTestSearcher(), DefaultLabelerConfig(), testLogger(t))
	res, err := l.LabelAll(context.Background(), paddedImpulseSeries())
	if err != nil {
		t.Fatalf("label all: %v", err)
	}

	if len(res.Patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(res.Patterns))
	}
	if res.KeptCount != 1 {
		t.Fatalf("kept = %d", res.KeptCount)
	}
	if len(res.Labels) != 5 {
		t.Fatalf("expected 5 wave labels, got %d", len(res.Labels))
	}

	stats := res.Stats
	if stats.TotalWaves != 5 || stats.ImpulseWaves != 5 || stats.CorrectionWaves != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if !closeTo(stats.AvgProbability, 97.5, 0.05) {
		t.Fatalf("avg probability = %v", stats.AvgProbability)
	}
	if stats.DirectionCounts[DirectionUp] != 3 || stats.DirectionCounts[DirectionDown] != 2 {
		t.Fatalf("direction counts = %v", stats.DirectionCounts)
	}
	for _, lbl := range []string{"1", "2", "3", "4", "5"} {
		if stats.LabelCounts[lbl] != 1 {
			t.Fatalf("label counts = %v", stats.LabelCounts)
		}
	}
}

func TestLabelAllAnnotations(t *testing.T) {
	l := NewLabeler(newTestSearcher(), DefaultLabelerConfig(), testLogger(t))
	res, err := l.LabelAll(context.Background(), paddedImpulseSeries())
	if err != nil {
		t.Fatalf("label all: %v", err)
	}

	ann := res.Annotations
	if len(ann) != 70 {
		t.Fatalf("expected one annotation per bar, got %d", len(ann))
	}
	if !ann[0].WaveStart {
		t.Fatalf("bar 0 must start wave 1")
	}
	// Wave 1 ends and wave 2 starts on the same bar.
	if !ann[2].WaveEnd || !ann[2].WaveStart {
		t.Fatalf("bar 2 annotation = %+v", ann[2])
	}
	if len(ann[2].Labels) != 1 || ann[2].Labels[0] != "1" {
		t.Fatalf("bar 2 labels = %v", ann[2].Labels)
	}
	if len(ann[11].Labels) != 1 || ann[11].Labels[0] != "5" {
		t.Fatalf("bar 11 labels = %v", ann[11].Labels)
	}
}

func TestLabelAllRepeatable(t *testing.T) {
	cfg := DefaultLabelerConfig()
	cfg.Workers = 4

	l := NewLabeler(newTestSearcher(), cfg, testLogger(t))
	s := repeatedImpulseSeries()

	first, err := l.LabelAll(context.Background(), s)
	if err != nil {
		t.Fatalf("label all: %v", err)
	}
	if len(first.Patterns) < 2 {
		t.Fatalf("expected patterns from both windows, got %d", len(first.Patterns))
	}

	for run := 0; run < 3; run++ {
		again, err := l.LabelAll(context.Background(), s)
		if err != nil {
			t.Fatalf("label all (run %d): %v", run, err)
		}
		if !reflect.DeepEqual(first.Patterns, again.Patterns) {
			t.Fatalf("pattern list changed between runs")
		}
		if !reflect.DeepEqual(first.Labels, again.Labels) {
			t.Fatalf("wave labels changed between runs")
		}
		if !reflect.DeepEqual(first.Annotations, again.Annotations) {
			t.Fatalf("annotations changed between runs")
		}
	}
}

func TestAnnotateStrongestLabelWins(t *testing.T) {
	s := pointSeries(10, 20, 30, 40, 50)
	strong := WaveLabel{Type: PatternImpulse, Label: "5", StartIdx: 0, EndIdx: 3, Probability: 90}
	weak := WaveLabel{Type: PatternCorrection, Label: "C", StartIdx: 1, EndIdx: 3, Probability: 70}

	for _, labels := range [][]WaveLabel{{strong, weak}, {weak, strong}} {
		ann := annotate(s, labels)
		end := ann[3]
		if !end.WaveEnd || len(end.Labels) != 2 {
			t.Fatalf("end bar annotation = %+v", end)
		}
		if end.Type != PatternImpulse || end.Probability != 90 {
			t.Fatalf("expected the stronger label to set the bar, got %+v", end)
		}
	}
}

func TestLabelAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLabeler(newTestSearcher(), DefaultLabelerConfig(), testLogger(t))
	if _, err := l.LabelAll(ctx, paddedImpulseSeries()); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaveSummaryOrdered(t *testing.T) {
	l := NewLabeler(newTestSearcher(), DefaultLabelerConfig(), testLogger(t))
	res, err := l.LabelAll(context.Background(), paddedImpulseSeries())
	if err != nil {
		t.Fatalf("label all: %v", err)
	}

	summary := res.WaveSummary()
	for i := 1; i < len(summary); i++ {
		if summary[i].StartIdx < summary[i-1].StartIdx {
			t.Fatalf("summary not ordered by start index")
		}
	}
}

func TestOverlapRatioAsymmetry(t *testing.T) {
	// A small range inside a large one is fully overlapped; the large one
	// barely is.
	if r := overlapRatio(10, 20, 0, 100); r != 1.0 {
		t.Fatalf("small-in-large ratio = %v", r)
	}
	if r := overlapRatio(0, 100, 10, 20); r != 0.1 {
		t.Fatalf("large-vs-small ratio = %v", r)
	}
	if r := overlapRatio(0, 10, 20, 30); r != 0 {
		t.Fatalf("disjoint ratio = %v", r)
	}
	if r := overlapRatio(5, 5, 0, 100); r != 0 {
		t.Fatalf("degenerate range ratio = %v", r)
	}
}

func rec(start, end int, prob float64) PatternRecord {
	return PatternRecord{StartIdx: start, EndIdx: end, Probability: prob}
}

func TestHighestProbabilityFilter(t *testing.T) {
	all := []PatternRecord{
		rec(0, 100, 90),
		rec(40, 140, 80),  // 60% overlap with the first, rejected
		rec(120, 220, 70), // clear of the first, kept
	}
	kept := highestProbability(all, 0.5)

	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	if kept[0].Probability != 90 || kept[1].Probability != 70 {
		t.Fatalf("kept = %+v", kept)
	}
}

func TestHighestProbabilityBoundary(t *testing.T) {
	// Exactly at the threshold is tolerated, only strictly more overlap
	// rejects.
	all := []PatternRecord{
		rec(0, 100, 90),
		rec(50, 150, 80), // exactly 50% of its own span
	}
	if kept := highestProbability(all, 0.5); len(kept) != 2 {
		t.Fatalf("expected both kept at the boundary, got %d", len(kept))
	}
}

func TestNonOverlappingFilter(t *testing.T) {
	all := []PatternRecord{
		rec(50, 150, 95),
		rec(0, 100, 90),
		rec(100, 200, 85),
	}
	kept := nonOverlapping(all)

	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	// Earliest start wins, and a pattern may begin exactly where the
	// previous one ended.
	if kept[0].StartIdx != 0 || kept[1].StartIdx != 100 {
		t.Fatalf("kept = %+v", kept)
	}
}

func TestOverlapAllKeepsEverything(t *testing.T) {
	cfg := DefaultLabelerConfig()
	cfg.Overlap = OverlapAll

	l := NewLabeler(newTestSearcher(), cfg, testLogger(t))
	all := []PatternRecord{rec(0, 100, 90), rec(0, 100, 80)}
	if kept := l.resolveOverlaps(all); len(kept) != 2 {
		t.Fatalf("overlap=all must keep everything, got %d", len(kept))
	}
}

func TestParseOverlapStrategy(t *testing.T) {
	for _, s := range []string{"all", "highest_probability", "non_overlapping"} {
		if _, err := ParseOverlapStrategy(s); err != nil {
			t.Fatalf("ParseOverlapStrategy(%q): %v", s, err)
		}
	}
	if _, err := ParseOverlapStrategy("bogus"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
