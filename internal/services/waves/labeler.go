package waves

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"WaveScope/pkg/logger"
)

// OverlapStrategy decides what happens when scan windows produce patterns
// covering the same bars.
type OverlapStrategy string

const (
	// OverlapAll keeps every pattern, overlapping or not.
	OverlapAll OverlapStrategy = "all"
	// OverlapHighestProbability keeps the best-scoring pattern in each
	// contested region.
	OverlapHighestProbability OverlapStrategy = "highest_probability"
	// OverlapNone keeps a strictly non-overlapping subset, earliest first.
	OverlapNone OverlapStrategy = "non_overlapping"
)

// ParseOverlapStrategy validates a strategy string from configuration.
func ParseOverlapStrategy(s string) (OverlapStrategy, error) {
	switch OverlapStrategy(s) {
	case OverlapAll, OverlapHighestProbability, OverlapNone:
		return OverlapStrategy(s), nil
	}
	return "", fmt.Errorf("waves: unknown overlap strategy %q", s)
}

// LabelerConfig controls a full-series labeling run.
type LabelerConfig struct {
	ScanStep            int
	MaxPatternsPerStart int
	MinProbability      float64
	Overlap             OverlapStrategy
	LabelImpulse        bool
	LabelCorrection     bool
	// Workers bounds the scan worker pool; 0 means GOMAXPROCS.
	Workers int
}

// DefaultLabelerConfig mirrors the stock labeling run: every fifth bar, up
// to three patterns per start, both structures.
func DefaultLabelerConfig() LabelerConfig {
	return LabelerConfig{
		ScanStep:            5,
		MaxPatternsPerStart: 3,
		MinProbability:      60,
		Overlap:             OverlapHighestProbability,
		LabelImpulse:        true,
		LabelCorrection:     true,
	}
}

// PatternRecord is one pattern found during a labeling run.
type PatternRecord struct {
	Type        PatternType
	Probability float64
	StartIdx    int
	EndIdx      int
	Skips       []int
	Pattern     *Pattern
	Score       Score
}

// WaveLabel is one labeled wave segment extracted from a kept pattern.
type WaveLabel struct {
	Type          PatternType
	Label         string
	StartIdx      int
	EndIdx        int
	StartPrice    float64
	EndPrice      float64
	Probability   float64
	ParentPattern int
}

func (w WaveLabel) Length() float64 { return abs(w.EndPrice - w.StartPrice) }

func (w WaveLabel) Direction() Direction {
	if w.EndPrice > w.StartPrice {
		return DirectionUp
	}
	return DirectionDown
}

// BarAnnotation is the per-bar view of the labeling: which waves start or
// end on a bar and what the bar's strongest label is.
type BarAnnotation struct {
	WaveStart   bool
	WaveEnd     bool
	Labels      []string
	Type        PatternType
	Probability float64
}

// LabelStats summarizes a labeling run.
type LabelStats struct {
	TotalWaves        int
	ImpulseWaves      int
	CorrectionWaves   int
	AvgProbability    float64
	MedianProbability float64
	AvgWaveLength     float64
	LabelCounts       map[string]int
	DirectionCounts   map[Direction]int
}

// LabelResult is the full output of LabelAll.
type LabelResult struct {
	Patterns    []PatternRecord
	KeptCount   int
	Labels      []WaveLabel
	Annotations []BarAnnotation
	Stats       LabelStats
}

// Labeler annotates every identifiable wave segment across a whole series,
// unlike the searcher which hunts for the single best current pattern.
type Labeler struct {
	searcher *Searcher
	cfg      LabelerConfig
	log      *logger.Logger
}

func NewLabeler(searcher *Searcher, cfg LabelerConfig, log *logger.Logger) *Labeler {
	if cfg.ScanStep <= 0 {
		cfg.ScanStep = 5
	}
	if cfg.MaxPatternsPerStart <= 0 {
		cfg.MaxPatternsPerStart = 3
	}
	if cfg.Overlap == "" {
		cfg.Overlap = OverlapHighestProbability
	}
	return &Labeler{searcher: searcher, cfg: cfg, log: log}
}

// LabelAll scans every start index with a worker pool and merges the
// per-start results back into start order, so output is deterministic
// regardless of worker scheduling. Cancellation aborts between windows.
func (l *Labeler) LabelAll(ctx context.Context, s *Series) (*LabelResult, error) {
	var starts []int
	for idx := 0; idx < s.Len()-scanMinBars; idx += l.cfg.ScanStep {
		starts = append(starts, idx)
	}

	l.log.Info("starting historical wave labeling",
		logger.Int("bars", s.Len()),
		logger.Int("scan_windows", len(starts)),
		logger.Int("scan_step", l.cfg.ScanStep),
		logger.String("overlap_strategy", string(l.cfg.Overlap)),
	)

	workers := l.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(starts) && len(starts) > 0 {
		workers = len(starts)
	}

	perStart := make([][]PatternRecord, len(starts))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perStart[i] = l.scanStart(s, starts[i])
			}
		}()
	}

	var err error
feed:
	for i := range starts {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if err != nil {
		return nil, err
	}

	res := &LabelResult{}
	for _, recs := range perStart {
		res.Patterns = append(res.Patterns, recs...)
	}

	l.log.Info("wave scan complete", logger.Int("patterns_found", len(res.Patterns)))

	kept := l.resolveOverlaps(res.Patterns)
	res.KeptCount = len(kept)
	for i, rec := range kept {
		res.Labels = append(res.Labels, extractLabels(rec, i)...)
	}

	res.Annotations = annotate(s, res.Labels)
	res.Stats = computeStats(res.Labels)

	l.log.Info("wave labeling complete",
		logger.Int("patterns_kept", res.KeptCount),
		logger.Int("wave_segments", len(res.Labels)),
	)
	return res, nil
}

func (l *Labeler) scanStart(s *Series, start int) []PatternRecord {
	var out []PatternRecord
	add := func(cs []Candidate, typ PatternType) {
		for _, c := range cs {
			out = append(out, PatternRecord{
				Type:        typ,
				Probability: c.Probability(),
				StartIdx:    start,
				EndIdx:      c.Pattern.EndIdx(),
				Skips:       c.Skips,
				Pattern:     c.Pattern,
				Score:       c.Score,
			})
		}
	}
	if l.cfg.LabelImpulse {
		add(l.searcher.ImpulseCandidates(s, start, l.cfg.MaxPatternsPerStart), PatternImpulse)
	}
	if l.cfg.LabelCorrection {
		add(l.searcher.CorrectionCandidates(s, start, l.cfg.MaxPatternsPerStart), PatternCorrection)
	}
	return out
}

func (l *Labeler) resolveOverlaps(all []PatternRecord) []PatternRecord {
	switch l.cfg.Overlap {
	case OverlapAll:
		return all
	case OverlapNone:
		return nonOverlapping(all)
	default:
		return highestProbability(all, l.searcher.tun.OverlapThreshold)
	}
}

// highestProbability admits patterns best-first, rejecting any that share
// more than the threshold fraction of their own span with a kept pattern.
func highestProbability(all []PatternRecord, threshold float64) []PatternRecord {
	sorted := make([]PatternRecord, len(all))
	copy(sorted, all)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Probability > sorted[b].Probability
	})

	var kept []PatternRecord
	type span struct{ start, end int }
	var used []span

	for _, p := range sorted {
		conflict := false
		for _, u := range used {
			if overlapRatio(p.StartIdx, p.EndIdx, u.start, u.end) > threshold {
				conflict = true
				break
			}
		}
		if !conflict {
			kept = append(kept, p)
			used = append(used, span{p.StartIdx, p.EndIdx})
		}
	}
	return kept
}

// nonOverlapping greedily keeps the earliest-starting patterns that do not
// touch at all, higher probability breaking start ties.
func nonOverlapping(all []PatternRecord) []PatternRecord {
	sorted := make([]PatternRecord, len(all))
	copy(sorted, all)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].StartIdx != sorted[b].StartIdx {
			return sorted[a].StartIdx < sorted[b].StartIdx
		}
		return sorted[a].Probability > sorted[b].Probability
	})

	var kept []PatternRecord
	lastEnd := -1
	for _, p := range sorted {
		if p.StartIdx >= lastEnd {
			kept = append(kept, p)
			lastEnd = p.EndIdx
		}
	}
	return kept
}

// overlapRatio is the shared length as a fraction of the first range's own
// length, so a small pattern inside a big one counts as fully overlapped.
func overlapRatio(start1, end1, start2, end2 int) float64 {
	os, oe := start1, end1
	if start2 > os {
		os = start2
	}
	if end2 < oe {
		oe = end2
	}
	if os >= oe || end1 == start1 {
		return 0
	}
	return float64(oe-os) / float64(end1-start1)
}

func extractLabels(rec PatternRecord, patternIdx int) []WaveLabel {
	out := make([]WaveLabel, 0, len(rec.Pattern.Waves))
	for _, w := range rec.Pattern.Waves {
		out = append(out, WaveLabel{
			Type:          rec.Type,
			Label:         w.Label,
			StartIdx:      w.StartIdx,
			EndIdx:        w.EndIdx,
			StartPrice:    w.StartPrice,
			EndPrice:      w.EndPrice,
			Probability:   rec.Probability,
			ParentPattern: patternIdx,
		})
	}
	return out
}

// annotate projects the wave labels onto per-bar flags. Each wave marks its
// start and end bars; end bars accumulate every label terminating there and
// the highest-probability wave sets the bar's type.
func annotate(s *Series, labels []WaveLabel) []BarAnnotation {
	out := make([]BarAnnotation, s.Len())
	for _, wl := range labels {
		if wl.StartIdx >= len(out) || wl.EndIdx >= len(out) {
			continue
		}
		out[wl.StartIdx].WaveStart = true
		end := &out[wl.EndIdx]
		if !end.WaveEnd || wl.Probability > end.Probability {
			end.Type = wl.Type
			end.Probability = wl.Probability
		}
		end.WaveEnd = true
		end.Labels = append(end.Labels, wl.Label)
	}
	return out
}

func computeStats(labels []WaveLabel) LabelStats {
	stats := LabelStats{
		LabelCounts:     make(map[string]int),
		DirectionCounts: make(map[Direction]int),
	}
	if len(labels) == 0 {
		return stats
	}

	probs := make([]float64, 0, len(labels))
	lenSum := 0.0
	for _, wl := range labels {
		stats.TotalWaves++
		if wl.Type == PatternImpulse {
			stats.ImpulseWaves++
		} else {
			stats.CorrectionWaves++
		}
		stats.LabelCounts[wl.Label]++
		stats.DirectionCounts[wl.Direction()]++
		probs = append(probs, wl.Probability)
		lenSum += wl.Length()
	}

	stats.AvgProbability = mean(probs)
	stats.AvgWaveLength = lenSum / float64(len(labels))

	sort.Float64s(probs)
	mid := len(probs) / 2
	if len(probs)%2 == 1 {
		stats.MedianProbability = probs[mid]
	} else {
		stats.MedianProbability = (probs[mid-1] + probs[mid]) / 2
	}
	return stats
}

// WaveSummary returns the labels sorted by start index, the order a chart
// overlay consumes them in.
func (r *LabelResult) WaveSummary() []WaveLabel {
	out := make([]WaveLabel, len(r.Labels))
	copy(out, r.Labels)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].StartIdx < out[b].StartIdx
	})
	return out
}

// PatternSummary returns every found pattern sorted by probability
// descending, including the ones the overlap policy rejected.
func (r *LabelResult) PatternSummary() []PatternRecord {
	out := make([]PatternRecord, len(r.Patterns))
	copy(out, r.Patterns)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Probability > out[b].Probability
	})
	return out
}
