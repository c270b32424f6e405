package usecase

import (
	"WaveScope/internal/domain/models"
	"WaveScope/internal/services/waves"
)

// Flattened transport views of the engine's result types. The engine stays
// free of serialization concerns; these are the tables API consumers chart
// and export.

type TargetView struct {
	Level       string  `json:"level"`
	Price       float64 `json:"price"`
	Ratio       string  `json:"ratio"`
	Probability float64 `json:"probability"`
	Description string  `json:"description,omitempty"`
}

type MagnitudeView struct {
	Level       string  `json:"level"`
	TargetPrice float64 `json:"target_price"`
	Distance    float64 `json:"distance"`
	DistancePct float64 `json:"distance_pct"`
	Status      string  `json:"status"`
	Probability float64 `json:"probability"`
}

type TargetSetView struct {
	Wave         string          `json:"wave"`
	Direction    string          `json:"direction"`
	BasePrice    float64         `json:"base_price"`
	Invalidation float64         `json:"invalidation,omitempty"`
	CurrentPrice float64         `json:"current_price,omitempty"`
	Targets      []TargetView    `json:"targets"`
	Recommended  *TargetView     `json:"recommended,omitempty"`
	Magnitudes   []MagnitudeView `json:"magnitudes,omitempty"`
}

type LevelsView struct {
	Resistance      []float64 `json:"resistance"`
	Support         []float64 `json:"support"`
	MajorResistance float64   `json:"major_resistance"`
	MajorSupport    float64   `json:"major_support"`
}

type BreakdownView struct {
	Rules          float64  `json:"rules"`
	Violations     []string `json:"violations,omitempty"`
	Fibonacci      float64  `json:"fibonacci"`
	FibConfirms    int      `json:"fib_confirmations"`
	Guidelines     float64  `json:"guidelines"`
	GuidelinesMet  int      `json:"guidelines_met"`
	GuidelineNotes []string `json:"guideline_notes,omitempty"`
	Structure      float64  `json:"structure"`
	Summary        string   `json:"summary"`
}

type BandView struct {
	Count          int     `json:"count"`
	SkipTuples     [][]int `json:"skip_tuples"`
	AvgProbability float64 `json:"avg_probability"`
}

type WaveLabelView struct {
	PatternType string  `json:"pattern_type"`
	Label       string  `json:"label"`
	StartIdx    int     `json:"start_idx"`
	EndIdx      int     `json:"end_idx"`
	StartPrice  float64 `json:"start_price"`
	EndPrice    float64 `json:"end_price"`
	Direction   string  `json:"direction"`
	Probability float64 `json:"probability"`
}

type BarAnnotationView struct {
	Index       int      `json:"index"`
	WaveStart   bool     `json:"wave_start,omitempty"`
	WaveEnd     bool     `json:"wave_end,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	PatternType string   `json:"pattern_type,omitempty"`
	Probability float64  `json:"probability,omitempty"`
}

type LabelStatsView struct {
	TotalWaves        int                `json:"total_waves"`
	ImpulseWaves      int                `json:"impulse_waves"`
	CorrectionWaves   int                `json:"correction_waves"`
	AvgProbability    float64            `json:"avg_probability"`
	MedianProbability float64            `json:"median_probability"`
	AvgWaveLength     float64            `json:"avg_wave_length"`
	LabelCounts       map[string]int     `json:"label_counts"`
	DirectionCounts   map[string]int     `json:"direction_counts"`
}

func targetSetView(ts *waves.TargetSet) *TargetSetView {
	if ts == nil {
		return nil
	}
	v := &TargetSetView{
		Wave:         ts.Wave,
		Direction:    string(ts.Direction),
		BasePrice:    ts.BasePrice,
		Invalidation: ts.Invalidation,
		CurrentPrice: ts.CurrentPrice,
	}
	for _, t := range ts.Targets {
		v.Targets = append(v.Targets, targetView(t))
	}
	if ts.Recommended != nil {
		r := targetView(*ts.Recommended)
		v.Recommended = &r
	}
	for _, m := range ts.Magnitudes {
		v.Magnitudes = append(v.Magnitudes, MagnitudeView{
			Level:       m.Level,
			TargetPrice: m.TargetPrice,
			Distance:    m.Distance,
			DistancePct: m.DistancePct,
			Status:      m.Status,
			Probability: m.Probability,
		})
	}
	return v
}

func targetView(t waves.Target) TargetView {
	return TargetView{
		Level:       t.Level,
		Price:       t.Price,
		Ratio:       t.Ratio,
		Probability: t.Probability,
		Description: t.Description,
	}
}

func levelsView(sr *waves.SupportResistance) *LevelsView {
	if sr == nil {
		return nil
	}
	return &LevelsView{
		Resistance:      sr.Resistance,
		Support:         sr.Support,
		MajorResistance: sr.MajorResistance,
		MajorSupport:    sr.MajorSupport,
	}
}

func breakdownView(s waves.Score) *BreakdownView {
	v := &BreakdownView{
		Rules:         s.Rules.Score,
		Violations:    s.Rules.Violations,
		Fibonacci:     s.Fibonacci,
		Guidelines:    s.Guidelines.Score,
		GuidelinesMet: s.Guidelines.Met,
		Structure:     s.Structure.Score,
		Summary:       s.Summary,
	}
	v.GuidelineNotes = s.Guidelines.Details
	if s.FibDetail != nil {
		v.FibConfirms = s.FibDetail.Confirmations
	} else if s.CorrDetail != nil {
		v.FibConfirms = s.CorrDetail.Confirmations
	}
	return v
}

// waveInfos flattens the pattern's waves, anchoring indices to candle
// timestamps when available.
func waveInfos(ws []waves.MonoWave, candles []models.Candle) []models.WaveInfo {
	out := make([]models.WaveInfo, 0, len(ws))
	for _, w := range ws {
		wi := models.WaveInfo{
			Label:      w.Label,
			Direction:  string(w.Direction),
			StartIdx:   w.StartIdx,
			EndIdx:     w.EndIdx,
			StartPrice: w.StartPrice,
			EndPrice:   w.EndPrice,
		}
		if w.StartIdx < len(candles) {
			wi.StartTime = candles[w.StartIdx].Bucket
		}
		if w.EndIdx < len(candles) {
			wi.EndTime = candles[w.EndIdx].Bucket
		}
		out = append(out, wi)
	}
	return out
}

func labelView(wl waves.WaveLabel) WaveLabelView {
	return WaveLabelView{
		PatternType: string(wl.Type),
		Label:       wl.Label,
		StartIdx:    wl.StartIdx,
		EndIdx:      wl.EndIdx,
		StartPrice:  wl.StartPrice,
		EndPrice:    wl.EndPrice,
		Direction:   string(wl.Direction()),
		Probability: wl.Probability,
	}
}

func statsView(st waves.LabelStats) LabelStatsView {
	v := LabelStatsView{
		TotalWaves:        st.TotalWaves,
		ImpulseWaves:      st.ImpulseWaves,
		CorrectionWaves:   st.CorrectionWaves,
		AvgProbability:    st.AvgProbability,
		MedianProbability: st.MedianProbability,
		AvgWaveLength:     st.AvgWaveLength,
		LabelCounts:       st.LabelCounts,
		DirectionCounts:   make(map[string]int, len(st.DirectionCounts)),
	}
	for d, n := range st.DirectionCounts {
		v.DirectionCounts[string(d)] = n
	}
	return v
}
