package waves

import "math"

// Canonical Fibonacci ratio sets used across the engine.
var (
	RetracementRatios = []float64{0.236, 0.382, 0.500, 0.618, 0.786, 0.854}
	ExtensionRatios   = []float64{1.000, 1.236, 1.382, 1.618, 2.000, 2.618, 3.618, 4.236}
	ProjectionRatios  = []float64{0.618, 1.000, 1.618, 2.618}
)

// Per-relationship expected ratio sets.
var (
	wave2Ratios      = []float64{0.382, 0.500, 0.618, 0.786, 0.854}
	wave3Ratios      = []float64{1.000, 1.618, 2.000, 2.618, 3.236}
	wave3SpanRatios  = []float64{1.618, 2.000, 2.618}
	wave4Ratios      = []float64{0.146, 0.236, 0.382, 0.500}
	wave5Vs1Ratios   = []float64{0.618, 1.000, 1.618}
	wave5Vs13Ratios  = []float64{0.382, 0.618, 1.000}
	wave5Vs4Ratios   = []float64{1.236, 1.382, 1.618, 2.000}
	waveBVsARatios   = []float64{0.382, 0.500, 0.618, 0.786, 0.854}
	waveCVsARatios   = []float64{0.618, 1.000, 1.236, 1.618, 2.618}
)

// FibMatch records one expected ratio the observed ratio landed on.
type FibMatch struct {
	Ratio             float64
	Deviation         float64
	RelativeDeviation float64
	Score             float64
}

// Relationship is one observed wave-length ratio measured against its
// expected Fibonacci set. Quality is in [0,1].
type Relationship struct {
	Name    string
	Ratio   float64
	Matches []FibMatch
	Quality float64
}

// ImpulseFib is the full Fibonacci analysis of a five-wave impulse: four
// relationships, the overall score being their mean on a 0-100 scale.
type ImpulseFib struct {
	Wave2Retracement Relationship
	Wave3Extension   Relationship
	// Wave3SpanRatio measures wave 3 against the wave1-start to wave2-end
	// span; recorded for inspection, not scored.
	Wave3SpanRatio   Relationship
	Wave4Retracement Relationship
	Wave5Projection  ProjectionFib
	OverallScore     float64
	Confirmations    int
}

// ProjectionFib is the wave-5 projection relationship: up to three
// sub-methods whose mean quality forms the relationship quality.
type ProjectionFib struct {
	VsWave1     Relationship
	VsWave13    Relationship
	VsWave4     Relationship
	Quality     float64
}

// CorrectionFib is the Fibonacci analysis of an A-B-C correction.
type CorrectionFib struct {
	WaveBVsA      Relationship
	WaveCVsA      Relationship
	OverallScore  float64
	Confirmations int
}

// FibAnalyzer scores wave-length ratios against canonical Fibonacci
// constants. Zero value is not usable; construct with NewFibAnalyzer.
type FibAnalyzer struct {
	tun Tunables
}

func NewFibAnalyzer(tun Tunables) *FibAnalyzer {
	return &FibAnalyzer{tun: tun}
}

// matchRatios finds all expected ratios within tolerance of the observed
// one. A match at zero deviation scores 1.0, falling linearly to 0 at the
// tolerance edge; nothing beyond the tolerance registers.
func (f *FibAnalyzer) matchRatios(actual float64, expected []float64) []FibMatch {
	var out []FibMatch
	for _, e := range expected {
		dev := math.Abs(actual - e)
		rel := math.Inf(1)
		if e > 0 {
			rel = dev / e
		}
		if rel <= f.tun.FibTolerance {
			out = append(out, FibMatch{
				Ratio:             e,
				Deviation:         dev,
				RelativeDeviation: rel,
				Score:             1.0 - rel/f.tun.FibTolerance,
			})
		}
	}
	// best match first
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Score > out[j-1].Score; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// quality combines the best match score with a small bonus per additional
// match, capped at 1.0.
func (f *FibAnalyzer) quality(matches []FibMatch) float64 {
	if len(matches) == 0 {
		return 0
	}
	bonus := math.Min(f.tun.FibMatchBonusCap, float64(len(matches))*f.tun.FibMatchBonus)
	return math.Min(1.0, matches[0].Score+bonus)
}

func (f *FibAnalyzer) relationship(name string, actual float64, expected []float64) Relationship {
	m := f.matchRatios(actual, expected)
	return Relationship{Name: name, Ratio: actual, Matches: m, Quality: f.quality(m)}
}

// AnalyzeImpulse runs the four impulse relationships. Wave count must be 5.
func (f *FibAnalyzer) AnalyzeImpulse(ws []MonoWave) ImpulseFib {
	if len(ws) != 5 {
		panic("waves: impulse fibonacci analysis requires exactly 5 waves")
	}
	w1, w2, w3, w4, w5 := ws[0], ws[1], ws[2], ws[3], ws[4]

	var a ImpulseFib

	if w1.Length() > 0 {
		a.Wave2Retracement = f.relationship("wave2_retracement", w2.Length()/w1.Length(), wave2Ratios)
		a.Wave3Extension = f.relationship("wave3_extension", w3.Length()/w1.Length(), wave3Ratios)
	} else {
		a.Wave2Retracement = Relationship{Name: "wave2_retracement"}
		a.Wave3Extension = Relationship{Name: "wave3_extension"}
	}

	span := w1.High() - w2.Low()
	if w1.Direction == DirectionDown {
		span = w2.High() - w1.Low()
	}
	if span > 0 {
		a.Wave3SpanRatio = f.relationship("wave3_vs_wave12_span", w3.Length()/span, wave3SpanRatios)
	} else {
		a.Wave3SpanRatio = Relationship{Name: "wave3_vs_wave12_span"}
	}

	if w3.Length() > 0 {
		a.Wave4Retracement = f.relationship("wave4_retracement", w4.Length()/w3.Length(), wave4Ratios)
	} else {
		a.Wave4Retracement = Relationship{Name: "wave4_retracement"}
	}

	a.Wave5Projection = f.projectWave5(w1, w3, w4, w5)

	scores := []float64{
		a.Wave2Retracement.Quality * 100,
		a.Wave3Extension.Quality * 100,
		a.Wave4Retracement.Quality * 100,
		a.Wave5Projection.Quality * 100,
	}
	a.OverallScore = round2(mean(scores))
	for _, s := range scores {
		if s >= 70 {
			a.Confirmations++
		}
	}
	return a
}

// projectWave5 averages up to three wave-5 projection sub-methods: equality
// family versus wave 1, the wave1-to-3 span projection, and the inverse
// wave 4 retracement.
func (f *FibAnalyzer) projectWave5(w1, w3, w4, w5 MonoWave) ProjectionFib {
	var p ProjectionFib
	var qs []float64

	if w1.Length() > 0 {
		p.VsWave1 = f.relationship("wave5_vs_wave1", w5.Length()/w1.Length(), wave5Vs1Ratios)
		qs = append(qs, p.VsWave1.Quality)
	}

	span := w3.High() - w1.Low()
	if w1.Direction == DirectionDown {
		span = w1.High() - w3.Low()
	}
	if span > 0 {
		p.VsWave13 = f.relationship("wave5_vs_wave13_span", w5.Length()/span, wave5Vs13Ratios)
		qs = append(qs, p.VsWave13.Quality)
	}

	if w4.Length() > 0 {
		p.VsWave4 = f.relationship("wave5_inverse_wave4", w5.Length()/w4.Length(), wave5Vs4Ratios)
		qs = append(qs, p.VsWave4.Quality)
	}

	p.Quality = mean(qs)
	return p
}

// AnalyzeCorrection runs the two corrective relationships. Wave count must
// be 3.
func (f *FibAnalyzer) AnalyzeCorrection(ws []MonoWave) CorrectionFib {
	if len(ws) != 3 {
		panic("waves: correction fibonacci analysis requires exactly 3 waves")
	}
	wa, wb, wc := ws[0], ws[1], ws[2]

	var a CorrectionFib
	if wa.Length() > 0 {
		a.WaveBVsA = f.relationship("waveB_vs_waveA", wb.Length()/wa.Length(), waveBVsARatios)
		a.WaveCVsA = f.relationship("waveC_vs_waveA", wc.Length()/wa.Length(), waveCVsARatios)
	} else {
		a.WaveBVsA = Relationship{Name: "waveB_vs_waveA"}
		a.WaveCVsA = Relationship{Name: "waveC_vs_waveA"}
	}

	scores := []float64{a.WaveBVsA.Quality * 100, a.WaveCVsA.Quality * 100}
	a.OverallScore = round2(mean(scores))
	for _, s := range scores {
		if s >= 70 {
			a.Confirmations++
		}
	}
	return a
}

// FibLevels computes retracement or extension price levels between two
// price points, keyed by ratio.
func FibLevels(startPrice, endPrice float64, ratios []float64, retracement bool) map[float64]float64 {
	diff := endPrice - startPrice
	out := make(map[float64]float64, len(ratios))
	for _, r := range ratios {
		if retracement {
			out[r] = endPrice - diff*r
		} else {
			out[r] = startPrice + diff*r
		}
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
