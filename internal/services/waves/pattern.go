package waves

// PatternType distinguishes the two supported wave structures.
type PatternType string

const (
	PatternImpulse    PatternType = "impulse"
	PatternCorrection PatternType = "correction"
)

var impulseLabels = [5]string{"1", "2", "3", "4", "5"}
var correctionLabels = [3]string{"A", "B", "C"}

// Pattern is a labeled chain of contiguous MonoWaves: five for an impulse
// (1..5), three for a correction (A..C). Each wave starts at the bar the
// previous wave ended on.
type Pattern struct {
	Type  PatternType
	Waves []MonoWave
}

func (p *Pattern) StartIdx() int { return p.Waves[0].StartIdx }
func (p *Pattern) EndIdx() int   { return p.Waves[len(p.Waves)-1].EndIdx }

func (p *Pattern) StartPrice() float64 { return p.Waves[0].StartPrice }
func (p *Pattern) EndPrice() float64   { return p.Waves[len(p.Waves)-1].EndPrice }

// Duration is the pattern length in bars.
func (p *Pattern) Duration() int { return p.EndIdx() - p.StartIdx() }

// SupportResistance are the distinct swing extremes of a pattern, the levels
// chartists project forward.
type SupportResistance struct {
	Resistance      []float64
	Support         []float64
	MajorResistance float64
	MajorSupport    float64
}

// Levels extracts support/resistance levels from the pattern's waves,
// resistance descending and support ascending.
func (p *Pattern) Levels() SupportResistance {
	var sr SupportResistance
	seenHi := map[float64]bool{}
	seenLo := map[float64]bool{}
	for _, w := range p.Waves {
		if !seenHi[w.High()] {
			seenHi[w.High()] = true
			sr.Resistance = insertDesc(sr.Resistance, w.High())
		}
		if !seenLo[w.Low()] {
			seenLo[w.Low()] = true
			sr.Support = insertAsc(sr.Support, w.Low())
		}
	}
	if len(sr.Resistance) > 0 {
		sr.MajorResistance = sr.Resistance[0]
	}
	if len(sr.Support) > 0 {
		sr.MajorSupport = sr.Support[0]
	}
	return sr
}

func insertAsc(xs []float64, v float64) []float64 {
	i := 0
	for i < len(xs) && xs[i] < v {
		i++
	}
	xs = append(xs, 0)
	copy(xs[i+1:], xs[i:])
	xs[i] = v
	return xs
}

func insertDesc(xs []float64, v float64) []float64 {
	i := 0
	for i < len(xs) && xs[i] > v {
		i++
	}
	xs = append(xs, 0)
	copy(xs[i+1:], xs[i:])
	xs[i] = v
	return xs
}

// buildImpulse assembles the five-wave chain 1..5 (up-down-up-down-up) for
// one skip tuple. It also applies the undercut gates: no low between wave
// 2's and wave 4's terminus may undercut wave 2's low, and none between
// wave 4's and wave 5's may undercut wave 4's low. Returns nil when the
// series is exhausted or a gate fails; both simply disqualify the option.
func buildImpulse(s *Series, start int, skips []int) *Pattern {
	if len(skips) != 5 {
		panic("waves: impulse chain requires exactly 5 skip values")
	}

	w1, ok := FindMonoWaveUp(s, start, skips[0])
	if !ok {
		return nil
	}
	w2, ok := FindMonoWaveDown(s, w1.EndIdx, skips[1])
	if !ok {
		return nil
	}
	w3, ok := FindMonoWaveUp(s, w2.EndIdx, skips[2])
	if !ok {
		return nil
	}
	w4, ok := FindMonoWaveDown(s, w3.EndIdx, skips[3])
	if !ok {
		return nil
	}
	if s.minLow(w2.EndIdx, w4.EndIdx) < w2.EndPrice {
		return nil
	}
	w5, ok := FindMonoWaveUp(s, w4.EndIdx, skips[4])
	if !ok {
		return nil
	}
	if s.minLow(w4.EndIdx, w5.EndIdx) < w4.EndPrice {
		return nil
	}

	waves := []MonoWave{w1, w2, w3, w4, w5}
	for i := range waves {
		waves[i].Label = impulseLabels[i]
	}
	return &Pattern{Type: PatternImpulse, Waves: waves}
}

// buildCorrection assembles the three-wave chain A-B-C (down-up-down) for
// one skip tuple. Returns nil when the series is exhausted.
func buildCorrection(s *Series, start int, skips []int) *Pattern {
	if len(skips) != 3 {
		panic("waves: correction chain requires exactly 3 skip values")
	}

	wa, ok := FindMonoWaveDown(s, start, skips[0])
	if !ok {
		return nil
	}
	wb, ok := FindMonoWaveUp(s, wa.EndIdx, skips[1])
	if !ok {
		return nil
	}
	wc, ok := FindMonoWaveDown(s, wb.EndIdx, skips[2])
	if !ok {
		return nil
	}

	waves := []MonoWave{wa, wb, wc}
	for i := range waves {
		waves[i].Label = correctionLabels[i]
	}
	return &Pattern{Type: PatternCorrection, Waves: waves}
}
