package waves

import (
	"fmt"
	"math"
	"strings"
)

// FactorScore is one weighted scoring factor with its human-readable notes.
type FactorScore struct {
	Score   float64
	Met     int
	Total   int
	Details []string
}

// Score is the full probability assessment of one pattern. Invalid patterns
// carry a zero probability and the rule violations that sank them.
type Score struct {
	Valid       bool
	Probability float64
	Category    string
	Rules       RuleResult
	Fibonacci   float64
	FibDetail   *ImpulseFib
	CorrDetail  *CorrectionFib
	Guidelines  FactorScore
	Structure   FactorScore
	Summary     string
}

// Scorer combines rule compliance, Fibonacci quality, guideline adherence
// and structural quality into a single probability.
type Scorer struct {
	fib     *FibAnalyzer
	tun     Tunables
	weights Weights
}

func NewScorer(tun Tunables, weights Weights) *Scorer {
	return &Scorer{fib: NewFibAnalyzer(tun), tun: tun, weights: weights}
}

// ScoreImpulse scores a five-wave impulse. Rule compliance is a hard gate:
// any violation yields an invalid, zero-probability score with the other
// factors left unevaluated.
func (sc *Scorer) ScoreImpulse(ws []MonoWave) Score {
	rules := CheckImpulseRules(ws)
	if !rules.Valid() {
		return Score{Rules: rules}
	}

	fib := sc.fib.AnalyzeImpulse(ws)
	guide := sc.impulseGuidelines(ws)
	structure := sc.structure(ws)

	return sc.combine(rules, fib.OverallScore, guide, structure, Score{
		FibDetail: &fib,
	})
}

// ScoreCorrection scores a three-wave correction under the same gate.
func (sc *Scorer) ScoreCorrection(ws []MonoWave) Score {
	rules := CheckCorrectionRules(ws, sc.tun)
	if !rules.Valid() {
		return Score{Rules: rules}
	}

	fib := sc.fib.AnalyzeCorrection(ws)
	guide := sc.correctionGuidelines(ws)
	structure := sc.structure(ws)

	return sc.combine(rules, fib.OverallScore, guide, structure, Score{
		CorrDetail: &fib,
	})
}

func (sc *Scorer) combine(rules RuleResult, fibScore float64, guide, structure FactorScore, base Score) Score {
	prob := (rules.Score/100)*sc.weights.Rules +
		(fibScore/100)*sc.weights.Fibonacci +
		(guide.Score/100)*sc.weights.Guidelines +
		(structure.Score/100)*sc.weights.Structure
	prob = round2(prob * 100)

	base.Valid = true
	base.Probability = prob
	base.Category = Categorize(prob)
	base.Rules = rules
	base.Fibonacci = fibScore
	base.Guidelines = guide
	base.Structure = structure
	base.Summary = sc.summary(prob, fibScore, guide, base)
	return base
}

// impulseGuidelines grades the soft Elliott guidelines in three bands,
// 100 for ideal, 70 for acceptable, 40 for weak.
func (sc *Scorer) impulseGuidelines(ws []MonoWave) FactorScore {
	w1, w2, w3, w4, w5 := ws[0], ws[1], ws[2], ws[3], ws[4]
	var scores []float64
	var details []string

	grade := func(s float64, d string) {
		scores = append(scores, s)
		details = append(details, d)
	}

	// Wave 3 is typically the longest.
	switch {
	case w3.Length() >= w1.Length() && w3.Length() >= w5.Length():
		grade(100, "wave 3 is longest (ideal)")
	case w3.Length() >= math.Max(w1.Length(), w5.Length())*0.9:
		grade(70, "wave 3 is near longest")
	default:
		grade(40, "wave 3 is not the longest")
	}

	// Wave 3 extension versus wave 1.
	w3Ratio := 0.0
	if w1.Length() > 0 {
		w3Ratio = w3.Length() / w1.Length()
	}
	switch {
	case w3Ratio >= 1.50 && w3Ratio <= 2.70:
		grade(100, fmt.Sprintf("wave 3 extension ideal: %.2fx", w3Ratio))
	case w3Ratio >= 1.20 && w3Ratio <= 3.20:
		grade(70, fmt.Sprintf("wave 3 extension acceptable: %.2fx", w3Ratio))
	default:
		grade(40, fmt.Sprintf("wave 3 extension weak: %.2fx", w3Ratio))
	}

	// Alternation between waves 2 and 4.
	w2Ret, w4Ret := 0.0, 0.0
	if w1.Length() > 0 {
		w2Ret = w2.Length() / w1.Length()
	}
	if w3.Length() > 0 {
		w4Ret = w4.Length() / w3.Length()
	}
	diff := math.Abs(w2Ret - w4Ret)
	switch {
	case diff > 0.20:
		grade(100, "strong alternation between waves 2 and 4")
	case diff > 0.10:
		grade(70, "moderate alternation between waves 2 and 4")
	default:
		grade(40, "weak alternation between waves 2 and 4")
	}

	// Equality of waves 1 and 5 applies only when wave 3 is extended.
	if w3.Length() > w1.Length()*1.3 {
		w5vs1 := 0.0
		if w1.Length() > 0 {
			w5vs1 = w5.Length() / w1.Length()
		}
		switch {
		case w5vs1 >= 0.85 && w5vs1 <= 1.15:
			grade(100, fmt.Sprintf("waves 1 and 5 equality: %.2f", w5vs1))
		case w5vs1 >= 0.70 && w5vs1 <= 1.30:
			grade(70, fmt.Sprintf("waves 1 and 5 near equality: %.2f", w5vs1))
		default:
			grade(40, fmt.Sprintf("waves 1 and 5 not equal: %.2f", w5vs1))
		}
	} else {
		grade(50, "wave 3 not extended (equality not applicable)")
	}

	// Time proportionality of the two corrective legs.
	if w2.Duration() > 0 && w4.Duration() > 0 {
		d2, d4 := float64(w2.Duration()), float64(w4.Duration())
		ratio := math.Max(d2, d4) / math.Min(d2, d4)
		switch {
		case ratio <= 3:
			grade(100, "time proportionality good")
		case ratio <= 6:
			grade(70, "time proportionality acceptable")
		default:
			grade(40, "time proportionality poor")
		}
	}

	return factorScore(scores, details)
}

func (sc *Scorer) correctionGuidelines(ws []MonoWave) FactorScore {
	wa, wb, wc := ws[0], ws[1], ws[2]
	var scores []float64
	var details []string

	grade := func(s float64, d string) {
		scores = append(scores, s)
		details = append(details, d)
	}

	cVsA := 0.0
	if wa.Length() > 0 {
		cVsA = wc.Length() / wa.Length()
	}
	switch {
	case cVsA >= 0.90 && cVsA <= 1.70:
		grade(100, fmt.Sprintf("wave C vs A ideal: %.2f", cVsA))
	case cVsA >= 0.60 && cVsA <= 2.70:
		grade(70, fmt.Sprintf("wave C vs A acceptable: %.2f", cVsA))
	default:
		grade(40, fmt.Sprintf("wave C vs A weak: %.2f", cVsA))
	}

	bVsA := 0.0
	if wa.Length() > 0 {
		bVsA = wb.Length() / wa.Length()
	}
	switch {
	case bVsA >= 0.38 && bVsA <= 0.80:
		grade(100, fmt.Sprintf("wave B retracement ideal: %.2f", bVsA))
	case bVsA >= 0.20 && bVsA <= 1.00:
		grade(70, fmt.Sprintf("wave B retracement acceptable: %.2f", bVsA))
	default:
		grade(40, fmt.Sprintf("wave B retracement unusual: %.2f", bVsA))
	}

	if wa.Duration() > 0 {
		ratio := float64(wc.Duration()) / float64(wa.Duration())
		switch {
		case ratio >= 0.5 && ratio <= 2.0:
			grade(100, "time proportionality good")
		case ratio >= 0.3 && ratio <= 5.0:
			grade(70, "time proportionality acceptable")
		default:
			grade(40, "time proportionality poor")
		}
	}

	return factorScore(scores, details)
}

// structure grades wave-size and wave-duration balance. A pattern whose
// smallest leg is a sliver of the average is noise, not structure.
func (sc *Scorer) structure(ws []MonoWave) FactorScore {
	var scores []float64
	var details []string

	sum, minLen := 0.0, math.Inf(1)
	for _, w := range ws {
		sum += w.Length()
		if w.Length() < minLen {
			minLen = w.Length()
		}
	}
	avg := sum / float64(len(ws))
	switch {
	case minLen > avg*0.15:
		scores = append(scores, 100)
		details = append(details, "all waves have substantial size")
	case minLen > avg*0.08:
		scores = append(scores, 70)
		details = append(details, "wave sizes acceptable")
	default:
		scores = append(scores, 40)
		details = append(details, "some waves very small")
	}

	var durations []int
	for _, w := range ws {
		if w.Duration() > 0 {
			durations = append(durations, w.Duration())
		}
	}
	if len(durations) > 0 {
		dsum, dmin := 0, durations[0]
		for _, d := range durations {
			dsum += d
			if d < dmin {
				dmin = d
			}
		}
		davg := float64(dsum) / float64(len(durations))
		switch {
		case float64(dmin) > davg*0.1:
			scores = append(scores, 100)
			details = append(details, "wave durations well-proportioned")
		case float64(dmin) > davg*0.05:
			scores = append(scores, 70)
			details = append(details, "wave durations acceptable")
		default:
			scores = append(scores, 40)
			details = append(details, "some waves very brief")
		}
	}

	fs := factorScore(scores, details)
	if len(scores) == 0 {
		fs.Score = 50
	}
	return fs
}

func factorScore(scores []float64, details []string) FactorScore {
	met := 0
	for _, s := range scores {
		if s >= 70 {
			met++
		}
	}
	return FactorScore{
		Score:   round2(mean(scores)),
		Met:     met,
		Total:   len(scores),
		Details: details,
	}
}

// Categorize maps a probability onto its quality tier.
func Categorize(probability float64) string {
	switch {
	case probability >= 90:
		return "VERY HIGH - Excellent Elliott Wave pattern"
	case probability >= 75:
		return "HIGH - Strong Elliott Wave pattern"
	case probability >= 60:
		return "MODERATE - Valid but weak pattern"
	case probability >= 50:
		return "LOW - Questionable pattern"
	default:
		return "VERY LOW - Poor pattern quality"
	}
}

func (sc *Scorer) summary(prob, fibScore float64, guide FactorScore, s Score) string {
	parts := []string{fmt.Sprintf("Overall Probability: %.1f%%", prob)}
	if s.Rules.Valid() {
		parts = append(parts, "all Elliott Wave rules satisfied")
	} else {
		parts = append(parts, "rule violations: "+strings.Join(s.Rules.Violations, ", "))
	}
	confirms := 0
	if s.FibDetail != nil {
		confirms = s.FibDetail.Confirmations
	} else if s.CorrDetail != nil {
		confirms = s.CorrDetail.Confirmations
	}
	parts = append(parts, fmt.Sprintf("Fibonacci Score: %.1f%% (%d confirmations)", fibScore, confirms))
	parts = append(parts, fmt.Sprintf("Guidelines: %d/%d met (%.1f%%)", guide.Met, guide.Total, guide.Score))
	return strings.Join(parts, " | ")
}
