package waves

import "fmt"

// RuleResult is the outcome of hard structural validation: all-or-nothing
// with an inspectable violation list.
type RuleResult struct {
	Score      float64
	Violations []string
	Checked    int
}

func (r RuleResult) Valid() bool { return len(r.Violations) == 0 }

// CheckImpulseRules applies the three inviolable impulse rules:
//
//  1. wave 2 must not retrace past wave 1's start,
//  2. wave 3 must not be the shortest of waves 1, 3 and 5,
//  3. wave 4 must not price-overlap wave 1.
//
// Any violation forces a zero score. The function is pure; the same waves
// always yield the same violations. Passing a wave count other than 5 is a
// programming error.
func CheckImpulseRules(ws []MonoWave) RuleResult {
	if len(ws) != 5 {
		panic(fmt.Sprintf("waves: impulse rules require exactly 5 waves, got %d", len(ws)))
	}
	w1, w2, w3, w4, w5 := ws[0], ws[1], ws[2], ws[3], ws[4]

	var violations []string

	if w1.Direction == DirectionUp {
		if w2.EndPrice <= w1.StartPrice {
			violations = append(violations, "wave 2 retraced more than 100% of wave 1")
		}
	} else {
		if w2.EndPrice >= w1.StartPrice {
			violations = append(violations, "wave 2 retraced more than 100% of wave 1")
		}
	}

	if w3.Length() < w1.Length() && w3.Length() < w5.Length() {
		violations = append(violations, "wave 3 is the shortest wave")
	}

	if w1.Direction == DirectionUp {
		if w4.EndPrice <= w1.EndPrice {
			violations = append(violations, "wave 4 overlaps wave 1")
		}
	} else {
		if w4.EndPrice >= w1.EndPrice {
			violations = append(violations, "wave 4 overlaps wave 1")
		}
	}

	score := 100.0
	if len(violations) > 0 {
		score = 0
	}
	return RuleResult{Score: score, Violations: violations, Checked: 3}
}

// CheckCorrectionRules applies the two corrective rules: wave B's
// retracement of A stays under the expanded-flat ceiling, and wave C covers
// at least the running-flat floor of wave A. Passing a wave count other
// than 3 is a programming error.
func CheckCorrectionRules(ws []MonoWave, tun Tunables) RuleResult {
	if len(ws) != 3 {
		panic(fmt.Sprintf("waves: correction rules require exactly 3 waves, got %d", len(ws)))
	}
	wa, wb, wc := ws[0], ws[1], ws[2]

	var violations []string

	if wa.Length() > 0 {
		bRet := wb.Length() / wa.Length()
		if bRet > tun.WaveBMaxRetracement {
			violations = append(violations, fmt.Sprintf("wave B retracement too large: %.2f", bRet))
		}
		cRatio := wc.Length() / wa.Length()
		if cRatio < tun.WaveCMinRatio {
			violations = append(violations, fmt.Sprintf("wave C too short relative to wave A: %.2f", cRatio))
		}
	}

	score := 100.0
	if len(violations) > 0 {
		score = 0
	}
	return RuleResult{Score: score, Violations: violations, Checked: 2}
}
