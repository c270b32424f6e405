package waves

import "fmt"

// Target is one projected price level with its heuristic hit probability.
type Target struct {
	Level       string
	Price       float64
	Ratio       string
	Probability float64
	Description string
}

// Magnitude is the remaining distance from the current price to a target.
// Status is "pending" while the target lies ahead in the wave's direction,
// "reached" within the tolerance band, "exceeded" otherwise.
type Magnitude struct {
	Level       string
	TargetPrice float64
	Distance    float64
	DistancePct float64
	Status      string
	Probability float64
}

// TargetSet is the projection output for one in-progress wave.
type TargetSet struct {
	Wave         string
	Direction    Direction
	Targets      []Target
	BasePrice    float64
	Invalidation float64
	Recommended  *Target
	CurrentPrice float64
	Magnitudes   []Magnitude
}

// TargetCalculator projects Fibonacci-based price targets for waves still
// in progress.
type TargetCalculator struct {
	tun Tunables
}

func NewTargetCalculator(tun Tunables) *TargetCalculator {
	return &TargetCalculator{tun: tun}
}

func projected(base, length, ratio float64, up bool) float64 {
	if up {
		return round2(base + length*ratio)
	}
	return round2(base - length*ratio)
}

// Wave3Targets projects wave 3 from completed waves 1 and 2. A negative
// currentPrice skips magnitude calculation.
func (t *TargetCalculator) Wave3Targets(w1, w2 MonoWave, currentPrice float64) TargetSet {
	up := w1.Direction == DirectionUp
	base := w2.EndPrice
	l1 := w1.Length()

	ts := TargetSet{
		Wave:      "Wave 3",
		Direction: w1.Direction,
		BasePrice: base,
		Targets: []Target{
			{Level: "minimum", Price: projected(base, l1, 1.0, up), Ratio: "1.0x Wave 1", Probability: 0.50, Description: "Minimum Wave 3 target (equals Wave 1)"},
			{Level: "common", Price: projected(base, l1, 1.618, up), Ratio: "1.618x Wave 1", Probability: 0.70, Description: "Most common Wave 3 target (Golden Ratio)"},
			{Level: "extended", Price: projected(base, l1, 2.618, up), Ratio: "2.618x Wave 1", Probability: 0.40, Description: "Extended Wave 3 target (strong trend)"},
			{Level: "very_extended", Price: projected(base, l1, 3.618, up), Ratio: "3.618x Wave 1", Probability: 0.20, Description: "Very extended Wave 3 target (parabolic)"},
		},
	}
	if currentPrice >= 0 {
		ts.CurrentPrice = currentPrice
		ts.Magnitudes = t.magnitudes(currentPrice, ts.Targets, up)
	}
	return ts
}

// Wave4Targets projects the wave 4 retracement from completed waves 1-3,
// including the invalidation level at wave 1's extreme.
func (t *TargetCalculator) Wave4Targets(w1, w2, w3 MonoWave, currentPrice float64) TargetSet {
	up := w1.Direction == DirectionUp
	base := w3.EndPrice
	l3 := w3.Length()
	invalidation := round2(w1.EndPrice)

	dir := DirectionDown
	if !up {
		dir = DirectionUp
	}

	ts := TargetSet{
		Wave:         "Wave 4",
		Direction:    dir,
		BasePrice:    base,
		Invalidation: invalidation,
		Targets: []Target{
			{Level: "shallow", Price: projected(base, l3, 0.236, !up), Ratio: "23.6% retracement", Probability: 0.60, Description: "Shallow Wave 4 retracement"},
			{Level: "common", Price: projected(base, l3, 0.382, !up), Ratio: "38.2% retracement", Probability: 0.75, Description: "Most common Wave 4 retracement"},
			{Level: "deep", Price: projected(base, l3, 0.500, !up), Ratio: "50% retracement", Probability: 0.50, Description: "Deep Wave 4 retracement"},
			{Level: "invalidation", Price: invalidation, Ratio: "Wave 1 extreme", Probability: 0, Description: "Invalidation level, pattern fails if reached"},
		},
	}
	if currentPrice >= 0 {
		ts.CurrentPrice = currentPrice
		ts.Magnitudes = t.magnitudes(currentPrice, ts.Targets, !up)
	}
	return ts
}

// Wave5Targets projects wave 5 from completed waves 1-4 using four methods,
// sorted furthest-first in the wave's direction. The equality target is the
// recommended one.
func (t *TargetCalculator) Wave5Targets(w1, w2, w3, w4 MonoWave, currentPrice float64) TargetSet {
	up := w1.Direction == DirectionUp
	base := w4.EndPrice
	l1 := w1.Length()

	span := w3.High() - w1.Low()
	if !up {
		span = w1.High() - w3.Low()
	}

	targets := []Target{
		{Level: "conservative", Price: projected(base, l1, 0.618, up), Ratio: "0.618x Wave 1", Probability: 0.65, Description: "Conservative Wave 5 target"},
		{Level: "equality", Price: projected(base, l1, 1.0, up), Ratio: "1.0x Wave 1", Probability: 0.75, Description: "Wave 5 equals Wave 1 (common when Wave 3 extends)"},
		{Level: "fibonacci_projection", Price: projected(base, span, 0.618, up), Ratio: "0.618x Wave 1-3", Probability: 0.60, Description: "Fibonacci projection from Wave 1-3"},
		{Level: "extended", Price: projected(base, w4.Length(), 1.618, up), Ratio: "1.618x Wave 4", Probability: 0.50, Description: "Extended Wave 5 target"},
	}
	sortTargets(targets, up)

	ts := TargetSet{
		Wave:      "Wave 5",
		Direction: w1.Direction,
		BasePrice: base,
		Targets:   targets,
	}
	if len(targets) > 1 {
		ts.Recommended = &targets[1]
	} else {
		ts.Recommended = &targets[0]
	}
	if currentPrice >= 0 {
		ts.CurrentPrice = currentPrice
		ts.Magnitudes = t.magnitudes(currentPrice, targets, up)
	}
	return ts
}

// WaveCTargets projects wave C of a correction from completed waves A and B.
func (t *TargetCalculator) WaveCTargets(wa, wb MonoWave, currentPrice float64) TargetSet {
	down := wa.Direction == DirectionDown
	base := wb.EndPrice
	la := wa.Length()

	ts := TargetSet{
		Wave:      "Wave C",
		Direction: wa.Direction,
		BasePrice: base,
		Targets: []Target{
			{Level: "short", Price: projected(base, la, 0.618, !down), Ratio: "0.618x Wave A", Probability: 0.50, Description: "Short Wave C target"},
			{Level: "equality", Price: projected(base, la, 1.0, !down), Ratio: "1.0x Wave A", Probability: 0.80, Description: "Wave C equals Wave A (most common)"},
			{Level: "extended", Price: projected(base, la, 1.618, !down), Ratio: "1.618x Wave A", Probability: 0.60, Description: "Extended Wave C target"},
			{Level: "very_extended", Price: projected(base, la, 2.618, !down), Ratio: "2.618x Wave A", Probability: 0.30, Description: "Very extended Wave C target"},
		},
	}
	ts.Recommended = &ts.Targets[1]
	if currentPrice >= 0 {
		ts.CurrentPrice = currentPrice
		ts.Magnitudes = t.magnitudes(currentPrice, ts.Targets, !down)
	}
	return ts
}

// ImpulseTargets dispatches on the in-progress wave label.
func (t *TargetCalculator) ImpulseTargets(ws []MonoWave, currentWave string, currentPrice float64) (TargetSet, error) {
	switch currentWave {
	case "3":
		if len(ws) < 2 {
			return TargetSet{}, fmt.Errorf("waves: wave 3 targets need waves 1 and 2, got %d", len(ws))
		}
		return t.Wave3Targets(ws[0], ws[1], currentPrice), nil
	case "4":
		if len(ws) < 3 {
			return TargetSet{}, fmt.Errorf("waves: wave 4 targets need waves 1-3, got %d", len(ws))
		}
		return t.Wave4Targets(ws[0], ws[1], ws[2], currentPrice), nil
	case "5":
		if len(ws) < 4 {
			return TargetSet{}, fmt.Errorf("waves: wave 5 targets need waves 1-4, got %d", len(ws))
		}
		return t.Wave5Targets(ws[0], ws[1], ws[2], ws[3], currentPrice), nil
	default:
		return TargetSet{}, fmt.Errorf("waves: unknown in-progress wave %q, must be 3, 4 or 5", currentWave)
	}
}

// magnitudes measures current price against each target. The direction check
// runs first: any in-direction distance still counts as pending, the reach
// band only applies once the target is behind.
func (t *TargetCalculator) magnitudes(currentPrice float64, targets []Target, up bool) []Magnitude {
	out := make([]Magnitude, 0, len(targets))
	for _, tg := range targets {
		dist := tg.Price - currentPrice
		pct := 0.0
		if currentPrice > 0 {
			pct = dist / currentPrice * 100
		}

		var status string
		switch {
		case up && dist > 0:
			status = "pending"
		case !up && dist < 0:
			status = "pending"
		case abs(dist) < currentPrice*t.tun.ReachBand:
			status = "reached"
		default:
			status = "exceeded"
		}

		out = append(out, Magnitude{
			Level:       tg.Level,
			TargetPrice: tg.Price,
			Distance:    round2(dist),
			DistancePct: round2(pct),
			Status:      status,
			Probability: tg.Probability,
		})
	}
	return out
}

func sortTargets(ts []Target, desc bool) {
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0; j-- {
			if desc && ts[j].Price > ts[j-1].Price || !desc && ts[j].Price < ts[j-1].Price {
				ts[j], ts[j-1] = ts[j-1], ts[j]
			} else {
				break
			}
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
