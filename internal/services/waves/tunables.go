package waves

// Tunables collects the heuristic constants of the engine. The defaults are
// the values the scoring model was designed around; they are configuration,
// not invariants, and may be overridden per deployment.
type Tunables struct {
	// FibTolerance is the maximum relative deviation for a ratio to count
	// as a Fibonacci match.
	FibTolerance float64
	// FibMatchBonus is added per registered match on top of the best match
	// score, capped at FibMatchBonusCap.
	FibMatchBonus    float64
	FibMatchBonusCap float64
	// WaveBMaxRetracement invalidates a correction whose wave B retraces
	// more than this fraction of wave A (expanded flats allowed up to it).
	WaveBMaxRetracement float64
	// WaveCMinRatio invalidates a correction whose wave C is shorter than
	// this fraction of wave A (running-flat floor).
	WaveCMinRatio float64
	// OverlapThreshold is the maximum tolerated overlap ratio under the
	// highest-probability labeling policy.
	OverlapThreshold float64
	// ReachBand is the relative distance within which a price target counts
	// as reached.
	ReachBand float64
}

// DefaultTunables returns the stock constants.
func DefaultTunables() Tunables {
	return Tunables{
		FibTolerance:        0.05,
		FibMatchBonus:       0.05,
		FibMatchBonusCap:    0.20,
		WaveBMaxRetracement: 1.40,
		WaveCMinRatio:       0.50,
		OverlapThreshold:    0.50,
		ReachBand:           0.005,
	}
}

// Scoring weights per factor. Rule compliance is a hard gate, so its weight
// only matters for the valid case.
type Weights struct {
	Rules      float64
	Fibonacci  float64
	Guidelines float64
	Structure  float64
}

// DefaultWeights returns the 40/30/20/10 split.
func DefaultWeights() Weights {
	return Weights{Rules: 0.40, Fibonacci: 0.30, Guidelines: 0.20, Structure: 0.10}
}
