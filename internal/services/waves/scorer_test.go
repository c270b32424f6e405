package waves

import (
	"strings"
	"testing"
)

func newTestScorer() *Scorer {
	return NewScorer(DefaultTunables(), DefaultWeights())
}

func TestScoreImpulseTextbook(t *testing.T) {
	s := newTestScorer().ScoreImpulse(validImpulseWaves())

	if !s.Valid {
		t.Fatalf("expected valid, violations: %v", s.Rules.Violations)
	}
	// rules 100, fib 91.67, guidelines 100, structure 100 under the
	// 40/30/20/10 weights.
	if !closeTo(s.Probability, 97.5, 0.05) {
		t.Fatalf("probability = %v", s.Probability)
	}
	if !strings.HasPrefix(s.Category, "VERY HIGH") {
		t.Fatalf("category = %q", s.Category)
	}
	if s.Guidelines.Score != 100 || s.Guidelines.Met != s.Guidelines.Total {
		t.Fatalf("guidelines = %+v", s.Guidelines)
	}
	if s.Structure.Score != 100 {
		t.Fatalf("structure = %+v", s.Structure)
	}
	if s.FibDetail == nil || s.FibDetail.Confirmations != 3 {
		t.Fatalf("fib detail = %+v", s.FibDetail)
	}
	if !strings.Contains(s.Summary, "Overall Probability: 97.5%") {
		t.Fatalf("summary = %q", s.Summary)
	}
}

func TestScoreImpulseRuleGate(t *testing.T) {
	ws := validImpulseWaves()
	ws[3].EndPrice = 150 // overlaps wave 1

	s := newTestScorer().ScoreImpulse(ws)
	if s.Valid {
		t.Fatalf("expected invalid pattern")
	}
	if s.Probability != 0 {
		t.Fatalf("invalid pattern must score 0, got %v", s.Probability)
	}
	if len(s.Rules.Violations) == 0 {
		t.Fatalf("expected recorded violations")
	}
	if s.FibDetail != nil {
		t.Fatalf("fibonacci must not be evaluated past the rule gate")
	}
}

func TestScoreCorrectionTextbook(t *testing.T) {
	s := newTestScorer().ScoreCorrection(validCorrectionWaves())

	if !s.Valid {
		t.Fatalf("expected valid, violations: %v", s.Rules.Violations)
	}
	if s.Probability != 100 {
		t.Fatalf("probability = %v", s.Probability)
	}
	if s.CorrDetail == nil || s.CorrDetail.Confirmations != 2 {
		t.Fatalf("correction detail = %+v", s.CorrDetail)
	}
}

func TestImpulseGuidelinesEqualityNotApplicable(t *testing.T) {
	// Wave 3 barely longer than wave 1: equality guideline drops to its
	// neutral 50 bucket.
	ws := []MonoWave{
		mkWave(DirectionUp, 0, 2, 100, 200),
		mkWave(DirectionDown, 2, 4, 200, 161.8),
		mkWave(DirectionUp, 4, 7, 161.8, 271.8), // length 110, not extended
		mkWave(DirectionDown, 7, 9, 271.8, 230),
		mkWave(DirectionUp, 9, 11, 230, 330),
	}
	g := newTestScorer().impulseGuidelines(ws)

	found := false
	for _, d := range g.Details {
		if strings.Contains(d, "not extended") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected not-extended detail, got %v", g.Details)
	}
}

func TestStructurePenalizesTinyWave(t *testing.T) {
	ws := validImpulseWaves()
	ws[1] = mkWave(DirectionDown, 2, 4, 200, 199) // length 1 against ~100 average

	// Size factor drops to 40 while durations stay at 100.
	st := newTestScorer().structure(ws)
	if st.Score != 70 {
		t.Fatalf("expected structure 70, got %v", st.Score)
	}
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		prob float64
		want string
	}{
		{95, "VERY HIGH"},
		{80, "HIGH"},
		{65, "MODERATE"},
		{55, "LOW"},
		{30, "VERY LOW"},
	}
	for _, c := range cases {
		if got := Categorize(c.prob); !strings.HasPrefix(got, c.want) {
			t.Fatalf("Categorize(%v) = %q, want prefix %q", c.prob, got, c.want)
		}
	}
}
