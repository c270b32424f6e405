package waves

import (
	"strings"
	"testing"
)

func mkWave(dir Direction, startIdx, endIdx int, startPrice, endPrice float64) MonoWave {
	return MonoWave{
		Direction:  dir,
		StartIdx:   startIdx,
		EndIdx:     endIdx,
		StartPrice: startPrice,
		EndPrice:   endPrice,
	}
}

func validImpulseWaves() []MonoWave {
	return []MonoWave{
		mkWave(DirectionUp, 0, 2, 100, 200),
		mkWave(DirectionDown, 2, 4, 200, 138.2),
		mkWave(DirectionUp, 4, 7, 138.2, 300),
		mkWave(DirectionDown, 7, 9, 300, 238.19),
		mkWave(DirectionUp, 9, 11, 238.19, 338.19),
	}
}

func TestCheckImpulseRulesValid(t *testing.T) {
	r := CheckImpulseRules(validImpulseWaves())
	if !r.Valid() {
		t.Fatalf("expected valid, violations: %v", r.Violations)
	}
	if r.Score != 100 || r.Checked != 3 {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestCheckImpulseRulesWave2Retracement(t *testing.T) {
	ws := validImpulseWaves()
	ws[1].EndPrice = 99 // below wave 1 start

	r := CheckImpulseRules(ws)
	if r.Valid() || r.Score != 0 {
		t.Fatalf("expected violation, got %+v", r)
	}
	if !strings.Contains(r.Violations[0], "wave 2") {
		t.Fatalf("unexpected violation %q", r.Violations[0])
	}
}

func TestCheckImpulseRulesWave3Shortest(t *testing.T) {
	ws := validImpulseWaves()
	ws[2] = mkWave(DirectionUp, 4, 7, 138.2, 188.2) // length 50, shortest

	r := CheckImpulseRules(ws)
	found := false
	for _, v := range r.Violations {
		if strings.Contains(v, "shortest") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected shortest-wave violation, got %v", r.Violations)
	}
}

func TestCheckImpulseRulesWave4Overlap(t *testing.T) {
	ws := validImpulseWaves()
	ws[3].EndPrice = 195 // under wave 1 top at 200

	r := CheckImpulseRules(ws)
	if r.Valid() {
		t.Fatalf("expected overlap violation")
	}
	if !strings.Contains(strings.Join(r.Violations, " "), "overlaps") {
		t.Fatalf("unexpected violations %v", r.Violations)
	}
}

func TestCheckImpulseRulesDownDirection(t *testing.T) {
	ws := []MonoWave{
		mkWave(DirectionDown, 0, 2, 300, 200),
		mkWave(DirectionUp, 2, 4, 200, 261.8),
		mkWave(DirectionDown, 4, 7, 261.8, 100),
		mkWave(DirectionUp, 7, 9, 100, 161.8),
		mkWave(DirectionDown, 9, 11, 161.8, 61.8),
	}
	r := CheckImpulseRules(ws)
	if !r.Valid() {
		t.Fatalf("expected valid downward impulse, violations: %v", r.Violations)
	}
}

func TestCheckImpulseRulesArity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for wrong arity")
		}
	}()
	CheckImpulseRules(validImpulseWaves()[:4])
}

func validCorrectionWaves() []MonoWave {
	return []MonoWave{
		mkWave(DirectionDown, 0, 2, 300, 200),
		mkWave(DirectionUp, 2, 4, 200, 261.8),
		mkWave(DirectionDown, 4, 6, 261.8, 161.8),
	}
}

func TestCheckCorrectionRulesValid(t *testing.T) {
	r := CheckCorrectionRules(validCorrectionWaves(), DefaultTunables())
	if !r.Valid() || r.Score != 100 || r.Checked != 2 {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestCheckCorrectionRulesWaveBTooDeep(t *testing.T) {
	ws := validCorrectionWaves()
	ws[1].EndPrice = 350 // 150% of wave A

	r := CheckCorrectionRules(ws, DefaultTunables())
	if r.Valid() {
		t.Fatalf("expected wave B violation")
	}
	if !strings.Contains(r.Violations[0], "wave B") {
		t.Fatalf("unexpected violation %q", r.Violations[0])
	}
}

func TestCheckCorrectionRulesWaveCTooShort(t *testing.T) {
	ws := validCorrectionWaves()
	ws[2].EndPrice = 221.8 // 40% of wave A

	r := CheckCorrectionRules(ws, DefaultTunables())
	if r.Valid() {
		t.Fatalf("expected wave C violation")
	}
	if !strings.Contains(r.Violations[0], "wave C") {
		t.Fatalf("unexpected violation %q", r.Violations[0])
	}
}
