package waves

import "testing"

func newTestCalc() *TargetCalculator {
	return NewTargetCalculator(DefaultTunables())
}

func TestWave3Targets(t *testing.T) {
	w1 := mkWave(DirectionUp, 0, 2, 100, 200)
	w2 := mkWave(DirectionDown, 2, 4, 200, 150)

	ts := newTestCalc().Wave3Targets(w1, w2, -1)
	if ts.Wave != "Wave 3" || ts.Direction != DirectionUp {
		t.Fatalf("unexpected header %+v", ts)
	}
	if ts.BasePrice != 150 {
		t.Fatalf("base price = %v", ts.BasePrice)
	}

	want := map[string]float64{
		"minimum":       250,
		"common":        311.8,
		"extended":      411.8,
		"very_extended": 511.8,
	}
	for _, tg := range ts.Targets {
		if w, ok := want[tg.Level]; !ok || !closeTo(tg.Price, w, 1e-9) {
			t.Fatalf("target %s = %v, want %v", tg.Level, tg.Price, want[tg.Level])
		}
	}
	if ts.Magnitudes != nil {
		t.Fatalf("negative current price must skip magnitudes")
	}
}

func TestWave3TargetsDownward(t *testing.T) {
	w1 := mkWave(DirectionDown, 0, 2, 300, 200)
	w2 := mkWave(DirectionUp, 2, 4, 200, 250)

	ts := newTestCalc().Wave3Targets(w1, w2, -1)
	var min float64
	for _, tg := range ts.Targets {
		if tg.Level == "minimum" {
			min = tg.Price
		}
	}
	if min != 150 {
		t.Fatalf("downward minimum target = %v, want 150", min)
	}
}

func TestWave4TargetsInvalidation(t *testing.T) {
	w1 := mkWave(DirectionUp, 0, 2, 100, 200)
	w2 := mkWave(DirectionDown, 2, 4, 200, 150)
	w3 := mkWave(DirectionUp, 4, 7, 150, 350)

	ts := newTestCalc().Wave4Targets(w1, w2, w3, -1)
	if ts.Direction != DirectionDown {
		t.Fatalf("wave 4 of an up impulse must project downward")
	}
	if ts.Invalidation != 200 {
		t.Fatalf("invalidation = %v, want wave 1 top 200", ts.Invalidation)
	}

	var common, invalidation float64
	for _, tg := range ts.Targets {
		switch tg.Level {
		case "common":
			common = tg.Price
		case "invalidation":
			invalidation = tg.Price
		}
	}
	if !closeTo(common, 350-200*0.382, 1e-9) {
		t.Fatalf("common retracement = %v", common)
	}
	if invalidation != 200 {
		t.Fatalf("invalidation target = %v", invalidation)
	}
}

func TestWave5TargetsSortedAndRecommended(t *testing.T) {
	ws := validImpulseWaves()
	ts := newTestCalc().Wave5Targets(ws[0], ws[1], ws[2], ws[3], -1)

	if len(ts.Targets) != 4 {
		t.Fatalf("expected 4 targets, got %d", len(ts.Targets))
	}
	for i := 1; i < len(ts.Targets); i++ {
		if ts.Targets[i].Price > ts.Targets[i-1].Price {
			t.Fatalf("upward targets must be sorted descending: %v", ts.Targets)
		}
	}
	if ts.Recommended == nil || ts.Recommended != &ts.Targets[1] {
		t.Fatalf("recommended must be the second sorted target")
	}
}

func TestWaveCTargets(t *testing.T) {
	wa := mkWave(DirectionDown, 0, 2, 300, 200)
	wb := mkWave(DirectionUp, 2, 4, 200, 261.8)

	ts := newTestCalc().WaveCTargets(wa, wb, -1)
	var equality float64
	for _, tg := range ts.Targets {
		if tg.Level == "equality" {
			equality = tg.Price
		}
	}
	if !closeTo(equality, 161.8, 1e-9) {
		t.Fatalf("equality target = %v, want 161.8", equality)
	}
	if ts.Recommended == nil || ts.Recommended.Level != "equality" {
		t.Fatalf("recommended must be equality, got %+v", ts.Recommended)
	}
}

func TestMagnitudeStatuses(t *testing.T) {
	w1 := mkWave(DirectionUp, 0, 2, 100, 200)
	w2 := mkWave(DirectionDown, 2, 4, 200, 150)
	calc := newTestCalc()

	// Above the minimum target, below the common one.
	ts := calc.Wave3Targets(w1, w2, 300)
	statuses := map[string]string{}
	for _, m := range ts.Magnitudes {
		statuses[m.Level] = m.Status
	}
	if statuses["minimum"] != "exceeded" {
		t.Fatalf("minimum status = %q", statuses["minimum"])
	}
	if statuses["common"] != "pending" {
		t.Fatalf("common status = %q", statuses["common"])
	}

	// A hair under the common target still reads pending: the direction
	// check wins over the reach band.
	ts = calc.Wave3Targets(w1, w2, 311.0)
	for _, m := range ts.Magnitudes {
		if m.Level == "common" && m.Status != "pending" {
			t.Fatalf("in-direction distance must stay pending, got %q", m.Status)
		}
	}

	// A hair past it is within the band and reads reached.
	ts = calc.Wave3Targets(w1, w2, 312.0)
	for _, m := range ts.Magnitudes {
		if m.Level == "common" && m.Status != "reached" {
			t.Fatalf("expected reached, got %q", m.Status)
		}
	}
}

func TestImpulseTargetsDispatch(t *testing.T) {
	ws := validImpulseWaves()
	calc := newTestCalc()

	if _, err := calc.ImpulseTargets(ws[:1], "3", 100); err == nil {
		t.Fatalf("expected error for too few waves")
	}
	if _, err := calc.ImpulseTargets(ws, "7", 100); err == nil {
		t.Fatalf("expected error for unknown wave")
	}
	ts, err := calc.ImpulseTargets(ws, "5", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.Wave != "Wave 5" {
		t.Fatalf("dispatched wave = %q", ts.Wave)
	}
}
