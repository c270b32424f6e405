package waves

import "testing"

// pointSeries builds a series where every bar's high, low and close equal
// one price, so swing pivots land exactly on the local extremes.
func pointSeries(prices ...float64) *Series {
	highs := make([]float64, len(prices))
	lows := make([]float64, len(prices))
	closes := make([]float64, len(prices))
	copy(highs, prices)
	copy(lows, prices)
	copy(closes, prices)
	return NewSeriesFromHLC(highs, lows, closes, nil)
}

func TestFindMonoWaveUpSkipZero(t *testing.T) {
	s := pointSeries(10, 20, 30, 25, 35, 45, 40)

	w, ok := FindMonoWaveUp(s, 0, 0)
	if !ok {
		t.Fatalf("expected wave")
	}
	if w.EndIdx != 2 {
		t.Fatalf("expected end idx 2, got %d", w.EndIdx)
	}
	if w.StartPrice != 10 || w.EndPrice != 30 {
		t.Fatalf("unexpected prices %v -> %v", w.StartPrice, w.EndPrice)
	}
	if w.Length() != 20 || w.Duration() != 2 {
		t.Fatalf("unexpected length %v duration %d", w.Length(), w.Duration())
	}
}

func TestFindMonoWaveUpSkipOne(t *testing.T) {
	s := pointSeries(10, 20, 30, 25, 35, 45, 40)

	w, ok := FindMonoWaveUp(s, 0, 1)
	if !ok {
		t.Fatalf("expected wave")
	}
	if w.EndIdx != 5 || w.EndPrice != 45 {
		t.Fatalf("expected terminus 5@45, got %d@%v", w.EndIdx, w.EndPrice)
	}
}

func TestFindMonoWaveUpExhausted(t *testing.T) {
	s := pointSeries(10, 20, 30, 25, 35, 45, 40)

	if _, ok := FindMonoWaveUp(s, 0, 2); ok {
		t.Fatalf("expected exhaustion for skip 2")
	}
}

func TestFindMonoWaveUpNeverUndercut(t *testing.T) {
	// Monotonically rising, no terminus ever registers.
	s := pointSeries(10, 20, 30, 40, 50)
	if _, ok := FindMonoWaveUp(s, 0, 0); ok {
		t.Fatalf("expected no wave on monotonic rise")
	}
}

func TestFindMonoWaveDown(t *testing.T) {
	s := pointSeries(45, 35, 25, 30, 20, 10, 15)

	w, ok := FindMonoWaveDown(s, 0, 0)
	if !ok {
		t.Fatalf("expected wave")
	}
	if w.EndIdx != 2 || w.EndPrice != 25 {
		t.Fatalf("expected terminus 2@25, got %d@%v", w.EndIdx, w.EndPrice)
	}
	if w.High() != 45 || w.Low() != 25 {
		t.Fatalf("unexpected extremes high=%v low=%v", w.High(), w.Low())
	}

	w, ok = FindMonoWaveDown(s, 0, 1)
	if !ok {
		t.Fatalf("expected wave for skip 1")
	}
	if w.EndIdx != 5 || w.EndPrice != 10 {
		t.Fatalf("expected terminus 5@10, got %d@%v", w.EndIdx, w.EndPrice)
	}
}

func TestFindMonoWaveBadStart(t *testing.T) {
	s := pointSeries(10, 20, 30)

	if _, ok := FindMonoWaveUp(s, 2, 0); ok {
		t.Fatalf("start at last bar must fail")
	}
	if _, ok := FindMonoWaveUp(s, -1, 0); ok {
		t.Fatalf("negative start must fail")
	}
	if _, ok := FindMonoWaveUp(s, 0, -1); ok {
		t.Fatalf("negative skip must fail")
	}
}
