package usecase

import "testing"

func TestAnalysisConfigFallbacks(t *testing.T) {
	cfg := WaveAnalysisConfig{
		MinProbability:      42,
		ScanStep:            7,
		MaxPatternsPerStart: 2,
		Overlap:             "all",
	}

	if got := cfg.minProbabilityOr(80, 50); got != 80 {
		t.Errorf("explicit min probability = %v, want 80", got)
	}
	if got := cfg.minProbabilityOr(0, 50); got != 42 {
		t.Errorf("configured min probability = %v, want 42", got)
	}
	if got := cfg.scanStepOr(0); got != 7 {
		t.Errorf("configured scan step = %v, want 7", got)
	}
	if got := cfg.maxPatternsOr(0); got != 2 {
		t.Errorf("configured max patterns = %v, want 2", got)
	}
	if got := cfg.overlapOr(""); got != "all" {
		t.Errorf("configured overlap = %q, want all", got)
	}

	var zero WaveAnalysisConfig
	if got := zero.minProbabilityOr(0, 50); got != 50 {
		t.Errorf("fallback min probability = %v, want 50", got)
	}
	if got := zero.scanStepOr(0); got != 5 {
		t.Errorf("fallback scan step = %v, want 5", got)
	}
	if got := zero.maxPatternsOr(0); got != 3 {
		t.Errorf("fallback max patterns = %v, want 3", got)
	}
	if got := zero.overlapOr(""); got != "highest_probability" {
		t.Errorf("fallback overlap = %q", got)
	}
}
