package models

// Requests for the wave-analysis HTTP endpoints. Defined in domain for
// consistency and reuse. Scan knobs without a default tag fall back to the
// configured analysis defaults when left unset.

type WaveSearchRequest struct {
	Symbol         string  `query:"symbol" json:"symbol" validate:"required"`
	N              int     `query:"n" json:"n" default:"300" validate:"gte=8,lte=5000"`
	TF             string  `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 1h 1d"`
	Type           string  `query:"type" json:"type" default:"impulse" validate:"oneof=impulse correction"`
	StartIdx       int     `query:"start_idx" json:"start_idx" default:"0" validate:"gte=0"`
	CurrentPrice   float64 `query:"current_price" json:"current_price" default:"-1"`
	MinProbability float64 `query:"min_probability" json:"min_probability" validate:"gte=0,lte=100"`
	Report         bool    `query:"report" json:"report"`
}

type WaveTargetsRequest struct {
	Symbol       string  `query:"symbol" json:"symbol" validate:"required"`
	N            int     `query:"n" json:"n" default:"300" validate:"gte=8,lte=5000"`
	TF           string  `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 1h 1d"`
	Wave         string  `query:"wave" json:"wave" default:"5" validate:"oneof=3 4 5 C"`
	StartIdx     int     `query:"start_idx" json:"start_idx" default:"0" validate:"gte=0"`
	CurrentPrice float64 `query:"current_price" json:"current_price" default:"-1"`
}

type WaveDistributionRequest struct {
	Symbol         string  `query:"symbol" json:"symbol" validate:"required"`
	N              int     `query:"n" json:"n" default:"300" validate:"gte=8,lte=5000"`
	TF             string  `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 1h 1d"`
	Type           string  `query:"type" json:"type" default:"impulse" validate:"oneof=impulse correction"`
	StartIdx       int     `query:"start_idx" json:"start_idx" default:"0" validate:"gte=0"`
	MinProbability float64 `query:"min_probability" json:"min_probability" validate:"gte=0,lte=100"`
}

type WaveLabelRequest struct {
	Symbol              string  `query:"symbol" json:"symbol" validate:"required"`
	N                   int     `query:"n" json:"n" default:"600" validate:"gte=50,lte=10000"`
	TF                  string  `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 1h 1d"`
	Step                int     `query:"step" json:"step" validate:"omitempty,gte=1,lte=100"`
	MaxPatternsPerStart int     `query:"max_patterns_per_start" json:"max_patterns_per_start" validate:"omitempty,gte=1,lte=20"`
	MinProbability      float64 `query:"min_probability" json:"min_probability" validate:"gte=0,lte=100"`
	Overlap             string  `query:"overlap" json:"overlap" validate:"omitempty,oneof=all highest_probability non_overlapping"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"300" validate:"gte=1,lte=10000"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 1h 1d"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
}
