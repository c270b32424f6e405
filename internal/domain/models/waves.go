package models

import "time"

// WaveInfo is a single labeled monowave inside a detected pattern, flattened
// for transport.
type WaveInfo struct {
	Label      string    `json:"label"`
	Direction  string    `json:"direction"`
	StartIdx   int       `json:"start_idx"`
	EndIdx     int       `json:"end_idx"`
	StartPrice float64   `json:"start_price"`
	EndPrice   float64   `json:"end_price"`
	StartTime  time.Time `json:"start_time,omitempty"`
	EndTime    time.Time `json:"end_time,omitempty"`
}

// PatternEvent is the Kafka payload emitted whenever a search finds a
// pattern worth publishing. Indices are relative to the candle window the
// search ran on; timestamps anchor them to real time.
type PatternEvent struct {
	Symbol      string     `json:"symbol"`
	Timeframe   string     `json:"timeframe"`
	PatternType string     `json:"pattern_type"`
	Probability float64    `json:"probability"`
	Category    string     `json:"category"`
	StartPrice  float64    `json:"start_price"`
	EndPrice    float64    `json:"end_price"`
	Waves       []WaveInfo `json:"waves"`
	DetectedAt  time.Time  `json:"detected_at"`
}
