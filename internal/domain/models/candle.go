package models

import "time"

// Candle represents an OHLCV record, the unit of market data everything in
// the system consumes and produces.
type Candle struct {
	Bucket time.Time `json:"bucket"`
	Symbol string    `json:"symbol"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	OrgID  string    `json:"org_id,omitempty"`
}
