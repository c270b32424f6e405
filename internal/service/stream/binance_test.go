package stream

import (
	"testing"
	"time"
)

func TestKlineToCandle(t *testing.T) {
	k := bnKline{
		StartMs: 1735689600000, // 2025-01-01T00:00:00Z
		Symbol:  "BTCUSDT",
		Open:    "95000.1",
		High:    "95500.5",
		Low:     "94800.0",
		Close:   "95250.25",
		Volume:  "123.45",
		Final:   true,
	}

	c, err := k.toCandle()
	if err != nil {
		t.Fatalf("toCandle: %v", err)
	}
	if c.Symbol != "BTCUSDT" {
		t.Errorf("symbol = %q", c.Symbol)
	}
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !c.Bucket.Equal(want) {
		t.Errorf("bucket = %v, want %v", c.Bucket, want)
	}
	if c.Open != 95000.1 || c.High != 95500.5 || c.Low != 94800.0 || c.Close != 95250.25 {
		t.Errorf("ohlc = %v %v %v %v", c.Open, c.High, c.Low, c.Close)
	}
	if c.Volume != 123.45 {
		t.Errorf("volume = %v", c.Volume)
	}
}

func TestKlineToCandleBadNumber(t *testing.T) {
	k := bnKline{Open: "not-a-number", High: "1", Low: "1", Close: "1", Volume: "1"}
	if _, err := k.toCandle(); err == nil {
		t.Fatal("expected parse error")
	}
}
