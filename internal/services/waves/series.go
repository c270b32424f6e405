package waves

import (
	"time"

	"WaveScope/internal/domain/models"
)

// Series is a read-only view of an OHLC candle sequence. The 0-based slice
// index is the canonical time axis for all wave computations; timestamps are
// carried along only for reporting.
type Series struct {
	highs  []float64
	lows   []float64
	closes []float64
	times  []time.Time
}

// NewSeries builds a Series from candles. The candles must already be in
// ascending time order; the Series does not copy values and callers must not
// mutate the input while a search is running.
func NewSeries(candles []models.Candle) *Series {
	s := &Series{
		highs:  make([]float64, len(candles)),
		lows:   make([]float64, len(candles)),
		closes: make([]float64, len(candles)),
		times:  make([]time.Time, len(candles)),
	}
	for i, c := range candles {
		s.highs[i] = c.High
		s.lows[i] = c.Low
		s.closes[i] = c.Close
		s.times[i] = c.Bucket
	}
	return s
}

// NewSeriesFromHLC builds a Series from raw price slices. Used by tests and
// by callers that already hold columnar data. All slices must have the same
// length; times may be nil.
func NewSeriesFromHLC(highs, lows, closes []float64, times []time.Time) *Series {
	return &Series{highs: highs, lows: lows, closes: closes, times: times}
}

func (s *Series) Len() int { return len(s.highs) }

func (s *Series) High(i int) float64  { return s.highs[i] }
func (s *Series) Low(i int) float64   { return s.lows[i] }
func (s *Series) Close(i int) float64 { return s.closes[i] }

// Time returns the timestamp at index i, or the zero time when the series
// was built without timestamps.
func (s *Series) Time(i int) time.Time {
	if s.times == nil || i >= len(s.times) {
		return time.Time{}
	}
	return s.times[i]
}

// minLow returns the minimum low over [from, to). Callers guarantee a
// non-empty range.
func (s *Series) minLow(from, to int) float64 {
	m := s.lows[from]
	for i := from + 1; i < to; i++ {
		if s.lows[i] < m {
			m = s.lows[i]
		}
	}
	return m
}

// maxHigh returns the maximum high over [from, to).
func (s *Series) maxHigh(from, to int) float64 {
	m := s.highs[from]
	for i := from + 1; i < to; i++ {
		if s.highs[i] > m {
			m = s.highs[i]
		}
	}
	return m
}
