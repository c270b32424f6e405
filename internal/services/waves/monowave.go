package waves

// Direction of a monotonic price swing.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// MonoWave is one monotonic price swing between two series indices.
type MonoWave struct {
	Direction  Direction
	Label      string
	StartIdx   int
	EndIdx     int
	StartPrice float64
	EndPrice   float64
	Skip       int
}

// Length is the absolute price distance covered by the swing.
func (w MonoWave) Length() float64 {
	d := w.EndPrice - w.StartPrice
	if d < 0 {
		return -d
	}
	return d
}

// Duration is the swing length in bars.
func (w MonoWave) Duration() int { return w.EndIdx - w.StartIdx }

// High returns the higher of the two swing endpoints.
func (w MonoWave) High() float64 {
	if w.Direction == DirectionUp {
		return w.EndPrice
	}
	return w.StartPrice
}

// Low returns the lower of the two swing endpoints.
func (w MonoWave) Low() float64 {
	if w.Direction == DirectionUp {
		return w.StartPrice
	}
	return w.EndPrice
}

// FindMonoWaveUp locates an upward swing starting at the low of bar start.
//
// Skip semantics: scanning forward we track the running maximum high and its
// bar index m (m must be past start). A candidate terminus is registered the
// first time a later bar's low undercuts the low of bar m; once counted, a
// further candidate requires a new running-maximum high first. skip selects
// the (skip+1)-th candidate, so larger skips read progressively longer
// swings from the same start. The second result is false when the series is
// exhausted before the requested candidate appears.
func FindMonoWaveUp(s *Series, start, skip int) (MonoWave, bool) {
	end, ok := findSwingEnd(s, start, skip, DirectionUp)
	if !ok {
		return MonoWave{}, false
	}
	return MonoWave{
		Direction:  DirectionUp,
		StartIdx:   start,
		EndIdx:     end,
		StartPrice: s.Low(start),
		EndPrice:   s.High(end),
		Skip:       skip,
	}, true
}

// FindMonoWaveDown locates a downward swing starting at the high of bar
// start, mirroring FindMonoWaveUp with highs and lows swapped.
func FindMonoWaveDown(s *Series, start, skip int) (MonoWave, bool) {
	end, ok := findSwingEnd(s, start, skip, DirectionDown)
	if !ok {
		return MonoWave{}, false
	}
	return MonoWave{
		Direction:  DirectionDown,
		StartIdx:   start,
		EndIdx:     end,
		StartPrice: s.High(start),
		EndPrice:   s.Low(end),
		Skip:       skip,
	}, true
}

func findSwingEnd(s *Series, start, skip int, dir Direction) (int, bool) {
	n := s.Len()
	if start < 0 || start >= n-1 || skip < 0 {
		return 0, false
	}

	pivot := start
	counted := false
	seen := 0

	if dir == DirectionUp {
		pivotHigh := s.High(start)
		for j := start + 1; j < n; j++ {
			if s.High(j) > pivotHigh {
				pivotHigh = s.High(j)
				pivot = j
				counted = false
				continue
			}
			if pivot > start && !counted && s.Low(j) < s.Low(pivot) {
				if seen == skip {
					return pivot, true
				}
				seen++
				counted = true
			}
		}
		return 0, false
	}

	pivotLow := s.Low(start)
	for j := start + 1; j < n; j++ {
		if s.Low(j) < pivotLow {
			pivotLow = s.Low(j)
			pivot = j
			counted = false
			continue
		}
		if pivot > start && !counted && s.High(j) > s.High(pivot) {
			if seen == skip {
				return pivot, true
			}
			seen++
			counted = true
		}
	}
	return 0, false
}
