// Package stimulus implements the time-windowed sinusoidal source that
// injects energy into a tile's field at a fixed global coordinate.
package stimulus

import (
	"math"

	"github.com/dramalf/wave2d/internal/wavetile"
)

// DefaultAmplitude is the source amplitude used unless overridden.
const DefaultAmplitude = 10.0

// Stimulus is owned by the worker whose tile it was constructed against. It
// is armed at creation and retires once the iteration count passes its
// active window.
type Stimulus struct {
	tile *wavetile.Tile

	Start, Duration int
	Row, Col        int
	Period          int
	Amplitude       float64

	tick float64
}

// New constructs a stimulus bound to t, armed for [start, start+duration].
func New(t *wavetile.Tile, start, duration, row, col, period int) *Stimulus {
	return &Stimulus{
		tile:      t,
		Start:     start,
		Duration:  duration,
		Row:       row,
		Col:       col,
		Period:    period,
		Amplitude: DefaultAmplitude,
	}
}

// TriggerIfAvailable advances the stimulus by one iteration. It returns
// false once the stimulus has retired (the caller should drop it from its
// active list); true otherwise, whether or not this iteration actually
// wrote anything.
func (s *Stimulus) TriggerIfAvailable(iter int) bool {
	if iter > s.Start+s.Duration {
		return false
	}
	if iter < s.Start {
		return true
	}
	if iter == s.Start {
		s.tick = 0
	}

	if s.tile.CheckBounds(s.Row, s.Col) {
		v := s.Amplitude * math.Sin(2*math.Pi*s.tick/float64(s.Period))
		r, c, ok := s.tile.MapToLocal(s.Row, s.Col)
		if ok {
			if p, ok := s.tile.Cur(r, c); ok {
				*p = v
			}
			if p, ok := s.tile.Prev(r, c); ok {
				*p = v
			}
		}
	}

	s.tick++
	return true
}
