package minigame

import (
	"time"
)

// TickDuration is the length of one simulation tick, speeds are given per tick
const TickDuration = time.Second / 60

const (
	cursorMin = 0.0
	cursorMax = 100.0
)

// Rand is the source of randomness used by the minigames
//
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

func ticks(dt time.Duration) float64 {
	return float64(dt) / float64(TickDuration)
}

// durationForTicks rounds up, advancing by the returned duration covers at least n ticks
func durationForTicks(n float64) time.Duration {
	if n <= 0 {
		return 0
	}
	d := time.Duration(n * float64(TickDuration))
	for ticks(d) < n {
		d++
	}
	return d
}

// oscillator is a cursor moving back and forth in [0,100]
type oscillator struct {
	position  float64
	direction float64
}

func newOscillator() oscillator {
	return oscillator{position: cursorMin, direction: 1}
}

func (o *oscillator) advance(distance float64) {
	position := o.position + o.direction*distance
	for position > cursorMax || position < cursorMin {
		if position > cursorMax {
			position = 2*cursorMax - position
			o.direction = -1
		} else {
			position = 2*cursorMin - position
			o.direction = 1
		}
	}

	switch position {
	case cursorMax:
		o.direction = -1
	case cursorMin:
		o.direction = 1
	}

	o.position = position
}
