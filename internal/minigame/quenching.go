package minigame

import (
	"math"
	"time"
)

const (
	QuenchingSettleDelay = 1500 * time.Millisecond

	quenchingStartTemperature = 100.0
	quenchingCoolingRate      = 0.6
	quenchingZoneMinBase      = 20
	quenchingZoneMinRange     = 50
	quenchingZoneSizeBase     = 15
	quenchingZoneSizeRange    = 10
	quenchingMaxScore         = 100.0
	quenchingMinScore         = 10.0
	quenchingPenaltyPerDegree = 3.0
)

// Zone is an inclusive temperature range
type Zone struct {
	Min float64
	Max float64
}

func (z Zone) Contains(temperature float64) bool {
	return temperature >= z.Min && temperature <= z.Max
}

func (z Zone) Center() float64 {
	return z.Min + (z.Max-z.Min)/2
}

type QuenchingView struct {
	Temperature float64
	Zone        Zone
	Stopped     bool
	Score       float64
}

// Quenching is the cooling minigame
//
// The blade cools down steadily and the player stops the cooling inside the
// target zone. Reaching zero stops it automatically.
type Quenching struct {
	temperature float64
	zone        Zone
	stopped     bool
	score       float64
	onComplete  func(score float64)
}

func NewQuenching(rng Rand, onComplete func(score float64)) *Quenching {
	zoneMin := float64(quenchingZoneMinBase + rng.IntN(quenchingZoneMinRange))
	zoneSize := float64(quenchingZoneSizeBase + rng.IntN(quenchingZoneSizeRange))
	return &Quenching{
		temperature: quenchingStartTemperature,
		zone:        Zone{Min: zoneMin, Max: zoneMin + zoneSize},
		onComplete:  onComplete,
	}
}

// QuenchScore grades a stop at temperature against the zone
func QuenchScore(temperature float64, zone Zone) float64 {
	if zone.Contains(temperature) {
		return quenchingMaxScore
	}
	distance := math.Abs(temperature - zone.Center())
	return math.Floor(max(quenchingMinScore, quenchingMaxScore-quenchingPenaltyPerDegree*distance))
}

func (q *Quenching) Advance(dt time.Duration) {
	if q.stopped {
		return
	}
	q.temperature -= quenchingCoolingRate * ticks(dt)
	if q.temperature <= 0 {
		q.temperature = 0
		q.stop()
	}
}

// UntilFrozen is the time left until the temperature reaches zero
func (q *Quenching) UntilFrozen() (time.Duration, bool) {
	if q.stopped {
		return 0, false
	}
	return durationForTicks(q.temperature / quenchingCoolingRate), true
}

// Stop ends the cooling at the current temperature, ok is false if already stopped
func (q *Quenching) Stop() (float64, bool) {
	if q.stopped {
		return 0, false
	}
	q.stop()
	return q.score, true
}

func (q *Quenching) stop() {
	q.stopped = true
	q.score = QuenchScore(q.temperature, q.zone)
	q.onComplete(q.score)
}

func (q *Quenching) View() QuenchingView {
	return QuenchingView{
		Temperature: q.temperature,
		Zone:        q.zone,
		Stopped:     q.stopped,
		Score:       q.score,
	}
}
