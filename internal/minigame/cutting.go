package minigame

import (
	"math"
	"time"
)

const (
	CuttingCuts        = 4
	CuttingSettleDelay = 500 * time.Millisecond

	cuttingSpeed       = 2.0
	cuttingTargetMin   = 20
	cuttingTargetRange = 60
	cuttingTargetWidth = 20.0
	cuttingMissScore   = 10.0
	cuttingHitBase     = 50.0
)

type CutResult struct {
	Score    float64
	Distance float64
	Hit      bool
	Last     bool // set on the cut that completes the minigame
}

type CuttingView struct {
	Cursor      float64
	TargetMin   float64
	TargetMax   float64
	CutsLeft    int
	Completed   bool
	RunningMean float64
}

// Cutting is the material cutting minigame
//
// A cursor sweeps over the material and the player cuts as close to the
// center of the target as possible, CuttingCuts times. The final score is the
// mean of the individual cut scores.
type Cutting struct {
	cursor     oscillator
	target     float64
	cutsLeft   int
	total      float64
	completed  bool
	rng        Rand
	onComplete func(score float64)
}

func NewCutting(rng Rand, onComplete func(score float64)) *Cutting {
	c := &Cutting{
		cursor:     newOscillator(),
		cutsLeft:   CuttingCuts,
		rng:        rng,
		onComplete: onComplete,
	}
	c.drawTarget()
	return c
}

func (c *Cutting) drawTarget() {
	c.target = float64(cuttingTargetMin + c.rng.IntN(cuttingTargetRange))
}

func (c *Cutting) Advance(dt time.Duration) {
	if c.completed {
		return
	}
	c.cursor.advance(cuttingSpeed * ticks(dt))
}

// Cut scores the current cursor position, ok is false once all cuts are used
func (c *Cutting) Cut() (CutResult, bool) {
	if c.completed || c.cutsLeft <= 0 {
		return CutResult{}, false
	}

	score, distance, hit := CutScore(c.cursor.position, c.target)
	c.total += score
	c.cutsLeft--

	result := CutResult{Score: score, Distance: distance, Hit: hit}

	if c.cutsLeft == 0 {
		c.completed = true
		result.Last = true
		c.onComplete(c.total / CuttingCuts)
		return result, true
	}

	c.drawTarget()
	return result, true
}

func (c *Cutting) View() CuttingView {
	done := CuttingCuts - c.cutsLeft
	mean := 0.0
	if done > 0 {
		mean = c.total / float64(done)
	}
	return CuttingView{
		Cursor:      c.cursor.position,
		TargetMin:   c.target - cuttingTargetWidth/2,
		TargetMax:   c.target + cuttingTargetWidth/2,
		CutsLeft:    c.cutsLeft,
		Completed:   c.completed,
		RunningMean: mean,
	}
}

// CutScore grades a cut at cursor against a target center
//
// Cuts within half the target width score between 50 and 100 depending on
// the distance to the center, anything further out scores 10.
func CutScore(cursor, target float64) (score float64, distance float64, hit bool) {
	distance = math.Abs(cursor - target)
	halfWidth := cuttingTargetWidth / 2
	if distance < halfWidth {
		return cuttingHitBase + (1-distance/halfWidth)*cuttingHitBase, distance, true
	}
	return cuttingMissScore, distance, false
}
