package minigame

import "time"

const (
	CountdownFrom = 3
	CountdownStep = time.Second
)

// Countdown counts down from CountdownFrom, one step per CountdownStep
type Countdown struct {
	elapsed    time.Duration
	count      int
	done       bool
	onStep     func(count int)
	onComplete func()
}

func NewCountdown(onStep func(count int), onComplete func()) *Countdown {
	return &Countdown{
		count:      CountdownFrom,
		onStep:     onStep,
		onComplete: onComplete,
	}
}

// Count is the number currently shown, 0 once the countdown is done
func (c *Countdown) Count() int {
	return c.count
}

func (c *Countdown) Remaining() (time.Duration, bool) {
	if c.done {
		return 0, false
	}
	return CountdownFrom*CountdownStep - c.elapsed, true
}

func (c *Countdown) Advance(dt time.Duration) {
	if c.done {
		return
	}
	c.elapsed += dt

	for !c.done && c.elapsed >= time.Duration(CountdownFrom-c.count+1)*CountdownStep {
		c.count--
		if c.count == 0 {
			c.done = true
			c.onComplete()
			return
		}
		c.onStep(c.count)
	}
}
