package minigame

import (
	"math"
	"time"
)

const (
	ForgingSettleDelay = 500 * time.Millisecond
	ForgingHitCooldown = 200 * time.Millisecond

	forgingCenter          = 50.0
	forgingInitialSpeed    = 1.5
	forgingMinSpeed        = 1.0
	forgingPerfectSpeedUp  = 0.2
	forgingBadSlowDown     = 0.1
	forgingGoodBaseWidth   = 15.0
	forgingGoodWidthPerLvl = 3.0
	forgingBaseHitPower    = 10.0
	forgingHitPowerPerLvl  = 2.0
	forgingPerfectGain     = 1.5
	forgingGoodGain        = 1.0
	forgingBadGain         = 0.5
	forgingMaxProgress     = 100.0

	forgingBaseQuality        = 50
	forgingQualityRange       = 30
	forgingPerfectFinishBonus = 20
	forgingQualityPerAnvilLvl = 2
	forgingMaxQuality         = 100
)

type HitGrade string

const (
	HitPerfect HitGrade = "perfect"
	HitGood    HitGrade = "good"
	HitBad     HitGrade = "bad"
)

type HitResult struct {
	Grade    HitGrade
	Gain     float64
	Progress float64

	// Completed is set on the hit that finishes the forging, Quality is only set then
	Completed bool
	Quality   int
}

type ForgingView struct {
	Cursor       float64
	Speed        float64
	Progress     float64
	PerfectMin   float64
	PerfectMax   float64
	GoodMin      float64
	GoodMax      float64
	CoolingDown  bool
	Completed    bool
	LastGrade    HitGrade
	FinalQuality int
}

// Forging is the hammering minigame
//
// The player strikes while a cursor sweeps across the anvil. Strikes near the
// center advance the progress bar faster, and the forging completes at 100.
type Forging struct {
	cursor      oscillator
	speed       float64
	progress    float64
	hammerLevel int
	anvilLevel  int
	cooldown    time.Duration
	lastGrade   HitGrade
	quality     int
	completed   bool
	rng         Rand
	onComplete  func(quality float64)
}

func NewForging(hammerLevel, anvilLevel int, rng Rand, onComplete func(quality float64)) *Forging {
	return &Forging{
		cursor:      newOscillator(),
		speed:       forgingInitialSpeed,
		hammerLevel: hammerLevel,
		anvilLevel:  anvilLevel,
		rng:         rng,
		onComplete:  onComplete,
	}
}

func GoodHalfWidth(anvilLevel int) float64 {
	return forgingGoodBaseWidth + forgingGoodWidthPerLvl*float64(anvilLevel)
}

func PerfectHalfWidth(anvilLevel int) float64 {
	return GoodHalfWidth(anvilLevel) / 2
}

func HitPower(hammerLevel int) float64 {
	return forgingBaseHitPower + forgingHitPowerPerLvl*float64(hammerLevel)
}

// GradeHit grades a strike at cursor, zone edges are exclusive
func GradeHit(cursor float64, anvilLevel int) HitGrade {
	distance := math.Abs(cursor - forgingCenter)
	switch {
	case distance < PerfectHalfWidth(anvilLevel):
		return HitPerfect
	case distance < GoodHalfWidth(anvilLevel):
		return HitGood
	default:
		return HitBad
	}
}

func (f *Forging) Advance(dt time.Duration) {
	if f.completed {
		return
	}
	f.cursor.advance(f.speed * ticks(dt))
	f.cooldown = max(0, f.cooldown-dt)
}

// Hit strikes the anvil, ok is false while cooling down or after completion
func (f *Forging) Hit() (HitResult, bool) {
	if f.completed || f.cooldown > 0 {
		return HitResult{}, false
	}
	f.cooldown = ForgingHitCooldown

	grade := GradeHit(f.cursor.position, f.anvilLevel)
	power := HitPower(f.hammerLevel)

	var gain float64
	switch grade {
	case HitPerfect:
		gain = power * forgingPerfectGain
		f.speed += forgingPerfectSpeedUp
	case HitGood:
		gain = power * forgingGoodGain
	case HitBad:
		gain = power * forgingBadGain
		f.speed = max(forgingMinSpeed, f.speed-forgingBadSlowDown)
	}

	f.lastGrade = grade
	f.progress = min(forgingMaxProgress, f.progress+gain)

	result := HitResult{
		Grade:    grade,
		Gain:     gain,
		Progress: f.progress,
	}

	if f.progress >= forgingMaxProgress {
		f.completed = true
		f.quality = f.finishQuality(grade)
		result.Completed = true
		result.Quality = f.quality
		f.onComplete(float64(f.quality))
	}

	return result, true
}

func (f *Forging) finishQuality(lastGrade HitGrade) int {
	quality := forgingBaseQuality + f.rng.IntN(forgingQualityRange)
	if lastGrade == HitPerfect {
		quality += forgingPerfectFinishBonus
	}
	quality += forgingQualityPerAnvilLvl * f.anvilLevel
	return min(forgingMaxQuality, quality)
}

func (f *Forging) View() ForgingView {
	perfect := PerfectHalfWidth(f.anvilLevel)
	good := GoodHalfWidth(f.anvilLevel)
	return ForgingView{
		Cursor:       f.cursor.position,
		Speed:        f.speed,
		Progress:     f.progress,
		PerfectMin:   forgingCenter - perfect,
		PerfectMax:   forgingCenter + perfect,
		GoodMin:      forgingCenter - good,
		GoodMax:      forgingCenter + good,
		CoolingDown:  f.cooldown > 0,
		Completed:    f.completed,
		LastGrade:    f.lastGrade,
		FinalQuality: f.quality,
	}
}
