package minigame

type Tier string

const (
	TierLegendary Tier = "legendary"
	TierGreat     Tier = "great"
	TierOK        Tier = "ok"
	TierBad       Tier = "bad"
)

// TierFor grades a minigame score for the summary screen
func TierFor(score float64) Tier {
	switch {
	case score >= 90:
		return TierLegendary
	case score >= 70:
		return TierGreat
	case score >= 50:
		return TierOK
	default:
		return TierBad
	}
}
