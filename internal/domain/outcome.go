package domain

import "math"

const (
	qualityValueDivisor     = 40.0
	bossValueMultiplier     = 3
	highQualityThreshold    = 70
	highQualityReputation   = 5
	normalQualityReputation = 1
)

// Scores holds the result of each minigame in a crafting cycle, each in 0-100
type Scores struct {
	Cutting   float64
	Forging   float64
	Quenching float64
}

type OutcomeInput struct {
	Type                ItemType
	Material            Material
	Scores              Scores
	MarketingMultiplier float64
	IsBoss              bool
}

type Outcome struct {
	Item           Item
	ReputationGain int
}

func AverageQuality(scores Scores) int {
	return int(math.Floor((scores.Cutting + scores.Forging + scores.Quenching) / 3))
}

func ComputeOutcome(input OutcomeInput) Outcome {
	quality := AverageQuality(input.Scores)

	value := int(math.Floor(
		float64(input.Type.BaseValue()) *
			input.Material.QualityMultiplier() *
			(float64(quality) / qualityValueDivisor) *
			input.MarketingMultiplier,
	))
	if input.IsBoss {
		value *= bossValueMultiplier
	}

	reputationGain := normalQualityReputation
	if quality > highQualityThreshold {
		reputationGain = highQualityReputation
	}

	return Outcome{
		Item: Item{
			Type:     input.Type,
			Material: input.Material,
			Quality:  quality,
			Value:    value,
		},
		ReputationGain: reputationGain,
	}
}
