package domain_test

import (
	"testing"

	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/domaintest"
	"github.com/stretchr/testify/require"
)

func uniformScores(score float64) domain.Scores {
	return domain.Scores{Cutting: score, Forging: score, Quenching: score}
}

func TestAverageQuality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scores domain.Scores
		want   int
	}{
		{name: "all zero", scores: uniformScores(0), want: 0},
		{name: "all max", scores: uniformScores(100), want: 100},
		{name: "floored", scores: domain.Scores{Cutting: 100, Forging: 100, Quenching: 99}, want: 99},
		{name: "fractional cutting", scores: domain.Scores{Cutting: 77.5, Forging: 80, Quenching: 83}, want: 80},
		{name: "mixed", scores: domain.Scores{Cutting: 10, Forging: 60, Quenching: 100}, want: 56},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			quality := domain.AverageQuality(tc.scores)
			require.Equal(t, tc.want, quality)
			require.GreaterOrEqual(t, quality, 0)
			require.LessOrEqual(t, quality, 100)
		})
	}
}

func TestComputeOutcome(t *testing.T) {
	t.Parallel()

	base := domain.OutcomeInput{
		Type:                domain.ItemSword,
		Material:            domain.MaterialIron,
		Scores:              uniformScores(80),
		MarketingMultiplier: 1,
		IsBoss:              false,
	}

	t.Run("sword of iron at 80", func(t *testing.T) {
		t.Parallel()

		outcome := domain.ComputeOutcome(base)
		require.Equal(t, domain.Outcome{
			Item: domain.Item{
				Type:     domain.ItemSword,
				Material: domain.MaterialIron,
				Quality:  80,
				Value:    40,
			},
			ReputationGain: 5,
		}, outcome)
	})

	t.Run("boss pays triple", func(t *testing.T) {
		t.Parallel()

		input := base
		input.IsBoss = true
		require.Equal(t, 120, domain.ComputeOutcome(input).Item.Value)
	})

	t.Run("linear in marketing multiplier", func(t *testing.T) {
		t.Parallel()

		for _, multiplier := range []float64{1, 1.5, 2, 2.5, 3} {
			input := base
			input.MarketingMultiplier = multiplier
			require.Equal(t, int(40*multiplier), domain.ComputeOutcome(input).Item.Value)
		}
	})

	t.Run("linear in material multiplier", func(t *testing.T) {
		t.Parallel()

		for _, material := range domain.Materials() {
			input := base
			input.Material = material
			require.Equal(t, int(40*material.QualityMultiplier()), domain.ComputeOutcome(input).Item.Value)
		}
	})

	t.Run("base values", func(t *testing.T) {
		t.Parallel()

		// Quality 40 makes the value equal to the base value
		for _, itemType := range domain.ItemTypes() {
			input := base
			input.Type = itemType
			input.Scores = uniformScores(40)
			require.Equal(t, itemType.BaseValue(), domain.ComputeOutcome(input).Item.Value)
		}
	})

	t.Run("reputation boundary", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			score float64
			want  int
		}{
			{score: 0, want: 1},
			{score: 70, want: 1},
			{score: 71, want: 5},
			{score: 100, want: 5},
		}
		for _, tc := range tests {
			input := base
			input.Scores = uniformScores(tc.score)
			require.Equal(t, tc.want, domain.ComputeOutcome(input).ReputationGain, "score %v", tc.score)
		}
	})

	t.Run("zero quality is worthless", func(t *testing.T) {
		t.Parallel()

		input := base
		input.Scores = uniformScores(0)
		input.IsBoss = true
		require.Equal(t, 0, domain.ComputeOutcome(input).Item.Value)
	})
}

func TestCraftingCycleEconomy(t *testing.T) {
	t.Parallel()

	state := domaintest.NewGameStateBuilder().WithDay(3).Build()

	state, cost, ok := domain.SelectMaterial(state, domain.MaterialIron)
	require.True(t, ok)
	require.Zero(t, cost)
	require.Equal(t, 4, state.Stock(domain.MaterialIron))

	outcome := domain.ComputeOutcome(domain.OutcomeInput{
		Type:                domain.ItemSword,
		Material:            domain.MaterialIron,
		Scores:              uniformScores(80),
		MarketingMultiplier: state.UpgradeMultiplier(domain.UpgradeMarketing),
	})

	state = domain.AwardItem(state, outcome)
	require.Equal(t, 540, state.Gold)
	require.Equal(t, 5, state.Reputation)
	require.Equal(t, 3, state.Day)
}
