package minigame_test

import (
	"testing"
	"time"

	"github.com/Amund211/blacksmith/internal/minigame"
	"github.com/stretchr/testify/require"
)

func TestQuenchScore(t *testing.T) {
	t.Parallel()

	zone := minigame.Zone{Min: 30, Max: 50}

	tests := []struct {
		name        string
		temperature float64
		want        float64
	}{
		{name: "center", temperature: 40, want: 100},
		{name: "lower edge is inside", temperature: 30, want: 100},
		{name: "upper edge is inside", temperature: 50, want: 100},
		{name: "above", temperature: 60, want: 40},
		{name: "just above", temperature: 50.5, want: 68},
		{name: "below", temperature: 25, want: 55},
		{name: "floor", temperature: 100, want: 10},
		{name: "frozen", temperature: 0, want: 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.InDelta(t, tc.want, minigame.QuenchScore(tc.temperature, zone), 1e-9)
		})
	}
}

func TestQuenching(t *testing.T) {
	t.Parallel()

	// Zone 20+10=30 to 30+15+5=50
	newQuenching := func(onComplete func(float64)) *minigame.Quenching {
		return minigame.NewQuenching(&sequenceRand{ints: []int{10, 5}}, onComplete)
	}

	t.Run("zone is drawn from rng", func(t *testing.T) {
		t.Parallel()

		view := newQuenching(func(float64) {}).View()
		require.Equal(t, minigame.Zone{Min: 30, Max: 50}, view.Zone)
		require.InDelta(t, 100.0, view.Temperature, 1e-9)
		require.False(t, view.Stopped)
	})

	t.Run("stop inside the zone", func(t *testing.T) {
		t.Parallel()

		var completions []float64
		quenching := newQuenching(func(score float64) {
			completions = append(completions, score)
		})

		// 0.6 per tick, 100 ticks takes it to 40
		quenching.Advance(100 * minigame.TickDuration)
		require.InDelta(t, 40.0, quenching.View().Temperature, 1e-6)

		score, ok := quenching.Stop()
		require.True(t, ok)
		require.InDelta(t, 100.0, score, 1e-9)
		require.Equal(t, []float64{100}, completions)

		_, ok = quenching.Stop()
		require.False(t, ok)

		// The temperature is frozen once stopped
		quenching.Advance(time.Second)
		require.InDelta(t, 40.0, quenching.View().Temperature, 1e-6)
		require.Len(t, completions, 1)
	})

	t.Run("cooling is monotonic", func(t *testing.T) {
		t.Parallel()

		quenching := newQuenching(func(float64) {})

		previous := quenching.View().Temperature
		for range 200 {
			quenching.Advance(13 * time.Millisecond)
			temperature := quenching.View().Temperature
			require.LessOrEqual(t, temperature, previous)
			require.GreaterOrEqual(t, temperature, 0.0)
			previous = temperature
		}
	})

	t.Run("stops by itself at zero", func(t *testing.T) {
		t.Parallel()

		var completions []float64
		quenching := newQuenching(func(score float64) {
			completions = append(completions, score)
		})

		until, ok := quenching.UntilFrozen()
		require.True(t, ok)
		require.InDelta(t, (100.0/0.6/60)*float64(time.Second), float64(until), float64(time.Millisecond))

		quenching.Advance(until - time.Millisecond)
		require.False(t, quenching.View().Stopped)

		quenching.Advance(2 * time.Millisecond)
		view := quenching.View()
		require.True(t, view.Stopped)
		require.InDelta(t, 0.0, view.Temperature, 1e-9)
		require.Equal(t, []float64{10}, completions)

		_, ok = quenching.UntilFrozen()
		require.False(t, ok)
	})

	t.Run("overshooting clamps to zero", func(t *testing.T) {
		t.Parallel()

		quenching := newQuenching(func(float64) {})
		quenching.Advance(time.Minute)
		require.InDelta(t, 0.0, quenching.View().Temperature, 1e-9)
		require.InDelta(t, 10.0, quenching.View().Score, 1e-9)
	})
}
