package app_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Amund211/blacksmith/internal/adapters/feedback"
	"github.com/Amund211/blacksmith/internal/app"
	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/domaintest"
	"github.com/Amund211/blacksmith/internal/minigame"
	"github.com/stretchr/testify/require"
)

// sequenceRand replays the given values, repeating the last one when exhausted
type sequenceRand struct {
	ints []int
}

func (r *sequenceRand) IntN(n int) int {
	value := r.ints[0]
	if len(r.ints) > 1 {
		r.ints = r.ints[1:]
	}
	return min(value, n-1)
}

func (r *sequenceRand) Float64() float64 {
	return 0.5
}

type gameFixture struct {
	game     *app.Game
	recorder *feedback.Recorder
	crafts   []domain.CraftRecord
	days     []domain.DayRecord
	requests []domain.CustomerRequest
	// materials offered with every customer request
	materials [][]domain.Material
}

func newGameFixture(t *testing.T, rng minigame.Rand, requests ...domain.CustomerRequest) *gameFixture {
	t.Helper()

	if len(requests) == 0 {
		requests = []domain.CustomerRequest{domaintest.NewCustomerRequestBuilder().Build()}
	}

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	fixture := &gameFixture{
		recorder: feedback.NewRecorder(0),
		requests: requests,
	}

	served := 0
	fixture.game = app.NewGame("session-id", app.GameDeps{
		Rand:     rng,
		Feedback: fixture.recorder,
		RequestCustomer: func(ctx context.Context, reputation int, materials []domain.Material) domain.CustomerRequest {
			fixture.materials = append(fixture.materials, materials)
			request := fixture.requests[min(served, len(fixture.requests)-1)]
			served++
			return request
		},
		NewID:   domaintest.NewUUIDSequence(),
		NowFunc: func() time.Time { return now },
		Hooks: app.GameHooks{
			OnItemCrafted: func(ctx context.Context, record domain.CraftRecord) {
				fixture.crafts = append(fixture.crafts, record)
			},
			OnDayClosed: func(ctx context.Context, record domain.DayRecord) {
				fixture.days = append(fixture.days, record)
			},
		},
	})

	return fixture
}

func (f *gameFixture) requirePhase(t *testing.T, want domain.Phase) {
	t.Helper()
	require.Equal(t, want, f.game.Snapshot().Phase)
}

func (f *gameFixture) requireFeedback(t *testing.T, want ...domain.Feedback) {
	t.Helper()
	if want == nil {
		want = []domain.Feedback{}
	}
	require.Equal(t, want, f.recorder.Drain())
}

// playOrder plays a full crafting cycle from IDLE to RESULT without aiming
func (f *gameFixture) playOrder(t *testing.T, material domain.Material) {
	t.Helper()
	ctx := t.Context()

	f.game.AcceptOrder(ctx)
	f.game.SelectMaterial(ctx, material)
	f.requirePhase(t, domain.PhaseCountdown)
	f.game.Advance(ctx, 3*time.Second)

	for range minigame.CuttingCuts {
		f.game.Cut(ctx)
	}
	f.game.Advance(ctx, minigame.CuttingSettleDelay)
	f.requirePhase(t, domain.PhaseSummary)
	f.game.Continue(ctx)
	f.game.Advance(ctx, 3*time.Second)

	for i := 0; f.game.Snapshot().Phase == domain.PhaseCrafting; i++ {
		require.Less(t, i, 100, "forging never completed")
		f.game.Hit(ctx)
		f.game.Advance(ctx, minigame.ForgingHitCooldown)
	}
	f.requirePhase(t, domain.PhaseSummary)
	f.game.Continue(ctx)
	f.game.Advance(ctx, 3*time.Second)

	f.requirePhase(t, domain.PhaseQuenching)
	f.game.Stop(ctx)
	f.game.Advance(ctx, minigame.QuenchingSettleDelay)
	f.requirePhase(t, domain.PhaseResult)
}

func TestGameCraftingCycle(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	// Cutting targets at 50, forging roll 10, quenching zone [30, 50]
	fixture := newGameFixture(t, &sequenceRand{ints: []int{30, 30, 30, 30, 10, 10, 5}})
	game := fixture.game

	fixture.requirePhase(t, domain.PhaseDayStart)

	game.StartDay(ctx)
	fixture.requirePhase(t, domain.PhaseIdle)
	fixture.requireFeedback(t, domain.FeedbackDayStart, domain.FeedbackCustomerEnter)

	snapshot := game.Snapshot()
	require.NotNil(t, snapshot.Customer)
	require.Equal(t, "Aldric", snapshot.Customer.Name)
	require.Equal(t, domain.ItemSword, snapshot.Customer.RequestType)
	require.Equal(t, 50, snapshot.Customer.MinQuality)
	require.Equal(t, 3, snapshot.MaxCustomers)

	game.AcceptOrder(ctx)
	fixture.requirePhase(t, domain.PhaseCraftingSetup)

	game.SelectMaterial(ctx, domain.MaterialIron)
	snapshot = game.Snapshot()
	require.Equal(t, domain.PhaseCountdown, snapshot.Phase)
	require.Equal(t, domain.PhaseCutting, snapshot.CountdownTarget)
	require.Equal(t, 3, snapshot.Countdown)
	require.Equal(t, 4, snapshot.State.Stock(domain.MaterialIron))
	require.Equal(t, domain.MaterialIron, snapshot.SelectedMaterial)
	fixture.requireFeedback(t, domain.FeedbackClick)

	game.Advance(ctx, time.Second)
	require.Equal(t, 2, game.Snapshot().Countdown)
	game.Advance(ctx, 2*time.Second)
	fixture.requirePhase(t, domain.PhaseCutting)
	fixture.requireFeedback(t, domain.FeedbackClick, domain.FeedbackClick)

	// Cutting: the cursor starts at 0 and moves 2 per tick
	game.Advance(ctx, 25*minigame.TickDuration)
	for range 4 {
		require.InDelta(t, 50.0, game.Snapshot().Cutting.Cursor, 1e-6)
		game.Cut(ctx)
		game.Advance(ctx, 100*minigame.TickDuration)
	}
	fixture.requireFeedback(t, domain.FeedbackSaw, domain.FeedbackSaw, domain.FeedbackSaw, domain.FeedbackSaw)

	// 4 * 100 ticks is longer than the settle delay
	snapshot = game.Snapshot()
	require.Equal(t, domain.PhaseSummary, snapshot.Phase)
	require.Nil(t, snapshot.Cutting)
	require.Equal(t, &app.PhaseSummary{
		Title: "Cutting",
		Score: 100,
		Tier:  minigame.TierLegendary,
		Next:  domain.PhaseCrafting,
	}, snapshot.Summary)
	require.InDelta(t, 100.0, snapshot.Scores.Cutting, 1e-9)

	game.Continue(ctx)
	game.Advance(ctx, 3*time.Second)
	fixture.requirePhase(t, domain.PhaseCrafting)
	fixture.recorder.Drain()

	// Forging: strike whenever the cursor is well inside the perfect zone
	hits := 0
	for i := 0; game.Snapshot().Forging != nil && !game.Snapshot().Forging.Completed; i++ {
		require.Less(t, i, 10_000)
		view := game.Snapshot().Forging
		if !view.CoolingDown && math.Abs(view.Cursor-50) < 8 {
			game.Hit(ctx)
			hits++
			continue
		}
		game.Advance(ctx, minigame.TickDuration)
	}
	require.Equal(t, 6, hits)
	fixture.requireFeedback(t,
		domain.FeedbackHitPerfect, domain.FeedbackHitPerfect, domain.FeedbackHitPerfect,
		domain.FeedbackHitPerfect, domain.FeedbackHitPerfect, domain.FeedbackHitPerfect,
		domain.FeedbackSuccess,
	)

	game.Advance(ctx, minigame.ForgingSettleDelay-time.Millisecond)
	fixture.requirePhase(t, domain.PhaseCrafting)
	game.Advance(ctx, time.Millisecond)
	snapshot = game.Snapshot()
	require.Equal(t, domain.PhaseSummary, snapshot.Phase)
	require.Equal(t, "Forging", snapshot.Summary.Title)
	require.Equal(t, domain.PhaseQuenching, snapshot.Summary.Next)
	// 50 + 10 + 20 (perfect finish) + 2 (anvil level 1)
	require.InDelta(t, 82.0, snapshot.Summary.Score, 1e-9)
	require.Equal(t, minigame.TierGreat, snapshot.Summary.Tier)

	game.Continue(ctx)
	game.Advance(ctx, 3*time.Second)
	fixture.requirePhase(t, domain.PhaseQuenching)
	require.Equal(t, minigame.Zone{Min: 30, Max: 50}, game.Snapshot().Quenching.Zone)
	fixture.recorder.Drain()

	game.Advance(ctx, 100*minigame.TickDuration)
	game.Stop(ctx)
	fixture.requireFeedback(t, domain.FeedbackSizzle)
	require.InDelta(t, 100.0, game.Snapshot().Scores.Quenching, 1e-9)

	game.Advance(ctx, minigame.QuenchingSettleDelay)
	snapshot = game.Snapshot()
	require.Equal(t, domain.PhaseResult, snapshot.Phase)
	require.Equal(t, &domain.Outcome{
		Item: domain.Item{
			Type:     domain.ItemSword,
			Material: domain.MaterialIron,
			Quality:  94,
			Value:    47,
		},
		ReputationGain: 5,
	}, snapshot.Outcome)
	require.Equal(t, 547, snapshot.State.Gold)
	require.Equal(t, 5, snapshot.State.Reputation)
	require.Equal(t, 47, snapshot.DailyGold)
	require.Equal(t, 5, snapshot.DailyReputation)

	// The payout sound comes a little later
	fixture.requireFeedback(t)
	game.Advance(ctx, 500*time.Millisecond)
	fixture.requireFeedback(t, domain.FeedbackCash)

	require.Len(t, fixture.crafts, 1)
	require.Equal(t, domain.CraftRecord{
		SessionID:    "session-id",
		Day:          1,
		CustomerName: "Aldric",
		IsBoss:       false,
		Item:         snapshot.Outcome.Item,
		Scores: domain.Scores{
			Cutting:   100,
			Forging:   82,
			Quenching: 100,
		},
		ReputationGain: 5,
		MaterialCost:   0,
		CraftedAt:      time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}, fixture.crafts[0])

	game.Dismiss(ctx)
	snapshot = game.Snapshot()
	require.Equal(t, domain.PhaseIdle, snapshot.Phase)
	require.Equal(t, 1, snapshot.CustomersServed)
	require.Nil(t, snapshot.Outcome)
	fixture.requireFeedback(t, domain.FeedbackCustomerEnter)
}

func TestGameCustomerRequest(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	request := domaintest.NewCustomerRequestBuilder().
		WithName("Hilde").
		WithDialogue("Steel, if you have it. Iron if you must.").
		WithType(domain.ItemDagger).
		Build()
	fixture := newGameFixture(t, &sequenceRand{ints: []int{30}}, request)
	game := fixture.game

	// Only iron is in stock
	require.Zero(t, game.Snapshot().State.Stock(domain.MaterialSteel))

	game.StartDay(ctx)
	fixture.requirePhase(t, domain.PhaseIdle)

	customer := game.Snapshot().Customer
	require.NotNil(t, customer)
	require.Equal(t, "Hilde", customer.Name)
	require.Equal(t, "Steel, if you have it. Iron if you must.", customer.Dialogue)
	require.Equal(t, domain.ItemDagger, customer.RequestType)

	require.Equal(t, [][]domain.Material{domain.Materials()}, fixture.materials)
}

func TestGameDayLoop(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	boss := domaintest.NewCustomerRequestBuilder().WithName("Morgrath").WithType(domain.ItemAxe).WithBoss(true).Build()
	fixture := newGameFixture(t, &sequenceRand{ints: []int{0}}, domaintest.NewCustomerRequestBuilder().Build(), boss)
	game := fixture.game

	game.StartDay(ctx)
	for i := range 3 {
		fixture.playOrder(t, domain.MaterialIron)
		require.Equal(t, i, game.Snapshot().CustomersServed)
		game.Dismiss(ctx)
	}

	snapshot := game.Snapshot()
	require.Equal(t, domain.PhaseDaySummary, snapshot.Phase)
	require.Equal(t, 3, snapshot.CustomersServed)
	require.Nil(t, snapshot.Customer)
	require.Equal(t, 2, snapshot.State.Stock(domain.MaterialIron))

	require.Len(t, fixture.crafts, 3)
	require.False(t, fixture.crafts[0].IsBoss)
	require.True(t, fixture.crafts[1].IsBoss)
	require.Equal(t, "Morgrath", fixture.crafts[1].CustomerName)

	goldEarned := 0
	reputationEarned := 0
	for _, craft := range fixture.crafts {
		goldEarned += craft.Item.Value
		reputationEarned += craft.ReputationGain
	}
	require.Equal(t, goldEarned, snapshot.DailyGold)
	require.Equal(t, reputationEarned, snapshot.DailyReputation)
	require.Equal(t, domain.InitialGold+goldEarned, snapshot.State.Gold)

	require.Equal(t, []domain.DayRecord{{
		SessionID:        "session-id",
		Day:              1,
		CustomersServed:  3,
		GoldEarned:       goldEarned,
		ReputationEarned: reputationEarned,
		ClosedAt:         time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}}, fixture.days)

	drained := fixture.recorder.Drain()
	require.Equal(t, domain.FeedbackSuccess, drained[len(drained)-1])

	game.NextDay(ctx)
	snapshot = game.Snapshot()
	require.Equal(t, domain.PhaseDayStart, snapshot.Phase)
	require.Equal(t, 2, snapshot.State.Day)

	// The daily totals reset when the next day starts
	game.StartDay(ctx)
	snapshot = game.Snapshot()
	require.Equal(t, 0, snapshot.CustomersServed)
	require.Equal(t, 0, snapshot.DailyGold)
	require.Equal(t, 0, snapshot.DailyReputation)
	require.NotNil(t, snapshot.Customer)
}

func TestGameCancel(t *testing.T) {
	t.Parallel()

	t.Run("back out of material selection", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		fixture := newGameFixture(t, &sequenceRand{ints: []int{0}})
		game := fixture.game

		game.StartDay(ctx)
		customer := game.Snapshot().Customer

		game.AcceptOrder(ctx)
		game.Cancel(ctx)

		snapshot := game.Snapshot()
		require.Equal(t, domain.PhaseIdle, snapshot.Phase)
		require.Equal(t, customer, snapshot.Customer)
		require.Equal(t, domain.InitialIronStock, snapshot.State.Stock(domain.MaterialIron))
	})

	t.Run("abandon forging", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		fixture := newGameFixture(t, &sequenceRand{ints: []int{0}})
		game := fixture.game

		game.StartDay(ctx)
		customer := game.Snapshot().Customer
		game.AcceptOrder(ctx)
		game.SelectMaterial(ctx, domain.MaterialIron)

		// Cancelling is not possible during the countdown or cutting
		game.Cancel(ctx)
		fixture.requirePhase(t, domain.PhaseCountdown)
		game.Advance(ctx, 3*time.Second)
		game.Cancel(ctx)
		fixture.requirePhase(t, domain.PhaseCutting)

		for range 4 {
			game.Cut(ctx)
		}
		game.Advance(ctx, minigame.CuttingSettleDelay)
		game.Continue(ctx)
		game.Advance(ctx, 3*time.Second)
		fixture.requirePhase(t, domain.PhaseCrafting)

		// Finish the forging, then cancel before it settles
		for game.Snapshot().Forging != nil && !game.Snapshot().Forging.Completed {
			game.Hit(ctx)
			game.Advance(ctx, minigame.ForgingHitCooldown)
		}
		game.Cancel(ctx)

		snapshot := game.Snapshot()
		require.Equal(t, domain.PhaseIdle, snapshot.Phase)
		require.Equal(t, customer, snapshot.Customer)
		require.Equal(t, domain.Scores{}, snapshot.Scores)
		require.Nil(t, snapshot.Forging)
		// The material is not refunded
		require.Equal(t, domain.InitialIronStock-1, snapshot.State.Stock(domain.MaterialIron))

		// The abandoned forging does not come back
		game.Advance(ctx, 10*time.Second)
		fixture.requirePhase(t, domain.PhaseIdle)

		// A new order can be taken for the same customer
		game.AcceptOrder(ctx)
		fixture.requirePhase(t, domain.PhaseCraftingSetup)
	})
}

func TestGameMaterialSelection(t *testing.T) {
	t.Parallel()

	t.Run("black market", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		fixture := newGameFixture(t, &sequenceRand{ints: []int{0}})
		game := fixture.game

		game.StartDay(ctx)
		game.AcceptOrder(ctx)
		game.SelectMaterial(ctx, domain.MaterialMythril)

		snapshot := game.Snapshot()
		require.Equal(t, domain.PhaseCountdown, snapshot.Phase)
		require.Equal(t, 100, snapshot.State.Gold)
		require.Equal(t, 400, snapshot.MaterialCost)
	})

	t.Run("unavailable material is a no-op", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		fixture := newGameFixture(t, &sequenceRand{ints: []int{0}})
		game := fixture.game

		game.StartDay(ctx)
		game.AcceptOrder(ctx)
		before := game.Snapshot()

		game.SelectMaterial(ctx, domain.MaterialAdamantite)
		require.Equal(t, before, game.Snapshot())
	})
}

func TestGamePreconditions(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	fixture := newGameFixture(t, &sequenceRand{ints: []int{0}})
	game := fixture.game

	before := game.Snapshot()
	game.AcceptOrder(ctx)
	game.SelectMaterial(ctx, domain.MaterialIron)
	game.Cancel(ctx)
	game.Continue(ctx)
	game.Cut(ctx)
	game.Hit(ctx)
	game.Stop(ctx)
	game.Dismiss(ctx)
	game.NextDay(ctx)
	require.Equal(t, before, game.Snapshot())
	fixture.requireFeedback(t)

	// The shop is only open before the day starts
	game.StartDay(ctx)
	fixture.recorder.Drain()
	before = game.Snapshot()
	game.BuyUpgrade(ctx, domain.UpgradeHammer)
	game.BuyMaterial(ctx, domain.MaterialSteel)
	game.StartDay(ctx)
	game.Dismiss(ctx)
	require.Equal(t, before, game.Snapshot())
	fixture.requireFeedback(t)
}

func TestGameShop(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	fixture := newGameFixture(t, &sequenceRand{ints: []int{0}})
	game := fixture.game

	game.BuyUpgrade(ctx, domain.UpgradeHammer)
	game.BuyMaterial(ctx, domain.MaterialSteel)
	fixture.requireFeedback(t, domain.FeedbackCash, domain.FeedbackCash)

	snapshot := game.Snapshot()
	require.Equal(t, 500-100-200, snapshot.State.Gold)
	require.Equal(t, 2, snapshot.State.UpgradeLevel(domain.UpgradeHammer))
	require.Equal(t, 5, snapshot.State.Stock(domain.MaterialSteel))

	// Not enough gold left for the town crier
	game.BuyUpgrade(ctx, domain.UpgradeMarketing)
	fixture.requireFeedback(t)
	require.Equal(t, 1, game.Snapshot().State.UpgradeLevel(domain.UpgradeMarketing))
}

func TestGameApply(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	fixture := newGameFixture(t, &sequenceRand{ints: []int{0}})
	game := fixture.game

	require.NoError(t, game.Apply(ctx, app.Action{Type: app.ActionStartDay}))
	require.NoError(t, game.Apply(ctx, app.Action{Type: app.ActionAcceptOrder}))
	require.NoError(t, game.Apply(ctx, app.Action{Type: app.ActionSelectMaterial, Material: domain.MaterialIron}))
	require.NoError(t, game.Apply(ctx, app.Action{Type: app.ActionTick, DT: 3 * time.Second}))
	fixture.requirePhase(t, domain.PhaseCutting)

	err := game.Apply(ctx, app.Action{Type: app.ActionType("dance")})
	require.ErrorIs(t, err, domain.ErrUnknownAction)

	err = game.Apply(ctx, app.Action{Type: app.ActionSelectMaterial, Material: domain.Material("WOOD")})
	require.ErrorIs(t, err, domain.ErrInvalidValue)

	err = game.Apply(ctx, app.Action{Type: app.ActionBuyUpgrade, Upgrade: domain.UpgradeID("bellows")})
	require.ErrorIs(t, err, domain.ErrInvalidValue)

	err = game.Apply(ctx, app.Action{Type: app.ActionTick, DT: -time.Second})
	require.ErrorIs(t, err, domain.ErrInvalidValue)

	// Malformed actions do not change the game
	fixture.requirePhase(t, domain.PhaseCutting)
}

func TestGameAdvanceChunking(t *testing.T) {
	t.Parallel()

	play := func(t *testing.T, chunk time.Duration) (app.Snapshot, []domain.Feedback) {
		t.Helper()
		ctx := t.Context()

		fixture := newGameFixture(t, &sequenceRand{ints: []int{0}})
		game := fixture.game
		game.StartDay(ctx)
		game.AcceptOrder(ctx)
		game.SelectMaterial(ctx, domain.MaterialIron)

		advance := func(total time.Duration) {
			for total > 0 {
				step := min(chunk, total)
				game.Advance(ctx, step)
				total -= step
			}
		}

		advance(3 * time.Second)
		for range 4 {
			game.Cut(ctx)
		}
		advance(minigame.CuttingSettleDelay)
		game.Continue(ctx)
		advance(3 * time.Second)
		for game.Snapshot().Phase == domain.PhaseCrafting {
			game.Hit(ctx)
			advance(minigame.ForgingHitCooldown)
		}
		game.Continue(ctx)
		advance(3 * time.Second)

		// Let the blade cool down completely
		advance(10 * time.Second)

		return game.Snapshot(), fixture.recorder.Drain()
	}

	wholeSnapshot, wholeFeedback := play(t, time.Hour)
	tickSnapshot, tickFeedback := play(t, minigame.TickDuration)
	oddSnapshot, oddFeedback := play(t, 37*time.Millisecond)

	require.Equal(t, domain.PhaseResult, wholeSnapshot.Phase)
	// Frozen solid, 27.5 degrees below the center of the zone [20, 35]
	require.InDelta(t, 17.0, wholeSnapshot.Scores.Quenching, 1e-9)

	for _, other := range []app.Snapshot{tickSnapshot, oddSnapshot} {
		require.Equal(t, wholeSnapshot.Phase, other.Phase)
		require.Equal(t, wholeSnapshot.Scores, other.Scores)
		require.Equal(t, wholeSnapshot.Outcome, other.Outcome)
		require.Equal(t, wholeSnapshot.State, other.State)
	}
	require.Equal(t, wholeFeedback, tickFeedback)
	require.Equal(t, wholeFeedback, oddFeedback)
}
