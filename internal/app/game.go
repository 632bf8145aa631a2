package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/logging"
	"github.com/Amund211/blacksmith/internal/minigame"
)

const cashFeedbackDelay = 500 * time.Millisecond

type FeedbackSink interface {
	Notify(ctx context.Context, event domain.Feedback)
}

// RequestCustomer produces the next customer, it never fails
type RequestCustomer func(ctx context.Context, reputation int, materials []domain.Material) domain.CustomerRequest

type GameHooks struct {
	OnItemCrafted func(ctx context.Context, record domain.CraftRecord)
	OnDayClosed   func(ctx context.Context, record domain.DayRecord)
}

type GameDeps struct {
	Rand            minigame.Rand
	Feedback        FeedbackSink
	RequestCustomer RequestCustomer
	NewID           func() string
	NowFunc         func() time.Time
	Hooks           GameHooks
}

type PhaseSummary struct {
	Title string
	Score float64
	Tier  minigame.Tier
	Next  domain.Phase
}

// Game is the phase state machine of one blacksmith session
//
// A Game is not safe for concurrent use. Player actions are no-ops when their
// preconditions are not met. Time only moves through Advance, delayed
// transitions are kept in an explicit virtual-time schedule.
type Game struct {
	sessionID string
	deps      GameDeps

	state domain.GameState
	phase domain.Phase

	customer        *domain.Customer
	customersServed int
	dailyGold       int
	dailyReputation int

	selectedMaterial domain.Material
	materialCost     int
	scores           domain.Scores
	summary          *PhaseSummary
	outcome          *domain.Outcome
	countdownTarget  domain.Phase

	countdown *minigame.Countdown
	cutting   *minigame.Cutting
	forging   *minigame.Forging
	quenching *minigame.Quenching

	now       time.Duration
	cycle     int
	scheduler scheduler
}

func NewGame(sessionID string, deps GameDeps) *Game {
	return &Game{
		sessionID: sessionID,
		deps:      deps,
		state:     domain.NewGameState(),
		phase:     domain.PhaseDayStart,
	}
}

func (g *Game) Phase() domain.Phase {
	return g.phase
}

func (g *Game) State() domain.GameState {
	return g.state.Clone()
}

// Apply dispatches a player action
//
// Only malformed actions return an error, actions that are not allowed in
// the current phase are ignored.
func (g *Game) Apply(ctx context.Context, action Action) error {
	switch action.Type {
	case ActionStartDay:
		g.StartDay(ctx)
	case ActionAcceptOrder:
		g.AcceptOrder(ctx)
	case ActionSelectMaterial:
		if !action.Material.Valid() {
			return fmt.Errorf("%w: material '%s'", domain.ErrInvalidValue, action.Material)
		}
		g.SelectMaterial(ctx, action.Material)
	case ActionCancel:
		g.Cancel(ctx)
	case ActionContinue:
		g.Continue(ctx)
	case ActionCut:
		g.Cut(ctx)
	case ActionHit:
		g.Hit(ctx)
	case ActionStop:
		g.Stop(ctx)
	case ActionDismiss:
		g.Dismiss(ctx)
	case ActionNextDay:
		g.NextDay(ctx)
	case ActionBuyUpgrade:
		if _, ok := g.state.Upgrades[action.Upgrade]; !ok {
			return fmt.Errorf("%w: upgrade '%s'", domain.ErrInvalidValue, action.Upgrade)
		}
		g.BuyUpgrade(ctx, action.Upgrade)
	case ActionBuyMaterial:
		if !action.Material.Valid() {
			return fmt.Errorf("%w: material '%s'", domain.ErrInvalidValue, action.Material)
		}
		g.BuyMaterial(ctx, action.Material)
	case ActionTick:
		if action.DT < 0 {
			return fmt.Errorf("%w: negative tick %s", domain.ErrInvalidValue, action.DT)
		}
		g.Advance(ctx, action.DT)
	default:
		return fmt.Errorf("%w: '%s'", domain.ErrUnknownAction, action.Type)
	}
	return nil
}

func (g *Game) StartDay(ctx context.Context) {
	if g.phase != domain.PhaseDayStart {
		return
	}

	g.notify(ctx, domain.FeedbackDayStart)
	g.customersServed = 0
	g.dailyGold = 0
	g.dailyReputation = 0
	g.phase = domain.PhaseIdle
	g.nextCustomer(ctx)
}

func (g *Game) AcceptOrder(ctx context.Context) {
	if g.phase != domain.PhaseIdle || g.customer == nil {
		return
	}

	g.selectedMaterial = ""
	g.materialCost = 0
	g.scores = domain.Scores{}
	g.summary = nil
	g.outcome = nil
	g.phase = domain.PhaseCraftingSetup
}

func (g *Game) SelectMaterial(ctx context.Context, material domain.Material) {
	if g.phase != domain.PhaseCraftingSetup {
		return
	}

	state, cost, ok := domain.SelectMaterial(g.state, material)
	if !ok {
		return
	}
	g.state = state
	g.selectedMaterial = material
	g.materialCost = cost

	g.enterCountdown(ctx, domain.PhaseCutting)
}

// Cancel backs out of material selection or forging, the customer stays
func (g *Game) Cancel(ctx context.Context) {
	if g.phase != domain.PhaseCraftingSetup && g.phase != domain.PhaseCrafting {
		return
	}

	// Invalidates transitions scheduled by the abandoned minigame
	g.cycle++

	g.cutting = nil
	g.forging = nil
	g.quenching = nil
	g.scores = domain.Scores{}
	g.summary = nil
	g.selectedMaterial = ""
	g.materialCost = 0
	g.phase = domain.PhaseIdle
}

func (g *Game) Continue(ctx context.Context) {
	if g.phase != domain.PhaseSummary || g.summary == nil {
		return
	}
	g.enterCountdown(ctx, g.summary.Next)
}

func (g *Game) Cut(ctx context.Context) {
	if g.phase != domain.PhaseCutting || g.cutting == nil {
		return
	}
	if _, ok := g.cutting.Cut(); !ok {
		return
	}
	g.notify(ctx, domain.FeedbackSaw)
	g.fireDue(ctx)
}

func (g *Game) Hit(ctx context.Context) {
	if g.phase != domain.PhaseCrafting || g.forging == nil {
		return
	}
	result, ok := g.forging.Hit()
	if !ok {
		return
	}

	switch result.Grade {
	case minigame.HitPerfect:
		g.notify(ctx, domain.FeedbackHitPerfect)
	case minigame.HitGood:
		g.notify(ctx, domain.FeedbackHitGood)
	default:
		g.notify(ctx, domain.FeedbackHitBad)
	}
	g.fireDue(ctx)
}

func (g *Game) Stop(ctx context.Context) {
	if g.phase != domain.PhaseQuenching || g.quenching == nil {
		return
	}
	if _, ok := g.quenching.Stop(); !ok {
		return
	}
	g.fireDue(ctx)
}

func (g *Game) Dismiss(ctx context.Context) {
	if g.phase != domain.PhaseResult {
		return
	}

	g.customersServed++
	g.outcome = nil

	if g.customersServed >= domain.MaxCustomersPerDay(g.state.Reputation) {
		g.customer = nil
		g.phase = domain.PhaseDaySummary
		g.notify(ctx, domain.FeedbackSuccess)
		g.closeDay(ctx)
		return
	}

	g.phase = domain.PhaseIdle
	g.nextCustomer(ctx)
}

func (g *Game) NextDay(ctx context.Context) {
	if g.phase != domain.PhaseDaySummary {
		return
	}
	g.state.Day++
	g.phase = domain.PhaseDayStart
}

func (g *Game) BuyUpgrade(ctx context.Context, id domain.UpgradeID) {
	if g.phase != domain.PhaseDayStart {
		return
	}
	state, ok := domain.BuyUpgrade(g.state, id)
	if !ok {
		return
	}
	g.state = state
	g.notify(ctx, domain.FeedbackCash)
}

func (g *Game) BuyMaterial(ctx context.Context, material domain.Material) {
	if g.phase != domain.PhaseDayStart {
		return
	}
	state, ok := domain.BuyMaterialPack(g.state, material)
	if !ok {
		return
	}
	g.state = state
	g.notify(ctx, domain.FeedbackCash)
}

// Advance moves virtual time forward by dt
//
// Time is split at every scheduled event and at every point where the active
// loop completes by itself, so the outcome does not depend on how dt is
// chunked.
func (g *Game) Advance(ctx context.Context, dt time.Duration) {
	if dt < 0 {
		return
	}
	end := g.now + dt

	g.fireDue(ctx)
	for g.now < end {
		segmentEnd := end
		if at, ok := g.scheduler.next(); ok && at < segmentEnd {
			segmentEnd = at
		}
		if until, ok := g.activeLoopDeadline(); ok && g.now+until < segmentEnd {
			segmentEnd = g.now + until
		}

		step := segmentEnd - g.now
		g.now = segmentEnd
		g.stepActiveLoop(step)
		g.fireDue(ctx)
	}
}

func (g *Game) activeLoopDeadline() (time.Duration, bool) {
	switch {
	case g.phase == domain.PhaseCountdown && g.countdown != nil:
		return g.countdown.Remaining()
	case g.phase == domain.PhaseQuenching && g.quenching != nil:
		return g.quenching.UntilFrozen()
	}
	return 0, false
}

// stepActiveLoop advances the single per-frame loop of the current phase
func (g *Game) stepActiveLoop(dt time.Duration) {
	switch g.phase {
	case domain.PhaseCountdown:
		if g.countdown != nil {
			g.countdown.Advance(dt)
		}
	case domain.PhaseCutting:
		if g.cutting != nil {
			g.cutting.Advance(dt)
		}
	case domain.PhaseCrafting:
		if g.forging != nil {
			g.forging.Advance(dt)
		}
	case domain.PhaseQuenching:
		if g.quenching != nil {
			g.quenching.Advance(dt)
		}
	}
}

func (g *Game) fireDue(ctx context.Context) {
	for {
		event, ok := g.scheduler.popDue(g.now)
		if !ok {
			return
		}
		event.fire(ctx)
	}
}

// after schedules fire for the current crafting cycle, it is dropped if the cycle is cancelled
func (g *Game) after(delay time.Duration, fire func(ctx context.Context)) {
	cycle := g.cycle
	g.scheduler.schedule(g.now+delay, func(ctx context.Context) {
		if cycle != g.cycle {
			return
		}
		fire(ctx)
	})
}

func (g *Game) enterCountdown(ctx context.Context, target domain.Phase) {
	g.phase = domain.PhaseCountdown
	g.countdownTarget = target
	g.countdown = minigame.NewCountdown(
		func(int) {
			g.after(0, func(ctx context.Context) {
				g.notify(ctx, domain.FeedbackClick)
			})
		},
		func() {
			g.after(0, func(ctx context.Context) {
				g.enterMinigame(ctx, target)
			})
		},
	)
	g.notify(ctx, domain.FeedbackClick)
}

func (g *Game) enterMinigame(ctx context.Context, target domain.Phase) {
	g.countdown = nil

	switch target {
	case domain.PhaseCutting:
		g.cutting = minigame.NewCutting(g.deps.Rand, g.onCuttingComplete)
	case domain.PhaseCrafting:
		g.forging = minigame.NewForging(
			g.state.UpgradeLevel(domain.UpgradeHammer),
			g.state.UpgradeLevel(domain.UpgradeAnvil),
			g.deps.Rand,
			g.onForgingComplete,
		)
	case domain.PhaseQuenching:
		g.quenching = minigame.NewQuenching(g.deps.Rand, g.onQuenchingComplete)
	default:
		logging.FromContext(ctx).ErrorContext(ctx, "Countdown finished with unknown target", "target", string(target))
		g.phase = domain.PhaseIdle
		return
	}
	g.phase = target
}

func (g *Game) onCuttingComplete(score float64) {
	g.scores.Cutting = score
	g.after(minigame.CuttingSettleDelay, func(ctx context.Context) {
		g.cutting = nil
		g.showSummary("Cutting", score, domain.PhaseCrafting)
	})
}

func (g *Game) onForgingComplete(quality float64) {
	g.scores.Forging = quality
	g.after(0, func(ctx context.Context) {
		g.notify(ctx, domain.FeedbackSuccess)
	})
	g.after(minigame.ForgingSettleDelay, func(ctx context.Context) {
		g.forging = nil
		g.showSummary("Forging", quality, domain.PhaseQuenching)
	})
}

func (g *Game) onQuenchingComplete(score float64) {
	g.scores.Quenching = score
	g.after(0, func(ctx context.Context) {
		g.notify(ctx, domain.FeedbackSizzle)
	})
	g.after(minigame.QuenchingSettleDelay, func(ctx context.Context) {
		g.quenching = nil
		g.finishCrafting(ctx)
	})
}

func (g *Game) showSummary(title string, score float64, next domain.Phase) {
	g.summary = &PhaseSummary{
		Title: title,
		Score: score,
		Tier:  minigame.TierFor(score),
		Next:  next,
	}
	g.phase = domain.PhaseSummary
}

func (g *Game) finishCrafting(ctx context.Context) {
	if g.customer == nil {
		logging.FromContext(ctx).ErrorContext(ctx, "Finished crafting without a customer")
		g.phase = domain.PhaseIdle
		return
	}

	outcome := domain.ComputeOutcome(domain.OutcomeInput{
		Type:                g.customer.RequestType,
		Material:            g.selectedMaterial,
		Scores:              g.scores,
		MarketingMultiplier: g.state.UpgradeMultiplier(domain.UpgradeMarketing),
		IsBoss:              g.customer.IsBoss,
	})

	g.state = domain.AwardItem(g.state, outcome)
	g.dailyGold += outcome.Item.Value
	g.dailyReputation += outcome.ReputationGain
	g.outcome = &outcome
	g.summary = nil
	g.phase = domain.PhaseResult

	// Not tied to the crafting cycle, the payout has already happened
	g.scheduler.schedule(g.now+cashFeedbackDelay, func(ctx context.Context) {
		g.notify(ctx, domain.FeedbackCash)
	})

	recordItemCrafted(ctx, outcome, g.customer.IsBoss)

	if g.deps.Hooks.OnItemCrafted != nil {
		g.deps.Hooks.OnItemCrafted(ctx, domain.CraftRecord{
			SessionID:      g.sessionID,
			Day:            g.state.Day,
			CustomerName:   g.customer.Name,
			IsBoss:         g.customer.IsBoss,
			Item:           outcome.Item,
			Scores:         g.scores,
			ReputationGain: outcome.ReputationGain,
			MaterialCost:   g.materialCost,
			CraftedAt:      g.deps.NowFunc(),
		})
	}
}

func (g *Game) closeDay(ctx context.Context) {
	recordDayClosed(ctx, g.customersServed)

	if g.deps.Hooks.OnDayClosed == nil {
		return
	}
	g.deps.Hooks.OnDayClosed(ctx, domain.DayRecord{
		SessionID:        g.sessionID,
		Day:              g.state.Day,
		CustomersServed:  g.customersServed,
		GoldEarned:       g.dailyGold,
		ReputationEarned: g.dailyReputation,
		ClosedAt:         g.deps.NowFunc(),
	})
}

func (g *Game) nextCustomer(ctx context.Context) {
	// Customers may ask for materials the shop has run out of
	request := g.deps.RequestCustomer(ctx, g.state.Reputation, domain.Materials())
	customer := domain.NewCustomer(g.deps.NewID(), request, g.state.Reputation)
	g.customer = &customer
	g.notify(ctx, domain.FeedbackCustomerEnter)
}

func (g *Game) notify(ctx context.Context, event domain.Feedback) {
	if g.deps.Feedback == nil {
		return
	}
	g.deps.Feedback.Notify(ctx, event)
}
