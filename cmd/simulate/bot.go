package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/Amund211/blacksmith/internal/app"
	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/minigame"
)

// ironReserve is the iron stock the bot keeps before opening the shop
const ironReserve = 3

// bot plays a game through the same actions a player would send
//
// Skill is the chance that the bot waits for the ideal moment before acting,
// otherwise it acts on the current tick.
type bot struct {
	game  *app.Game
	skill float64
	rng   *rand.Rand

	advance func(dt time.Duration)
}

var errStuck = errors.New("out of materials and gold")

func (b *bot) precise() bool {
	return b.rng.Float64() < b.skill
}

func (b *bot) apply(ctx context.Context, action app.Action) error {
	err := b.game.Apply(ctx, action)
	if err != nil {
		return fmt.Errorf("failed to apply %s: %w", action.Type, err)
	}
	return nil
}

// shop spends spare gold at the start of a day
func (b *bot) shop(ctx context.Context, snapshot app.Snapshot) error {
	state := snapshot.State
	if state.Stock(domain.MaterialIron) < ironReserve && state.Gold >= domain.MaterialIron.PackCost() {
		return b.apply(ctx, app.Action{Type: app.ActionBuyMaterial, Material: domain.MaterialIron})
	}

	for _, id := range []domain.UpgradeID{domain.UpgradeHammer, domain.UpgradeAnvil, domain.UpgradeMarketing} {
		upgrade := state.Upgrades[id]
		// Keep enough gold to buy steel on the black market
		if !upgrade.IsMaxed() && state.Gold-upgrade.Cost >= domain.MaterialSteel.BlackMarketPrice() {
			return b.apply(ctx, app.Action{Type: app.ActionBuyUpgrade, Upgrade: id})
		}
	}

	return b.apply(ctx, app.Action{Type: app.ActionStartDay})
}

// bestMaterial picks the most valuable material in stock, falling back to the black market
func bestMaterial(state domain.GameState) domain.Material {
	materials := domain.Materials()
	slices.Reverse(materials)
	for _, material := range materials {
		if state.Stock(material) > 0 {
			return material
		}
	}
	return domain.MaterialIron
}

func (b *bot) cut(ctx context.Context, view *minigame.CuttingView) error {
	center := view.TargetMin + (view.TargetMax-view.TargetMin)/2
	if view.CutsLeft > 0 && (math.Abs(view.Cursor-center) <= 1.01 || !b.precise()) {
		return b.apply(ctx, app.Action{Type: app.ActionCut})
	}
	b.advance(minigame.TickDuration)
	return nil
}

func (b *bot) hit(ctx context.Context, view *minigame.ForgingView) error {
	inZone := view.Cursor >= view.PerfectMin && view.Cursor <= view.PerfectMax
	if !view.CoolingDown && !view.Completed && (inZone || !b.precise()) {
		return b.apply(ctx, app.Action{Type: app.ActionHit})
	}
	b.advance(minigame.TickDuration)
	return nil
}

func (b *bot) stop(ctx context.Context, view *minigame.QuenchingView) error {
	if !view.Stopped && (view.Temperature <= view.Zone.Center() || !b.precise()) {
		return b.apply(ctx, app.Action{Type: app.ActionStop})
	}
	b.advance(minigame.TickDuration)
	return nil
}

// step performs one action or advances time by one tick
func (b *bot) step(ctx context.Context) error {
	snapshot := b.game.Snapshot()

	switch snapshot.Phase {
	case domain.PhaseDayStart:
		return b.shop(ctx, snapshot)
	case domain.PhaseIdle:
		if snapshot.Customer == nil {
			b.advance(minigame.TickDuration)
			return nil
		}
		return b.apply(ctx, app.Action{Type: app.ActionAcceptOrder})
	case domain.PhaseCraftingSetup:
		err := b.apply(ctx, app.Action{Type: app.ActionSelectMaterial, Material: bestMaterial(snapshot.State)})
		if err != nil {
			return err
		}
		if b.game.Phase() == domain.PhaseCraftingSetup {
			// Out of stock and too poor for the black market
			if err := b.apply(ctx, app.Action{Type: app.ActionCancel}); err != nil {
				return err
			}
			return errStuck
		}
		return nil
	case domain.PhaseCutting:
		if snapshot.Cutting == nil {
			b.advance(minigame.TickDuration)
			return nil
		}
		return b.cut(ctx, snapshot.Cutting)
	case domain.PhaseCrafting:
		if snapshot.Forging == nil {
			b.advance(minigame.TickDuration)
			return nil
		}
		return b.hit(ctx, snapshot.Forging)
	case domain.PhaseQuenching:
		if snapshot.Quenching == nil {
			b.advance(minigame.TickDuration)
			return nil
		}
		return b.stop(ctx, snapshot.Quenching)
	case domain.PhaseSummary:
		return b.apply(ctx, app.Action{Type: app.ActionContinue})
	case domain.PhaseResult:
		return b.apply(ctx, app.Action{Type: app.ActionDismiss})
	case domain.PhaseDaySummary:
		return b.apply(ctx, app.Action{Type: app.ActionNextDay})
	default:
		b.advance(minigame.TickDuration)
		return nil
	}
}

// playDays runs the bot until the given number of days has been closed
func (b *bot) playDays(ctx context.Context, days int, maxSteps int) error {
	for range maxSteps {
		if b.game.State().Day > days {
			return nil
		}
		err := b.step(ctx)
		if err != nil {
			return err
		}
	}
	return fmt.Errorf("gave up after %d steps on day %d", maxSteps, b.game.State().Day)
}
