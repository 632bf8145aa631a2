package app

import (
	"time"

	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/minigame"
)

// Snapshot is a read-only copy of everything the presentation layer renders
type Snapshot struct {
	SessionID string
	Phase     domain.Phase
	State     domain.GameState
	Elapsed   time.Duration

	Customer        *domain.Customer
	CustomersServed int
	MaxCustomers    int
	DailyGold       int
	DailyReputation int

	SelectedMaterial domain.Material
	MaterialCost     int
	Scores           domain.Scores
	Summary          *PhaseSummary
	Outcome          *domain.Outcome

	Countdown       int
	CountdownTarget domain.Phase
	Cutting         *minigame.CuttingView
	Forging         *minigame.ForgingView
	Quenching       *minigame.QuenchingView
}

func (g *Game) Snapshot() Snapshot {
	snapshot := Snapshot{
		SessionID: g.sessionID,
		Phase:     g.phase,
		State:     g.state.Clone(),
		Elapsed:   g.now,

		CustomersServed: g.customersServed,
		MaxCustomers:    domain.MaxCustomersPerDay(g.state.Reputation),
		DailyGold:       g.dailyGold,
		DailyReputation: g.dailyReputation,

		SelectedMaterial: g.selectedMaterial,
		MaterialCost:     g.materialCost,
		Scores:           g.scores,
	}

	if g.customer != nil {
		customer := *g.customer
		snapshot.Customer = &customer
	}
	if g.summary != nil {
		summary := *g.summary
		snapshot.Summary = &summary
	}
	if g.outcome != nil {
		outcome := *g.outcome
		snapshot.Outcome = &outcome
	}
	if g.countdown != nil {
		snapshot.Countdown = g.countdown.Count()
		snapshot.CountdownTarget = g.countdownTarget
	}
	if g.cutting != nil {
		view := g.cutting.View()
		snapshot.Cutting = &view
	}
	if g.forging != nil {
		view := g.forging.View()
		snapshot.Forging = &view
	}
	if g.quenching != nil {
		view := g.quenching.View()
		snapshot.Quenching = &view
	}

	return snapshot
}
