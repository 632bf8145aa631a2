package domaintest

import (
	"github.com/Amund211/blacksmith/internal/domain"
)

type gameStateBuilder struct {
	state domain.GameState
}

func (b *gameStateBuilder) WithGold(gold int) *gameStateBuilder {
	b.state.Gold = gold
	return b
}

func (b *gameStateBuilder) WithReputation(reputation int) *gameStateBuilder {
	b.state.Reputation = reputation
	return b
}

func (b *gameStateBuilder) WithDay(day int) *gameStateBuilder {
	b.state.Day = day
	return b
}

func (b *gameStateBuilder) WithStock(material domain.Material, stock int) *gameStateBuilder {
	b.state.Materials[material] = stock
	return b
}

func (b *gameStateBuilder) WithUpgradeLevel(id domain.UpgradeID, level int) *gameStateBuilder {
	upgrade := b.state.Upgrades[id]
	upgrade.Level = level
	upgrade.Multiplier = 1 + 0.5*float64(level-1)
	b.state.Upgrades[id] = upgrade
	return b
}

func (b *gameStateBuilder) Build() domain.GameState {
	// Copy, so further mutations to the builder don't affect the returned state
	return b.state.Clone()
}

func NewGameStateBuilder() *gameStateBuilder {
	return &gameStateBuilder{
		state: domain.NewGameState(),
	}
}
