package domain

import (
	"fmt"
	"maps"
)

type UpgradeID string

const (
	UpgradeHammer    UpgradeID = "hammer"
	UpgradeAnvil     UpgradeID = "anvil"
	UpgradeMarketing UpgradeID = "marketing"
)

type Upgrade struct {
	ID          UpgradeID
	Name        string
	Description string
	Level       int
	MaxLevel    int
	Cost        int
	Multiplier  float64
}

func (u Upgrade) IsMaxed() bool {
	return u.Level >= u.MaxLevel
}

func UpgradeIDs() []UpgradeID {
	return []UpgradeID{UpgradeHammer, UpgradeAnvil, UpgradeMarketing}
}

func ParseUpgradeID(raw string) (UpgradeID, error) {
	id := UpgradeID(raw)
	if _, ok := initialUpgrades[id]; !ok {
		return "", fmt.Errorf("%w: unknown upgrade '%s'", ErrInvalidValue, raw)
	}
	return id, nil
}

var initialUpgrades = map[UpgradeID]Upgrade{
	UpgradeHammer: {
		ID:          UpgradeHammer,
		Name:        "Tempered Hammer",
		Description: "Every strike on the anvil pushes the forging further.",
		Level:       1,
		MaxLevel:    10,
		Cost:        100,
		Multiplier:  1,
	},
	UpgradeAnvil: {
		ID:          UpgradeAnvil,
		Name:        "Master Anvil",
		Description: "Wider striking zones and better finished quality.",
		Level:       1,
		MaxLevel:    5,
		Cost:        250,
		Multiplier:  1,
	},
	UpgradeMarketing: {
		ID:          UpgradeMarketing,
		Name:        "Town Crier",
		Description: "Customers pay more for the same work.",
		Level:       1,
		MaxLevel:    5,
		Cost:        500,
		Multiplier:  1,
	},
}

func InitialUpgrades() map[UpgradeID]Upgrade {
	return maps.Clone(initialUpgrades)
}
