package domain

import "maps"

const (
	InitialGold       = 500
	InitialReputation = 0
	InitialDay        = 1
	InitialIronStock  = 5
)

// GameState is the persistent part of a running game
//
// Values are passed around by value. The maps are never mutated in place by
// the transactions in this package; every transaction returns a new state.
type GameState struct {
	Gold       int
	Reputation int
	Day        int
	Materials  map[Material]int
	Upgrades   map[UpgradeID]Upgrade
}

func NewGameState() GameState {
	materials := make(map[Material]int, len(materialTable))
	for _, material := range Materials() {
		materials[material] = 0
	}
	materials[MaterialIron] = InitialIronStock

	return GameState{
		Gold:       InitialGold,
		Reputation: InitialReputation,
		Day:        InitialDay,
		Materials:  materials,
		Upgrades:   InitialUpgrades(),
	}
}

func (s GameState) Clone() GameState {
	return GameState{
		Gold:       s.Gold,
		Reputation: s.Reputation,
		Day:        s.Day,
		Materials:  maps.Clone(s.Materials),
		Upgrades:   maps.Clone(s.Upgrades),
	}
}

func (s GameState) Stock(material Material) int {
	return s.Materials[material]
}

// UpgradeLevel returns the level of the upgrade, or 1 if it is unknown
func (s GameState) UpgradeLevel(id UpgradeID) int {
	upgrade, ok := s.Upgrades[id]
	if !ok {
		return 1
	}
	return upgrade.Level
}

// UpgradeMultiplier returns the multiplier of the upgrade, or 1 if it is unknown
func (s GameState) UpgradeMultiplier(id UpgradeID) float64 {
	upgrade, ok := s.Upgrades[id]
	if !ok {
		return 1
	}
	return upgrade.Multiplier
}
