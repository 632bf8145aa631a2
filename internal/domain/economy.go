package domain

import "math"

const (
	baseCustomersPerDay   = 3
	maxCustomersPerDay    = 10
	reputationPerCustomer = 50

	upgradeCostGrowth       = 1.5
	upgradeMultiplierGrowth = 0.5
)

// SelectMaterial takes one unit of the material for a crafting cycle
//
// A unit in stock is consumed for free. Without stock the unit is bought on
// the black market for twice the unit cost, leaving the stock untouched.
// Returns the new state, the gold paid and whether the material could be
// acquired. When it could not, the returned state equals the input.
func SelectMaterial(state GameState, material Material) (GameState, int, bool) {
	if !material.Valid() {
		return state, 0, false
	}

	if state.Stock(material) >= 1 {
		next := state.Clone()
		next.Materials[material] = max(0, next.Materials[material]-1)
		return next, 0, true
	}

	price := material.BlackMarketPrice()
	if state.Gold < price {
		return state, 0, false
	}

	next := state.Clone()
	next.Gold -= price
	return next, price, true
}

// BuyUpgrade raises the level of an upgrade by one if it is affordable and not maxed
func BuyUpgrade(state GameState, id UpgradeID) (GameState, bool) {
	upgrade, ok := state.Upgrades[id]
	if !ok {
		return state, false
	}
	if state.Gold < upgrade.Cost || upgrade.IsMaxed() {
		return state, false
	}

	next := state.Clone()
	next.Gold -= upgrade.Cost
	upgrade.Level++
	upgrade.Cost = int(math.Floor(float64(upgrade.Cost) * upgradeCostGrowth))
	upgrade.Multiplier += upgradeMultiplierGrowth
	next.Upgrades[id] = upgrade
	return next, true
}

// BuyMaterialPack adds MaterialPackAmount units of the material to stock if it is affordable
func BuyMaterialPack(state GameState, material Material) (GameState, bool) {
	if !material.Valid() {
		return state, false
	}
	if state.Gold < material.PackCost() {
		return state, false
	}

	next := state.Clone()
	next.Gold -= material.PackCost()
	next.Materials[material] += MaterialPackAmount
	return next, true
}

// AwardItem pays out a delivered item
func AwardItem(state GameState, outcome Outcome) GameState {
	next := state.Clone()
	next.Gold += outcome.Item.Value
	next.Reputation += outcome.ReputationGain
	return next
}

func MaxCustomersPerDay(reputation int) int {
	// Floor division, reputation never goes negative
	return min(maxCustomersPerDay, baseCustomersPerDay+reputation/reputationPerCustomer)
}
