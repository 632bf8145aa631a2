package domain

import "fmt"

type Material string

const (
	MaterialIron       Material = "IRON"
	MaterialSteel      Material = "STEEL"
	MaterialMythril    Material = "MYTHRIL"
	MaterialAdamantite Material = "ADAMANTITE"
)

// MaterialPackAmount is the number of units added to stock by one pack purchase
const MaterialPackAmount = 5

type materialInfo struct {
	qualityMultiplier float64
	unitCost          int
	packCost          int
}

var materialTable = map[Material]materialInfo{
	MaterialIron:       {qualityMultiplier: 1, unitCost: 10, packCost: 40},
	MaterialSteel:      {qualityMultiplier: 2, unitCost: 50, packCost: 200},
	MaterialMythril:    {qualityMultiplier: 5, unitCost: 200, packCost: 800},
	MaterialAdamantite: {qualityMultiplier: 10, unitCost: 1000, packCost: 4000},
}

// Materials lists every material from cheapest to most expensive
func Materials() []Material {
	return []Material{MaterialIron, MaterialSteel, MaterialMythril, MaterialAdamantite}
}

func ParseMaterial(raw string) (Material, error) {
	material := Material(raw)
	if !material.Valid() {
		return "", fmt.Errorf("%w: unknown material '%s'", ErrInvalidValue, raw)
	}
	return material, nil
}

func (m Material) Valid() bool {
	_, ok := materialTable[m]
	return ok
}

func (m Material) QualityMultiplier() float64 {
	return materialTable[m].qualityMultiplier
}

func (m Material) UnitCost() int {
	return materialTable[m].unitCost
}

func (m Material) PackCost() int {
	return materialTable[m].packCost
}

// BlackMarketPrice is paid from gold when a material is selected without stock
func (m Material) BlackMarketPrice() int {
	return 2 * m.UnitCost()
}
