package domain

import "fmt"

type ItemType string

const (
	ItemSword  ItemType = "SWORD"
	ItemShield ItemType = "SHIELD"
	ItemDagger ItemType = "DAGGER"
	ItemAxe    ItemType = "AXE"
	ItemHelmet ItemType = "HELMET"
)

var itemBaseValues = map[ItemType]int{
	ItemSword:  20,
	ItemShield: 25,
	ItemDagger: 10,
	ItemAxe:    30,
	ItemHelmet: 35,
}

func ItemTypes() []ItemType {
	return []ItemType{ItemSword, ItemShield, ItemDagger, ItemAxe, ItemHelmet}
}

func ParseItemType(raw string) (ItemType, error) {
	itemType := ItemType(raw)
	if !itemType.Valid() {
		return "", fmt.Errorf("%w: unknown item type '%s'", ErrInvalidValue, raw)
	}
	return itemType, nil
}

func (t ItemType) Valid() bool {
	_, ok := itemBaseValues[t]
	return ok
}

func (t ItemType) BaseValue() int {
	return itemBaseValues[t]
}

// Item is a crafted and delivered piece of equipment
type Item struct {
	Type     ItemType
	Material Material
	Quality  int // 0-100
	Value    int // gold
}
