package customerprovider

import (
	"fmt"
	"sync"

	"github.com/Amund211/blacksmith/internal/domain"
)

const (
	avatarURLFormat     = "https://api.dicebear.com/9.x/pixel-art/svg?seed=%s-%d"
	avatarSuffixRange   = 1000
	bossChanceThreshold = 0.9
	bossMinReputation   = 200
)

type Rand interface {
	IntN(n int) int
	Float64() float64
}

var staticNames = []string{
	"Aldric",
	"Brunhild",
	"Cedric the Bold",
	"Dagny",
	"Edric Ironfoot",
	"Freya",
	"Gareth",
	"Hilda Stonebrow",
	"Ivor",
	"Jorunn",
	"Kael",
	"Lisbet",
}

var staticDialogues = []string{
	"I need something sharp before the tournament.",
	"My last one broke on a troll. Make this one sturdier.",
	"The caravan leaves at dawn, can you be quick about it?",
	"My father bought his steel here. Don't disappoint me.",
	"I hear you are the best smith in the valley.",
	"Something simple will do, I only have to scare off wolves.",
	"The king's tax collector took my old one. Long story.",
	"Make it shine, I am getting married next week.",
}

type archetype string

const (
	archetypeWarrior  archetype = "warrior"
	archetypeRogue    archetype = "rogue"
	archetypeTank     archetype = "tank"
	archetypeVillager archetype = "villager"
	archetypeBoss     archetype = "boss"
)

var avatarSeeds = map[archetype][]string{
	archetypeWarrior:  {"warrior1", "knight2", "paladin3", "barbarian4", "soldier5"},
	archetypeRogue:    {"thief1", "assassin2", "scout3", "bandit4", "ninja5"},
	archetypeTank:     {"guard1", "defender2", "ironclad3", "wall4", "hero5"},
	archetypeVillager: {"peasant1", "smith2", "farmer3", "trader4", "citizen5"},
	archetypeBoss:     {"demon1", "dragonborn2", "king3", "darklord4", "giant5"},
}

func archetypeFor(itemType domain.ItemType, isBoss bool) archetype {
	if isBoss {
		return archetypeBoss
	}
	switch itemType {
	case domain.ItemSword, domain.ItemAxe:
		return archetypeWarrior
	case domain.ItemDagger:
		return archetypeRogue
	case domain.ItemShield, domain.ItemHelmet:
		return archetypeTank
	}
	return archetypeVillager
}

// static draws customers from a fixed pool
type static struct {
	mu  sync.Mutex
	rng Rand
}

// NewStatic creates the local customer generator, rng is guarded by the provider
func NewStatic(rng Rand) *static {
	return &static{rng: rng}
}

func (s *static) GenerateCustomer(reputation int) domain.CustomerRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	isBoss := s.rng.Float64() > bossChanceThreshold && reputation > bossMinReputation
	itemTypes := domain.ItemTypes()
	itemType := itemTypes[s.rng.IntN(len(itemTypes))]

	return domain.CustomerRequest{
		Name:      staticNames[s.rng.IntN(len(staticNames))],
		Dialogue:  staticDialogues[s.rng.IntN(len(staticDialogues))],
		Type:      itemType,
		IsBoss:    isBoss,
		AvatarURL: s.avatarURL(itemType, isBoss),
	}
}

func (s *static) avatarURL(itemType domain.ItemType, isBoss bool) string {
	seeds := avatarSeeds[archetypeFor(itemType, isBoss)]
	seed := seeds[s.rng.IntN(len(seeds))]
	return fmt.Sprintf(avatarURLFormat, seed, s.rng.IntN(avatarSuffixRange))
}
