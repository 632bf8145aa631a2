package app

import (
	"fmt"
	"time"

	"github.com/Amund211/blacksmith/internal/domain"
)

type ActionType string

const (
	ActionStartDay       ActionType = "start_day"
	ActionAcceptOrder    ActionType = "accept_order"
	ActionSelectMaterial ActionType = "select_material"
	ActionCancel         ActionType = "cancel"
	ActionContinue       ActionType = "continue"
	ActionCut            ActionType = "cut"
	ActionHit            ActionType = "hit"
	ActionStop           ActionType = "stop"
	ActionDismiss        ActionType = "dismiss"
	ActionNextDay        ActionType = "next_day"
	ActionBuyUpgrade     ActionType = "buy_upgrade"
	ActionBuyMaterial    ActionType = "buy_material"
	ActionTick           ActionType = "tick"
)

var actionTypes = map[ActionType]struct{}{
	ActionStartDay:       {},
	ActionAcceptOrder:    {},
	ActionSelectMaterial: {},
	ActionCancel:         {},
	ActionContinue:       {},
	ActionCut:            {},
	ActionHit:            {},
	ActionStop:           {},
	ActionDismiss:        {},
	ActionNextDay:        {},
	ActionBuyUpgrade:     {},
	ActionBuyMaterial:    {},
	ActionTick:           {},
}

func ParseActionType(raw string) (ActionType, error) {
	actionType := ActionType(raw)
	if _, ok := actionTypes[actionType]; !ok {
		return "", fmt.Errorf("%w: '%s'", domain.ErrUnknownAction, raw)
	}
	return actionType, nil
}

// Action is a discrete player input
//
// Material is used by select_material and buy_material, Upgrade by
// buy_upgrade and DT by tick.
type Action struct {
	Type     ActionType
	Material domain.Material
	Upgrade  domain.UpgradeID
	DT       time.Duration
}
