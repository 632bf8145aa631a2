package ports

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Amund211/blacksmith/internal/app"
	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/minigame"
)

type upgradeResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Level       int     `json:"level"`
	MaxLevel    int     `json:"maxLevel"`
	Cost        int     `json:"cost"`
	Multiplier  float64 `json:"multiplier"`
}

type stateResponse struct {
	Gold       int               `json:"gold"`
	Reputation int               `json:"reputation"`
	Day        int               `json:"day"`
	Materials  map[string]int    `json:"materials"`
	Upgrades   []upgradeResponse `json:"upgrades"`
}

type customerResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Dialogue        string  `json:"dialogue"`
	RequestType     string  `json:"requestType"`
	IsBoss          bool    `json:"isBoss"`
	AvatarURL       string  `json:"avatarURL"`
	MinQuality      int     `json:"minQuality"`
	PatienceSeconds float64 `json:"patienceSeconds"`
}

type scoresResponse struct {
	Cutting   float64 `json:"cutting"`
	Forging   float64 `json:"forging"`
	Quenching float64 `json:"quenching"`
}

type summaryResponse struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
	Tier  string  `json:"tier"`
	Next  string  `json:"next"`
}

type itemResponse struct {
	Type     string `json:"type"`
	Material string `json:"material"`
	Quality  int    `json:"quality"`
	Value    int    `json:"value"`
}

type outcomeResponse struct {
	Item           itemResponse `json:"item"`
	ReputationGain int          `json:"reputationGain"`
}

type cuttingResponse struct {
	Cursor      float64 `json:"cursor"`
	TargetMin   float64 `json:"targetMin"`
	TargetMax   float64 `json:"targetMax"`
	CutsLeft    int     `json:"cutsLeft"`
	Completed   bool    `json:"completed"`
	RunningMean float64 `json:"runningMean"`
}

type forgingResponse struct {
	Cursor       float64 `json:"cursor"`
	Speed        float64 `json:"speed"`
	Progress     float64 `json:"progress"`
	PerfectMin   float64 `json:"perfectMin"`
	PerfectMax   float64 `json:"perfectMax"`
	GoodMin      float64 `json:"goodMin"`
	GoodMax      float64 `json:"goodMax"`
	CoolingDown  bool    `json:"coolingDown"`
	Completed    bool    `json:"completed"`
	LastGrade    *string `json:"lastGrade"`
	FinalQuality *int    `json:"finalQuality"`
}

type quenchingResponse struct {
	Temperature float64 `json:"temperature"`
	ZoneMin     float64 `json:"zoneMin"`
	ZoneMax     float64 `json:"zoneMax"`
	Stopped     bool    `json:"stopped"`
	Score       float64 `json:"score"`
}

type snapshotResponse struct {
	SessionID     string `json:"sessionID"`
	Phase         string `json:"phase"`
	ElapsedMillis int64  `json:"elapsedMillis"`

	State           stateResponse     `json:"state"`
	Customer        *customerResponse `json:"customer"`
	CustomersServed int               `json:"customersServed"`
	MaxCustomers    int               `json:"maxCustomers"`
	DailyGold       int               `json:"dailyGold"`
	DailyReputation int               `json:"dailyReputation"`

	SelectedMaterial *string          `json:"selectedMaterial"`
	MaterialCost     int              `json:"materialCost"`
	Scores           scoresResponse   `json:"scores"`
	Summary          *summaryResponse `json:"summary"`
	Outcome          *outcomeResponse `json:"outcome"`

	Countdown       *int               `json:"countdown"`
	CountdownTarget *string            `json:"countdownTarget"`
	Cutting         *cuttingResponse   `json:"cutting"`
	Forging         *forgingResponse   `json:"forging"`
	Quenching       *quenchingResponse `json:"quenching"`
}

func stateToResponse(state domain.GameState) stateResponse {
	materials := make(map[string]int, len(state.Materials))
	for _, material := range domain.Materials() {
		materials[string(material)] = state.Stock(material)
	}

	upgrades := make([]upgradeResponse, 0, len(state.Upgrades))
	for _, id := range domain.UpgradeIDs() {
		upgrade, ok := state.Upgrades[id]
		if !ok {
			continue
		}
		upgrades = append(upgrades, upgradeResponse{
			ID:          string(upgrade.ID),
			Name:        upgrade.Name,
			Description: upgrade.Description,
			Level:       upgrade.Level,
			MaxLevel:    upgrade.MaxLevel,
			Cost:        upgrade.Cost,
			Multiplier:  upgrade.Multiplier,
		})
	}

	return stateResponse{
		Gold:       state.Gold,
		Reputation: state.Reputation,
		Day:        state.Day,
		Materials:  materials,
		Upgrades:   upgrades,
	}
}

func customerToResponse(customer *domain.Customer) *customerResponse {
	if customer == nil {
		return nil
	}
	return &customerResponse{
		ID:              customer.ID,
		Name:            customer.Name,
		Dialogue:        customer.Dialogue,
		RequestType:     string(customer.RequestType),
		IsBoss:          customer.IsBoss,
		AvatarURL:       customer.AvatarURL,
		MinQuality:      customer.MinQuality,
		PatienceSeconds: customer.Patience.Seconds(),
	}
}

func itemToResponse(item domain.Item) itemResponse {
	return itemResponse{
		Type:     string(item.Type),
		Material: string(item.Material),
		Quality:  item.Quality,
		Value:    item.Value,
	}
}

func stringOrNil[T ~string](value T) *string {
	if value == "" {
		return nil
	}
	s := string(value)
	return &s
}

func forgingToResponse(view minigame.ForgingView) *forgingResponse {
	response := &forgingResponse{
		Cursor:      view.Cursor,
		Speed:       view.Speed,
		Progress:    view.Progress,
		PerfectMin:  view.PerfectMin,
		PerfectMax:  view.PerfectMax,
		GoodMin:     view.GoodMin,
		GoodMax:     view.GoodMax,
		CoolingDown: view.CoolingDown,
		Completed:   view.Completed,
		LastGrade:   stringOrNil(view.LastGrade),
	}
	if view.Completed {
		finalQuality := view.FinalQuality
		response.FinalQuality = &finalQuality
	}
	return response
}

func snapshotToResponse(snapshot app.Snapshot) snapshotResponse {
	response := snapshotResponse{
		SessionID:     snapshot.SessionID,
		Phase:         string(snapshot.Phase),
		ElapsedMillis: snapshot.Elapsed.Milliseconds(),

		State:           stateToResponse(snapshot.State),
		Customer:        customerToResponse(snapshot.Customer),
		CustomersServed: snapshot.CustomersServed,
		MaxCustomers:    snapshot.MaxCustomers,
		DailyGold:       snapshot.DailyGold,
		DailyReputation: snapshot.DailyReputation,

		SelectedMaterial: stringOrNil(snapshot.SelectedMaterial),
		MaterialCost:     snapshot.MaterialCost,
		Scores: scoresResponse{
			Cutting:   snapshot.Scores.Cutting,
			Forging:   snapshot.Scores.Forging,
			Quenching: snapshot.Scores.Quenching,
		},
	}

	if snapshot.Summary != nil {
		response.Summary = &summaryResponse{
			Title: snapshot.Summary.Title,
			Score: snapshot.Summary.Score,
			Tier:  string(snapshot.Summary.Tier),
			Next:  string(snapshot.Summary.Next),
		}
	}
	if snapshot.Outcome != nil {
		response.Outcome = &outcomeResponse{
			Item:           itemToResponse(snapshot.Outcome.Item),
			ReputationGain: snapshot.Outcome.ReputationGain,
		}
	}
	if snapshot.Phase == domain.PhaseCountdown {
		countdown := snapshot.Countdown
		response.Countdown = &countdown
		response.CountdownTarget = stringOrNil(snapshot.CountdownTarget)
	}
	if snapshot.Cutting != nil {
		response.Cutting = &cuttingResponse{
			Cursor:      snapshot.Cutting.Cursor,
			TargetMin:   snapshot.Cutting.TargetMin,
			TargetMax:   snapshot.Cutting.TargetMax,
			CutsLeft:    snapshot.Cutting.CutsLeft,
			Completed:   snapshot.Cutting.Completed,
			RunningMean: snapshot.Cutting.RunningMean,
		}
	}
	if snapshot.Forging != nil {
		response.Forging = forgingToResponse(*snapshot.Forging)
	}
	if snapshot.Quenching != nil {
		response.Quenching = &quenchingResponse{
			Temperature: snapshot.Quenching.Temperature,
			ZoneMin:     snapshot.Quenching.Zone.Min,
			ZoneMax:     snapshot.Quenching.Zone.Max,
			Stopped:     snapshot.Quenching.Stopped,
			Score:       snapshot.Quenching.Score,
		}
	}

	return response
}

func feedbackToResponse(feedback []domain.Feedback) []string {
	events := make([]string, 0, len(feedback))
	for _, event := range feedback {
		events = append(events, string(event))
	}
	return events
}

func craftToResponse(craft domain.CraftRecord) any {
	return struct {
		Day            int            `json:"day"`
		CustomerName   string         `json:"customerName"`
		IsBoss         bool           `json:"isBoss"`
		Item           itemResponse   `json:"item"`
		Scores         scoresResponse `json:"scores"`
		ReputationGain int            `json:"reputationGain"`
		MaterialCost   int            `json:"materialCost"`
		CraftedAt      string         `json:"craftedAt"`
	}{
		Day:          craft.Day,
		CustomerName: craft.CustomerName,
		IsBoss:       craft.IsBoss,
		Item:         itemToResponse(craft.Item),
		Scores: scoresResponse{
			Cutting:   craft.Scores.Cutting,
			Forging:   craft.Scores.Forging,
			Quenching: craft.Scores.Quenching,
		},
		ReputationGain: craft.ReputationGain,
		MaterialCost:   craft.MaterialCost,
		CraftedAt:      craft.CraftedAt.UTC().Format(time.RFC3339),
	}
}

func dayToResponse(day domain.DayRecord) any {
	return struct {
		Day              int    `json:"day"`
		CustomersServed  int    `json:"customersServed"`
		GoldEarned       int    `json:"goldEarned"`
		ReputationEarned int    `json:"reputationEarned"`
		ClosedAt         string `json:"closedAt"`
	}{
		Day:              day.Day,
		CustomersServed:  day.CustomersServed,
		GoldEarned:       day.GoldEarned,
		ReputationEarned: day.ReputationEarned,
		ClosedAt:         day.ClosedAt.UTC().Format(time.RFC3339),
	}
}

func CreatedGameToResponse(snapshot app.Snapshot) ([]byte, error) {
	marshalled, err := json.Marshal(struct {
		Success   bool             `json:"success"`
		SessionID string           `json:"sessionID"`
		Snapshot  snapshotResponse `json:"snapshot"`
	}{
		Success:   true,
		SessionID: snapshot.SessionID,
		Snapshot:  snapshotToResponse(snapshot),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal created game: %w", err)
	}
	return marshalled, nil
}

func SnapshotToResponse(snapshot app.Snapshot) ([]byte, error) {
	marshalled, err := json.Marshal(struct {
		Success  bool             `json:"success"`
		Snapshot snapshotResponse `json:"snapshot"`
	}{
		Success:  true,
		Snapshot: snapshotToResponse(snapshot),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return marshalled, nil
}

func ActionResultToResponse(snapshot app.Snapshot, feedback []domain.Feedback) ([]byte, error) {
	marshalled, err := json.Marshal(struct {
		Success  bool             `json:"success"`
		Snapshot snapshotResponse `json:"snapshot"`
		Feedback []string         `json:"feedback"`
	}{
		Success:  true,
		Snapshot: snapshotToResponse(snapshot),
		Feedback: feedbackToResponse(feedback),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action result: %w", err)
	}
	return marshalled, nil
}

func HistoryToResponse(sessionID string, history domain.SessionHistory) ([]byte, error) {
	crafts := make([]any, 0, len(history.Crafts))
	for _, craft := range history.Crafts {
		crafts = append(crafts, craftToResponse(craft))
	}
	days := make([]any, 0, len(history.Days))
	for _, day := range history.Days {
		days = append(days, dayToResponse(day))
	}

	marshalled, err := json.Marshal(struct {
		Success   bool   `json:"success"`
		SessionID string `json:"sessionID"`
		Crafts    []any  `json:"crafts"`
		Days      []any  `json:"days"`
	}{
		Success:   true,
		SessionID: sessionID,
		Crafts:    crafts,
		Days:      days,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	return marshalled, nil
}

type actionRequest struct {
	Type     string  `json:"type"`
	Material *string `json:"material"`
	Upgrade  *string `json:"upgrade"`
	DTMillis *int64  `json:"dtMillis"`
}

// maxTickMillis bounds how far a single tick action may advance a game
const maxTickMillis = 60_000

func ActionFromRequest(body []byte) (app.Action, error) {
	var request actionRequest
	err := json.Unmarshal(body, &request)
	if err != nil {
		return app.Action{}, fmt.Errorf("%w: failed to parse action: %w", domain.ErrInvalidValue, err)
	}

	actionType, err := app.ParseActionType(request.Type)
	if err != nil {
		return app.Action{}, err
	}

	action := app.Action{Type: actionType}

	switch actionType {
	case app.ActionSelectMaterial, app.ActionBuyMaterial:
		if request.Material == nil {
			return app.Action{}, fmt.Errorf("%w: %s requires a material", domain.ErrInvalidValue, actionType)
		}
		material, err := domain.ParseMaterial(*request.Material)
		if err != nil {
			return app.Action{}, err
		}
		action.Material = material
	case app.ActionBuyUpgrade:
		if request.Upgrade == nil {
			return app.Action{}, fmt.Errorf("%w: %s requires an upgrade", domain.ErrInvalidValue, actionType)
		}
		upgrade, err := domain.ParseUpgradeID(*request.Upgrade)
		if err != nil {
			return app.Action{}, err
		}
		action.Upgrade = upgrade
	case app.ActionTick:
		if request.DTMillis == nil {
			return app.Action{}, fmt.Errorf("%w: %s requires dtMillis", domain.ErrInvalidValue, actionType)
		}
		dtMillis := *request.DTMillis
		if dtMillis < 0 || dtMillis > maxTickMillis {
			return app.Action{}, fmt.Errorf("%w: dtMillis %d out of range", domain.ErrInvalidValue, dtMillis)
		}
		action.DT = time.Duration(dtMillis) * time.Millisecond
	}

	return action, nil
}

type createGameRequest struct {
	Clock string `json:"clock"`
}

// ClockModeFromRequest reads the optional clock mode of a create request, an empty body selects the default
func ClockModeFromRequest(body []byte) (app.ClockMode, error) {
	if len(body) == 0 {
		return app.ParseClockMode("")
	}

	var request createGameRequest
	err := json.Unmarshal(body, &request)
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse create request: %w", domain.ErrInvalidValue, err)
	}

	return app.ParseClockMode(request.Clock)
}
