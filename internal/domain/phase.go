package domain

type Phase string

const (
	PhaseDayStart      Phase = "DAY_START"
	PhaseIdle          Phase = "IDLE"
	PhaseCraftingSetup Phase = "CRAFTING_SETUP"
	PhaseCountdown     Phase = "COUNTDOWN"
	PhaseCutting       Phase = "CUTTING"
	PhaseSummary       Phase = "PHASE_SUMMARY"
	PhaseCrafting      Phase = "CRAFTING"
	PhaseQuenching     Phase = "QUENCHING"
	PhaseResult        Phase = "RESULT"
	PhaseDaySummary    Phase = "DAY_SUMMARY"
)
