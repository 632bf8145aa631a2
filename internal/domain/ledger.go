package domain

import "time"

// CraftRecord is a delivered item as written to the ledger
type CraftRecord struct {
	SessionID      string
	Day            int
	CustomerName   string
	IsBoss         bool
	Item           Item
	Scores         Scores
	ReputationGain int
	MaterialCost   int
	CraftedAt      time.Time
}

// DayRecord is a closed day as written to the ledger
type DayRecord struct {
	SessionID        string
	Day              int
	CustomersServed  int
	GoldEarned       int
	ReputationEarned int
	ClosedAt         time.Time
}

type SessionHistory struct {
	Crafts []CraftRecord
	Days   []DayRecord
}
