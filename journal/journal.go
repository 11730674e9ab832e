package journal

import "time"

// Action is the kind of trade recorded in the journal.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Transaction is the immutable record of one committed trade. Records are
// appended exactly once and never edited.
type Transaction struct {
	ID           string
	UserID       int64
	Action       Action
	FromCurrency string
	ToCurrency   string
	Amount       float64
	Rate         float64
	Total        float64 // cost for BUY, revenue for SELL, in FromCurrency/ToCurrency terms
	Timestamp    time.Time
}

// RateEntry is one append-only history record produced by a rate sync.
type RateEntry struct {
	ID           string
	FromCurrency string
	ToCurrency   string
	Rate         float64
	Timestamp    time.Time
	Source       string
	SyncSources  []string // all sources attempted in the sync that produced this entry
}

// Journal is the append-only trail of trades and rate updates.
type Journal interface {
	RecordTransaction(Transaction) error
	RecordRate(RateEntry) error

	// Transactions returns the most recent trades for a user, newest first.
	// userID 0 means all users; limit 0 means no limit.
	Transactions(userID int64, limit int) ([]Transaction, error)

	// Rates returns the most recent history entries for a pair, newest
	// first. Empty codes mean all pairs; limit 0 means no limit.
	Rates(from, to string, limit int) ([]RateEntry, error)

	Close() error
}
