package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Overdrawn is published when a withdrawal drives an account's balance below
// zero. EventID doubles as the correlation token on the wire and as the
// idempotency key for consumers that deduplicate redeliveries.
type Overdrawn struct {
	EventID        string          `json:"event_id"`
	AccountNumber  int64           `json:"account_number"`
	CustomerNumber int64           `json:"customer_number"`
	Balance        decimal.Decimal `json:"balance"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// OverdraftLimitUpdate carries a new overdraft limit back to the account
// that owns it. Applying the same update twice leaves the same limit.
type OverdraftLimitUpdate struct {
	AccountNumber     int64           `json:"account_number"`
	NewOverdraftLimit decimal.Decimal `json:"new_overdraft_limit"`
}
