/**
 * @description
 * Domain model for the overdraft service: the incoming Overdrawn event, the
 * per-customer and per-account aggregates, the aggregated summary forwarded
 * on customer-overdrafts, and the AccountFee output.
 */
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Overdrawn mirrors the event published by the account service on the
// account-overdrawn exchange.
type Overdrawn struct {
	EventID        string          `json:"event_id"`
	AccountNumber  int64           `json:"account_number"`
	CustomerNumber int64           `json:"customer_number"`
	Balance        decimal.Decimal `json:"balance"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// AccountOverdraft tracks how often a single account has gone overdrawn.
// CurrentOverdraft is the latest limit seen, last-write-wins.
type AccountOverdraft struct {
	AccountNumber         int64           `json:"account_number"`
	CurrentOverdraft      decimal.Decimal `json:"current_overdraft"`
	NumberOverdrawnEvents int             `json:"number_overdrawn_events"`
}

// CustomerOverdraft tracks overdraft history across all of one customer's
// accounts. The nested map is keyed by account number.
type CustomerOverdraft struct {
	CustomerNumber       int64                       `json:"customer_number"`
	TotalOverdrawnEvents int                         `json:"total_overdrawn_events"`
	AccountOverdrafts    map[int64]*AccountOverdraft `json:"account_overdrafts"`
}

// CustomerOverdraftSummary is the aggregated context published on the
// customer-overdrafts exchange after each counted event. The counters are
// the post-increment values used for fee assessment.
type CustomerOverdraftSummary struct {
	EventID               string          `json:"event_id"`
	CustomerNumber        int64           `json:"customer_number"`
	AccountNumber         int64           `json:"account_number"`
	Balance               decimal.Decimal `json:"balance"`
	CurrentOverdraft      decimal.Decimal `json:"current_overdraft"`
	TotalOverdrawnEvents  int             `json:"total_overdrawn_events"`
	NumberOverdrawnEvents int             `json:"number_overdrawn_events"`
}

// AccountFee is the terminal output of the pipeline, consumed by billing.
type AccountFee struct {
	AccountNumber int64           `json:"account_number"`
	OverdraftFee  decimal.Decimal `json:"overdraft_fee"`
}

// OverdraftLimitUpdate is the administrative limit-change request published
// on the overdraft-update exchange and consumed by the account service.
type OverdraftLimitUpdate struct {
	AccountNumber     int64           `json:"account_number"`
	NewOverdraftLimit decimal.Decimal `json:"new_overdraft_limit"`
}
