/**
 * @description
 * Domain model for the account service: the bank account record and its
 * balance state machine. Balances and limits use exact decimal arithmetic;
 * floating point never touches money here.
 */
package domain

import "github.com/shopspring/decimal"

// Status is the lifecycle state of an account.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusOverdrawn Status = "OVERDRAWN"
	StatusClosed    Status = "CLOSED"
)

// Account is the unit of truth for one bank account. The overdraft limit is
// the most-negative balance permitted and is usually negative itself.
type Account struct {
	AccountNumber  int64           `json:"account_number"`
	CustomerNumber int64           `json:"customer_number"`
	CustomerName   string          `json:"customer_name"`
	Balance        decimal.Decimal `json:"balance"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	Status         Status          `json:"status"`
}

// WithdrawFunds subtracts amount from the balance without clamping.
func (a *Account) WithdrawFunds(amount decimal.Decimal) {
	a.Balance = a.Balance.Sub(amount)
}

// AddFunds adds amount to the balance and returns the new balance.
func (a *Account) AddFunds(amount decimal.Decimal) decimal.Decimal {
	a.Balance = a.Balance.Add(amount)
	return a.Balance
}

func (a *Account) MarkOverdrawn() {
	a.Status = StatusOverdrawn
}

// RemoveOverdrawnStatus is the administrative OVERDRAWN -> OPEN transition.
// Nothing on the deposit or withdrawal path clears the status.
func (a *Account) RemoveOverdrawnStatus() {
	a.Status = StatusOpen
}

// Close pins the balance to zero and moves the account to its terminal state.
func (a *Account) Close() {
	a.Status = StatusClosed
	a.Balance = decimal.Zero
}

// WithdrawalBlocked reports whether policy forbids further withdrawals.
// Status alone does not gate: an OVERDRAWN account whose balance has
// recovered above the overdraft limit may withdraw again, down to the limit.
func (a *Account) WithdrawalBlocked() bool {
	return a.Status == StatusOverdrawn && a.Balance.LessThanOrEqual(a.OverdraftLimit)
}
