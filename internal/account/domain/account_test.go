package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestWithdrawalBlocked(t *testing.T) {
	limit := decimal.RequireFromString("-200.00")

	tests := []struct {
		name    string
		balance string
		status  Status
		blocked bool
	}{
		{"open with funds", "100.00", StatusOpen, false},
		{"open below limit", "-300.00", StatusOpen, false},
		{"overdrawn beyond limit", "-300.00", StatusOverdrawn, true},
		{"overdrawn at limit", "-200.00", StatusOverdrawn, true},
		{"overdrawn but recovered", "-100.00", StatusOverdrawn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := Account{
				Balance:        decimal.RequireFromString(tt.balance),
				OverdraftLimit: limit,
				Status:         tt.status,
			}
			if got := account.WithdrawalBlocked(); got != tt.blocked {
				t.Fatalf("WithdrawalBlocked() = %v, want %v", got, tt.blocked)
			}
		})
	}
}

func TestCloseZeroesBalance(t *testing.T) {
	account := Account{
		Balance: decimal.RequireFromString("123.45"),
		Status:  StatusOverdrawn,
	}
	account.Close()

	if account.Status != StatusClosed {
		t.Fatalf("expected CLOSED, got %s", account.Status)
	}
	if !account.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", account.Balance)
	}
}

func TestWithdrawFundsDoesNotClamp(t *testing.T) {
	account := Account{Balance: decimal.RequireFromString("10.00"), Status: StatusOpen}
	account.WithdrawFunds(decimal.RequireFromString("25.50"))

	if !account.Balance.Equal(decimal.RequireFromString("-15.50")) {
		t.Fatalf("expected -15.50, got %s", account.Balance)
	}
}
