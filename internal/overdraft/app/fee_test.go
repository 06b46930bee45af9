package app

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDetermineFee(t *testing.T) {
	tests := []struct {
		name          string
		accountTimes  int
		customerTimes int
		want          string
	}{
		{"first overdraft", 1, 1, "15.00"},
		{"repeat offender", 2, 3, "40.00"},
		{"account only", 4, 0, "20.00"},
		{"zero counters", 0, 0, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee := DetermineFee(tt.accountTimes, tt.customerTimes)
			if !fee.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("DetermineFee(%d, %d) = %s, want %s", tt.accountTimes, tt.customerTimes, fee, tt.want)
			}
		})
	}
}

func TestDetermineFeeIsDeterministic(t *testing.T) {
	first := DetermineFee(2, 3)
	second := DetermineFee(2, 3)
	if !first.Equal(second) {
		t.Fatalf("identical counters produced different fees: %s vs %s", first, second)
	}
}
