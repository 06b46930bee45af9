package app

import "github.com/shopspring/decimal"

// DetermineFee maps post-increment overdraft counters to a fee amount:
// 5 per account overdraft plus 10 per customer overdraft, rounded half-up
// to two decimal places. Identical counters always yield an identical fee.
func DetermineFee(accountOverdrawnTimes, customerOverdrawnTimes int) decimal.Decimal {
	fee := int64(5*accountOverdrawnTimes + 10*customerOverdrawnTimes)
	return decimal.NewFromInt(fee).Round(2)
}
