/**
 * @description
 * Core application logic for the account service: the ledger operations that
 * drive the balance state machine and hand overdraft notifications to the
 * event publisher.
 *
 * Key behaviors:
 * - Withdrawals that push the balance below zero mark the account OVERDRAWN
 *   and publish exactly one Overdrawn event. The withdrawal response is not
 *   returned until the broker's publish outcome (ack or nack) has resolved.
 * - A publish failure never unwinds the committed balance mutation; it is
 *   counted on the publisher and the caller still sees the updated account.
 * - Deposits are never blocked by status and never clear OVERDRAWN.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acmebank/overdraft-pipeline/internal/account/domain"
	"github.com/acmebank/overdraft-pipeline/internal/account/store"
)

var (
	// ErrAccountOverdrawn blocks a withdrawal while the account is
	// OVERDRAWN and its balance still sits at or below the overdraft limit.
	ErrAccountOverdrawn = errors.New("account is overdrawn, no further withdrawals permitted")

	// ErrAccountClosed rejects any mutation of a closed account.
	ErrAccountClosed = errors.New("account is closed")

	// ErrInvalidAmount rejects malformed or non-positive amounts before any
	// mutation happens.
	ErrInvalidAmount = errors.New("invalid amount")
)

// OverdrawnPublisher publishes Overdrawn events and blocks until the broker
// acks or nacks the message.
type OverdrawnPublisher interface {
	PublishOverdrawn(ctx context.Context, event domain.Overdrawn) error
}

// Ledger owns all balance mutations for the account service.
type Ledger struct {
	repo      store.AccountRepository
	publisher OverdrawnPublisher
}

func NewLedger(repo store.AccountRepository, publisher OverdrawnPublisher) *Ledger {
	return &Ledger{repo: repo, publisher: publisher}
}

// ParseAmount turns a decimal string from the wire into an exact amount.
// Non-numeric and non-positive input is a validation failure.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	return amount, nil
}

// Withdraw subtracts amount from the account's balance. When the resulting
// balance is negative the account transitions to OVERDRAWN and one Overdrawn
// event is published; the call returns only after the publish outcome has
// resolved, so an overdraft-causing withdrawal is observably slower than a
// normal one.
func (l *Ledger) Withdraw(ctx context.Context, accountNumber int64, amount decimal.Decimal) (*domain.Account, error) {
	var event *domain.Overdrawn

	account, err := l.repo.Mutate(ctx, accountNumber, func(a *domain.Account) error {
		if a.Status == domain.StatusClosed {
			return ErrAccountClosed
		}
		if a.WithdrawalBlocked() {
			return ErrAccountOverdrawn
		}

		a.WithdrawFunds(amount)
		if a.Balance.IsNegative() {
			a.MarkOverdrawn()
			event = &domain.Overdrawn{
				EventID:        uuid.NewString(),
				AccountNumber:  a.AccountNumber,
				CustomerNumber: a.CustomerNumber,
				Balance:        a.Balance,
				OverdraftLimit: a.OverdraftLimit,
				OccurredAt:     time.Now().UTC(),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event != nil {
		// The mutation is already committed. A nack is counted and logged
		// by the publisher but the withdrawal still reports success.
		if err := l.publisher.PublishOverdrawn(ctx, *event); err != nil {
			log.Printf("ledger: overdrawn notification for account %d failed: %v", accountNumber, err)
		}
	}
	return account, nil
}

// Deposit adds amount to the balance unconditionally. Status is untouched:
// only RemoveOverdrawnStatus clears OVERDRAWN.
func (l *Ledger) Deposit(ctx context.Context, accountNumber int64, amount decimal.Decimal) (*domain.Account, error) {
	return l.repo.Mutate(ctx, accountNumber, func(a *domain.Account) error {
		if a.Status == domain.StatusClosed {
			return ErrAccountClosed
		}
		a.AddFunds(amount)
		return nil
	})
}

// ApplyLimitUpdate overwrites the account's overdraft limit. Applying the
// same update twice leaves the same limit.
func (l *Ledger) ApplyLimitUpdate(ctx context.Context, accountNumber int64, newLimit decimal.Decimal) error {
	_, err := l.repo.Mutate(ctx, accountNumber, func(a *domain.Account) error {
		if a.Status == domain.StatusClosed {
			return ErrAccountClosed
		}
		a.OverdraftLimit = newLimit
		return nil
	})
	return err
}

// Close zeroes the balance and moves the account to CLOSED, its terminal
// state. Closing an already-closed account is a no-op.
func (l *Ledger) Close(ctx context.Context, accountNumber int64) error {
	_, err := l.repo.Mutate(ctx, accountNumber, func(a *domain.Account) error {
		a.Close()
		return nil
	})
	return err
}

// RemoveOverdrawnStatus is the administrative action that returns an
// OVERDRAWN account to OPEN.
func (l *Ledger) RemoveOverdrawnStatus(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	return l.repo.Mutate(ctx, accountNumber, func(a *domain.Account) error {
		if a.Status == domain.StatusClosed {
			return ErrAccountClosed
		}
		a.RemoveOverdrawnStatus()
		return nil
	})
}

// CreateAccount registers a new account. Status defaults to OPEN.
func (l *Ledger) CreateAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	if account.Status == "" {
		account.Status = domain.StatusOpen
	}
	if err := l.repo.Create(ctx, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccount returns one account by its number.
func (l *Ledger) GetAccount(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	return l.repo.FindByAccountNumber(ctx, accountNumber)
}

// ListAccounts returns all accounts.
func (l *Ledger) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return l.repo.ListAll(ctx)
}

// GetBalance returns the current balance for one account.
func (l *Ledger) GetBalance(ctx context.Context, accountNumber int64) (decimal.Decimal, error) {
	account, err := l.repo.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return account.Balance, nil
}
