/**
 * @description
 * Storage abstraction for account records. The Mutate method is the only way
 * to change an account: it gives the caller exclusive read-modify-write
 * access to a single record, so the ledger's state machine never races with
 * concurrent requests for the same account number.
 */
package store

import (
	"context"
	"errors"

	"github.com/acmebank/overdraft-pipeline/internal/account/domain"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

// AccountRepository is implemented by the Postgres store and the in-memory
// store used for local development and tests.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByAccountNumber(ctx context.Context, accountNumber int64) (*domain.Account, error)
	ListAll(ctx context.Context) ([]domain.Account, error)

	// Mutate loads the account, applies fn under exclusive access, and
	// persists the result if fn returns nil. The updated account is
	// returned; fn errors abort the write and are passed through.
	Mutate(ctx context.Context, accountNumber int64, fn func(*domain.Account) error) (*domain.Account, error)
}
