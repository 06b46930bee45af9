package store

import (
	"context"
	"sync"

	"github.com/acmebank/overdraft-pipeline/internal/account/domain"
)

// MemoryAccountRepository keeps accounts in process memory. It backs local
// development when no DATABASE_URL is configured, and the handler and ledger
// tests. Mutation for one account number is serialized on a per-entry lock.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[int64]*accountEntry
}

type accountEntry struct {
	mu      sync.Mutex
	account domain.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[int64]*accountEntry)}
}

func (r *MemoryAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.AccountNumber]; ok {
		return ErrAccountExists
	}
	r.accounts[account.AccountNumber] = &accountEntry{account: *account}
	return nil
}

func (r *MemoryAccountRepository) FindByAccountNumber(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	r.mu.RLock()
	entry, ok := r.accounts[accountNumber]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrAccountNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	account := entry.account
	return &account, nil
}

func (r *MemoryAccountRepository) ListAll(ctx context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	entries := make([]*accountEntry, 0, len(r.accounts))
	for _, entry := range r.accounts {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	accounts := make([]domain.Account, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		accounts = append(accounts, entry.account)
		entry.mu.Unlock()
	}
	return accounts, nil
}

func (r *MemoryAccountRepository) Mutate(ctx context.Context, accountNumber int64, fn func(*domain.Account) error) (*domain.Account, error) {
	r.mu.RLock()
	entry, ok := r.accounts[accountNumber]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrAccountNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	updated := entry.account
	if err := fn(&updated); err != nil {
		return nil, err
	}
	entry.account = updated
	account := updated
	return &account, nil
}
