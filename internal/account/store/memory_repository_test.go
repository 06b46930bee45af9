package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/acmebank/overdraft-pipeline/internal/account/domain"
)

func seedAccount(t *testing.T, repo *MemoryAccountRepository) {
	t.Helper()
	account := domain.Account{
		AccountNumber:  123456789,
		CustomerNumber: 12345,
		CustomerName:   "Debbie Hall",
		Balance:        decimal.RequireFromString("550.58"),
		OverdraftLimit: decimal.RequireFromString("200.00"),
		Status:         domain.StatusOpen,
	}
	if err := repo.Create(context.Background(), &account); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
}

func TestMemoryRepositoryCreateAndFind(t *testing.T) {
	repo := NewMemoryAccountRepository()
	seedAccount(t, repo)

	account, err := repo.FindByAccountNumber(context.Background(), 123456789)
	if err != nil {
		t.Fatalf("FindByAccountNumber returned error: %v", err)
	}
	if account.CustomerName != "Debbie Hall" {
		t.Fatalf("unexpected account: %+v", account)
	}

	if _, err := repo.FindByAccountNumber(context.Background(), 1); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestMemoryRepositoryRejectsDuplicateAccount(t *testing.T) {
	repo := NewMemoryAccountRepository()
	seedAccount(t, repo)

	dup := domain.Account{AccountNumber: 123456789}
	if err := repo.Create(context.Background(), &dup); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestMemoryRepositoryMutateAbortsOnError(t *testing.T) {
	repo := NewMemoryAccountRepository()
	seedAccount(t, repo)

	boom := errors.New("boom")
	_, err := repo.Mutate(context.Background(), 123456789, func(a *domain.Account) error {
		a.Balance = decimal.Zero
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error to propagate, got %v", err)
	}

	account, err := repo.FindByAccountNumber(context.Background(), 123456789)
	if err != nil {
		t.Fatalf("FindByAccountNumber returned error: %v", err)
	}
	if !account.Balance.Equal(decimal.RequireFromString("550.58")) {
		t.Fatalf("aborted mutation must not persist, balance is %s", account.Balance)
	}
}

func TestMemoryRepositoryMutateSerializesConcurrentWrites(t *testing.T) {
	repo := NewMemoryAccountRepository()
	seedAccount(t, repo)

	const workers = 50
	one := decimal.RequireFromString("1.00")

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.Mutate(context.Background(), 123456789, func(a *domain.Account) error {
				a.Balance = a.Balance.Sub(one)
				return nil
			})
			if err != nil {
				t.Errorf("Mutate returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	account, err := repo.FindByAccountNumber(context.Background(), 123456789)
	if err != nil {
		t.Fatalf("FindByAccountNumber returned error: %v", err)
	}
	want := decimal.RequireFromString("500.58")
	if !account.Balance.Equal(want) {
		t.Fatalf("expected balance %s after %d withdrawals, got %s", want, workers, account.Balance)
	}
}
