/**
 * @description
 * PostgreSQL implementation of the AccountRepository. Balances are stored as
 * NUMERIC and moved across the wire as text so decimal precision survives the
 * round trip. Mutate runs inside a transaction holding a row lock
 * (SELECT ... FOR UPDATE), which serializes concurrent mutations of the same
 * account.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - github.com/shopspring/decimal: Exact decimal parsing for money columns.
 */
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/acmebank/overdraft-pipeline/internal/account/domain"
)

// PostgresAccountRepository is the production AccountRepository.
type PostgresAccountRepository struct {
	db *pgxpool.Pool
}

func NewPostgresAccountRepository(db *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

const accountColumns = `account_number, customer_number, customer_name, balance::text, overdraft_limit::text, status`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account      domain.Account
		balance      string
		limit        string
		statusString string
	)
	if err := row.Scan(&account.AccountNumber, &account.CustomerNumber, &account.CustomerName, &balance, &limit, &statusString); err != nil {
		return nil, err
	}

	var err error
	if account.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	if account.OverdraftLimit, err = decimal.NewFromString(limit); err != nil {
		return nil, fmt.Errorf("parse overdraft limit: %w", err)
	}
	account.Status = domain.Status(statusString)
	return &account, nil
}

func (r *PostgresAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `INSERT INTO accounts (account_number, customer_number, customer_name, balance, overdraft_limit, status)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (account_number) DO NOTHING`
	tag, err := r.db.Exec(ctx, query,
		account.AccountNumber,
		account.CustomerNumber,
		account.CustomerName,
		account.Balance.String(),
		account.OverdraftLimit.String(),
		string(account.Status),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountExists
	}
	return nil
}

func (r *PostgresAccountRepository) FindByAccountNumber(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	account, err := scanAccount(r.db.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *PostgresAccountRepository) ListAll(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY account_number`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func (r *PostgresAccountRepository) Mutate(ctx context.Context, accountNumber int64, fn func(*domain.Account) error) (*domain.Account, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 FOR UPDATE`
	account, err := scanAccount(tx.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if err := fn(account); err != nil {
		return nil, err
	}

	update := `UPDATE accounts SET balance = $2, overdraft_limit = $3, status = $4 WHERE account_number = $1`
	if _, err := tx.Exec(ctx, update,
		account.AccountNumber,
		account.Balance.String(),
		account.OverdraftLimit.String(),
		string(account.Status),
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return account, nil
}
