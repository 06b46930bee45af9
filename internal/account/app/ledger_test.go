package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/acmebank/overdraft-pipeline/internal/account/domain"
	"github.com/acmebank/overdraft-pipeline/internal/account/store"
)

type publisherStub struct {
	events []domain.Overdrawn
	err    error
}

func (p *publisherStub) PublishOverdrawn(ctx context.Context, event domain.Overdrawn) error {
	p.events = append(p.events, event)
	return p.err
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func newTestLedger(t *testing.T, accounts ...domain.Account) (*Ledger, *publisherStub) {
	t.Helper()
	repo := store.NewMemoryAccountRepository()
	for i := range accounts {
		if err := repo.Create(context.Background(), &accounts[i]); err != nil {
			t.Fatalf("seed account %d: %v", accounts[i].AccountNumber, err)
		}
	}
	publisher := &publisherStub{}
	return NewLedger(repo, publisher), publisher
}

func openAccount(t *testing.T, balance, limit string) domain.Account {
	t.Helper()
	return domain.Account{
		AccountNumber:  78790,
		CustomerNumber: 444222,
		CustomerName:   "Billie Piper",
		Balance:        mustDecimal(t, balance),
		OverdraftLimit: mustDecimal(t, limit),
		Status:         domain.StatusOpen,
	}
}

func TestWithdrawReducesBalanceWithoutEvent(t *testing.T) {
	ledger, publisher := newTestLedger(t, openAccount(t, "200.00", "-200.00"))

	account, err := ledger.Withdraw(context.Background(), 78790, mustDecimal(t, "23.82"))
	if err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}
	if !account.Balance.Equal(mustDecimal(t, "176.18")) {
		t.Fatalf("expected balance 176.18, got %s", account.Balance)
	}
	if account.Status != domain.StatusOpen {
		t.Fatalf("expected status OPEN, got %s", account.Status)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("expected no overdrawn events, got %d", len(publisher.events))
	}
}

func TestWithdrawIntoOverdraftEmitsOneEvent(t *testing.T) {
	ledger, publisher := newTestLedger(t, openAccount(t, "176.18", "-200.00"))

	account, err := ledger.Withdraw(context.Background(), 78790, mustDecimal(t, "6000.00"))
	if err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}
	if !account.Balance.Equal(mustDecimal(t, "-5823.82")) {
		t.Fatalf("expected balance -5823.82, got %s", account.Balance)
	}
	if account.Status != domain.StatusOverdrawn {
		t.Fatalf("expected status OVERDRAWN, got %s", account.Status)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected exactly one overdrawn event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.AccountNumber != 78790 || event.CustomerNumber != 444222 {
		t.Fatalf("event carries wrong identifiers: %+v", event)
	}
	if !event.Balance.Equal(mustDecimal(t, "-5823.82")) {
		t.Fatalf("expected event balance -5823.82, got %s", event.Balance)
	}
	if !event.OverdraftLimit.Equal(mustDecimal(t, "-200.00")) {
		t.Fatalf("expected event limit -200.00, got %s", event.OverdraftLimit)
	}
	if event.EventID == "" {
		t.Fatal("expected event to carry a correlation event id")
	}
}

func TestWithdrawBlockedWhileBeyondLimit(t *testing.T) {
	account := openAccount(t, "-250.00", "-200.00")
	account.Status = domain.StatusOverdrawn
	ledger, publisher := newTestLedger(t, account)

	_, err := ledger.Withdraw(context.Background(), 78790, mustDecimal(t, "10.00"))
	if !errors.Is(err, ErrAccountOverdrawn) {
		t.Fatalf("expected ErrAccountOverdrawn, got %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("blocked withdrawal must not emit events, got %d", len(publisher.events))
	}
}

func TestWithdrawAllowedAfterBalanceRecovers(t *testing.T) {
	// Status is still OVERDRAWN but the balance has risen above the limit,
	// so withdrawals are permitted again down to the limit.
	account := openAccount(t, "-50.00", "-200.00")
	account.Status = domain.StatusOverdrawn
	ledger, _ := newTestLedger(t, account)

	updated, err := ledger.Withdraw(context.Background(), 78790, mustDecimal(t, "25.00"))
	if err != nil {
		t.Fatalf("expected recovery withdrawal to pass, got %v", err)
	}
	if !updated.Balance.Equal(mustDecimal(t, "-75.00")) {
		t.Fatalf("expected balance -75.00, got %s", updated.Balance)
	}
}

func TestWithdrawPublishFailureStillSucceeds(t *testing.T) {
	ledger, publisher := newTestLedger(t, openAccount(t, "100.00", "-200.00"))
	publisher.err = errors.New("broker nacked")

	account, err := ledger.Withdraw(context.Background(), 78790, mustDecimal(t, "150.00"))
	if err != nil {
		t.Fatalf("publish failure must not fail the withdrawal, got %v", err)
	}
	if !account.Balance.Equal(mustDecimal(t, "-50.00")) {
		t.Fatalf("expected committed balance -50.00, got %s", account.Balance)
	}
	if account.Status != domain.StatusOverdrawn {
		t.Fatalf("expected status OVERDRAWN, got %s", account.Status)
	}
}

func TestWithdrawUnknownAccount(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Withdraw(context.Background(), 99999, mustDecimal(t, "10.00"))
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestDepositNeverBlockedAndKeepsStatus(t *testing.T) {
	account := openAccount(t, "-250.00", "-200.00")
	account.Status = domain.StatusOverdrawn
	ledger, _ := newTestLedger(t, account)

	updated, err := ledger.Deposit(context.Background(), 78790, mustDecimal(t, "300.00"))
	if err != nil {
		t.Fatalf("Deposit returned error: %v", err)
	}
	if !updated.Balance.Equal(mustDecimal(t, "50.00")) {
		t.Fatalf("expected balance 50.00, got %s", updated.Balance)
	}
	if updated.Status != domain.StatusOverdrawn {
		t.Fatalf("deposit must not clear OVERDRAWN, got %s", updated.Status)
	}
}

func TestRemoveOverdrawnStatusClearsStatus(t *testing.T) {
	account := openAccount(t, "50.00", "-200.00")
	account.Status = domain.StatusOverdrawn
	ledger, _ := newTestLedger(t, account)

	updated, err := ledger.RemoveOverdrawnStatus(context.Background(), 78790)
	if err != nil {
		t.Fatalf("RemoveOverdrawnStatus returned error: %v", err)
	}
	if updated.Status != domain.StatusOpen {
		t.Fatalf("expected status OPEN, got %s", updated.Status)
	}
}

func TestApplyLimitUpdateIsIdempotent(t *testing.T) {
	ledger, _ := newTestLedger(t, openAccount(t, "200.00", "-200.00"))
	newLimit := mustDecimal(t, "-600.00")

	for i := 0; i < 2; i++ {
		if err := ledger.ApplyLimitUpdate(context.Background(), 78790, newLimit); err != nil {
			t.Fatalf("ApplyLimitUpdate pass %d returned error: %v", i+1, err)
		}
	}

	account, err := ledger.GetAccount(context.Background(), 78790)
	if err != nil {
		t.Fatalf("GetAccount returned error: %v", err)
	}
	if !account.OverdraftLimit.Equal(newLimit) {
		t.Fatalf("expected limit -600.00, got %s", account.OverdraftLimit)
	}
}

func TestCloseZeroesBalanceAndIsTerminal(t *testing.T) {
	ledger, _ := newTestLedger(t, openAccount(t, "321.00", "-200.00"))

	if err := ledger.Close(context.Background(), 78790); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	account, err := ledger.GetAccount(context.Background(), 78790)
	if err != nil {
		t.Fatalf("GetAccount returned error: %v", err)
	}
	if account.Status != domain.StatusClosed {
		t.Fatalf("expected status CLOSED, got %s", account.Status)
	}
	if !account.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", account.Balance)
	}

	if _, err := ledger.Withdraw(context.Background(), 78790, mustDecimal(t, "1.00")); !errors.Is(err, ErrAccountClosed) {
		t.Fatalf("expected ErrAccountClosed on withdrawal, got %v", err)
	}
	if _, err := ledger.Deposit(context.Background(), 78790, mustDecimal(t, "1.00")); !errors.Is(err, ErrAccountClosed) {
		t.Fatalf("expected ErrAccountClosed on deposit, got %v", err)
	}
}

func TestParseAmountRejectsMalformedInput(t *testing.T) {
	for _, raw := range []string{"", "abc", "12.3.4", "-5.00", "0"} {
		if _, err := ParseAmount(raw); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount for %q, got %v", raw, err)
		}
	}

	amount, err := ParseAmount(" 23.82 ")
	if err != nil {
		t.Fatalf("ParseAmount rejected valid input: %v", err)
	}
	if !amount.Equal(mustDecimal(t, "23.82")) {
		t.Fatalf("expected 23.82, got %s", amount)
	}
}
