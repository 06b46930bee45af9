/**
 * @description
 * The aggregator is the sole mutator of the overdraft counters. State lives
 * in process memory only: created empty at startup, discarded at shutdown,
 * rebuilt solely by replaying account-overdrawn messages if durability is
 * ever needed.
 *
 * Concurrency: consumer deliveries may run concurrently, so the customer map
 * is guarded by an RWMutex and each customer entry carries its own lock.
 * Updates for the same customer (and therefore the same account) are
 * linearized on the entry lock; different customers proceed independently.
 */
package app

import (
	"sync"

	"github.com/acmebank/overdraft-pipeline/internal/overdraft/domain"
)

// Aggregator maintains per-customer and per-account overdraft counters.
// Entries are created lazily on the first event for a customer and are never
// deleted. The map is keyed by customer number throughout.
type Aggregator struct {
	mu        sync.RWMutex
	customers map[int64]*customerEntry
}

type customerEntry struct {
	mu        sync.Mutex
	overdraft *domain.CustomerOverdraft
}

func NewAggregator() *Aggregator {
	return &Aggregator{customers: make(map[int64]*customerEntry)}
}

func (a *Aggregator) entryFor(customerNumber int64) *customerEntry {
	a.mu.RLock()
	entry, ok := a.customers[customerNumber]
	a.mu.RUnlock()
	if ok {
		return entry
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if entry, ok = a.customers[customerNumber]; ok {
		return entry
	}
	entry = &customerEntry{overdraft: &domain.CustomerOverdraft{
		CustomerNumber:    customerNumber,
		AccountOverdrafts: make(map[int64]*domain.AccountOverdraft),
	}}
	a.customers[customerNumber] = entry
	return entry
}

// OnOverdrawn counts one overdraft event: it increments the customer's total
// and the account's counter, records the latest overdraft limit, and returns
// post-increment snapshots of both aggregates. Concurrent calls for the same
// account never lose an increment.
func (a *Aggregator) OnOverdrawn(event domain.Overdrawn) (domain.CustomerOverdraft, domain.AccountOverdraft) {
	entry := a.entryFor(event.CustomerNumber)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	overdraft := entry.overdraft
	account, ok := overdraft.AccountOverdrafts[event.AccountNumber]
	if !ok {
		account = &domain.AccountOverdraft{AccountNumber: event.AccountNumber}
		overdraft.AccountOverdrafts[event.AccountNumber] = account
	}

	overdraft.TotalOverdrawnEvents++
	account.CurrentOverdraft = event.OverdraftLimit
	account.NumberOverdrawnEvents++

	return snapshotCustomer(overdraft), *account
}

// ListAllAccountOverdrafts flattens every customer's account aggregates into
// a fresh slice. No ordering is guaranteed.
func (a *Aggregator) ListAllAccountOverdrafts() []domain.AccountOverdraft {
	a.mu.RLock()
	entries := make([]*customerEntry, 0, len(a.customers))
	for _, entry := range a.customers {
		entries = append(entries, entry)
	}
	a.mu.RUnlock()

	overdrafts := make([]domain.AccountOverdraft, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		for _, account := range entry.overdraft.AccountOverdrafts {
			overdrafts = append(overdrafts, *account)
		}
		entry.mu.Unlock()
	}
	return overdrafts
}

func snapshotCustomer(overdraft *domain.CustomerOverdraft) domain.CustomerOverdraft {
	snapshot := domain.CustomerOverdraft{
		CustomerNumber:       overdraft.CustomerNumber,
		TotalOverdrawnEvents: overdraft.TotalOverdrawnEvents,
		AccountOverdrafts:    make(map[int64]*domain.AccountOverdraft, len(overdraft.AccountOverdrafts)),
	}
	for accountNumber, account := range overdraft.AccountOverdrafts {
		copied := *account
		snapshot.AccountOverdrafts[accountNumber] = &copied
	}
	return snapshot
}
