package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/acmebank/overdraft-pipeline/internal/account/domain"
	"github.com/acmebank/overdraft-pipeline/internal/account/store"
)

// LimitUpdateConsumer applies OverdraftLimitUpdate messages from the
// overdraft-update exchange to the ledger. It runs on the consumer goroutine,
// decoupled from the withdrawal path, so a slow update never stalls a
// withdrawal.
type LimitUpdateConsumer struct {
	ledger *Ledger
}

func NewLimitUpdateConsumer(ledger *Ledger) *LimitUpdateConsumer {
	return &LimitUpdateConsumer{ledger: ledger}
}

// HandleMessage processes one overdraft-update delivery. Returning true acks
// the message; false requeues it. Malformed payloads and updates for unknown
// or closed accounts are logged and dropped rather than redelivered forever.
func (c *LimitUpdateConsumer) HandleMessage(body []byte, correlationID string) bool {
	var update domain.OverdraftLimitUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		log.Printf("limit-consumer: failed to unmarshal payload: %v", err)
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := c.ledger.ApplyLimitUpdate(ctx, update.AccountNumber, update.NewOverdraftLimit)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) || errors.Is(err, ErrAccountClosed) {
			log.Printf("limit-consumer: skipping update for account %d: %v", update.AccountNumber, err)
			return true
		}
		log.Printf("limit-consumer: update for account %d failed: %v", update.AccountNumber, err)
		return false
	}

	log.Printf("limit-consumer: account %d overdraft limit set to %s (correlation %s)",
		update.AccountNumber, update.NewOverdraftLimit.String(), correlationID)
	return true
}
