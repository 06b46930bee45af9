package app

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/acmebank/overdraft-pipeline/internal/account/domain"
	"github.com/acmebank/overdraft-pipeline/pkg/rabbitmq"
)

const (
	ExchangeAccountOverdrawn   = "account-overdrawn"
	RoutingKeyAccountOverdrawn = "account.overdrawn"

	ExchangeOverdraftUpdate   = "overdraft-update"
	RoutingKeyOverdraftUpdate = "overdraft.limit.updated"
)

// PublishStats is a snapshot of the emitter's outcome counters.
type PublishStats struct {
	Published   int64  `json:"published"`
	Acked       int64  `json:"acked"`
	Failed      int64  `json:"failed"`
	LastFailure string `json:"last_failure,omitempty"`
}

// ConfirmedOverdrawnPublisher publishes Overdrawn events on the
// account-overdrawn exchange and tracks ack/nack outcomes. The event ID is
// propagated as the message's correlation ID so consumers can tie fees and
// aggregates back to the originating withdrawal.
type ConfirmedOverdrawnPublisher struct {
	producer rabbitmq.Publisher

	mu          sync.Mutex
	published   int64
	acked       int64
	failed      int64
	lastFailure string
}

func NewConfirmedOverdrawnPublisher(producer rabbitmq.Publisher) *ConfirmedOverdrawnPublisher {
	return &ConfirmedOverdrawnPublisher{producer: producer}
}

// PublishOverdrawn blocks until the broker acks or nacks the event. Failures
// are recorded with their kind (nack vs transport error) and cause; the
// triggering withdrawal is never rolled back on failure.
func (p *ConfirmedOverdrawnPublisher) PublishOverdrawn(ctx context.Context, event domain.Overdrawn) error {
	p.mu.Lock()
	p.published++
	p.mu.Unlock()

	err := p.producer.Publish(ctx, ExchangeAccountOverdrawn, RoutingKeyAccountOverdrawn, event.EventID, event)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.failed++
		kind := "error"
		if errors.Is(err, rabbitmq.ErrPublishNacked) {
			kind = "nack"
		}
		p.lastFailure = kind + ": " + err.Error()
		log.Printf("overdrawn-publisher: %s for event %s (account %d): %v", kind, event.EventID, event.AccountNumber, err)
		return err
	}
	p.acked++
	return nil
}

// Stats returns the current publish outcome counters.
func (p *ConfirmedOverdrawnPublisher) Stats() PublishStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PublishStats{
		Published:   p.published,
		Acked:       p.acked,
		Failed:      p.failed,
		LastFailure: p.lastFailure,
	}
}
