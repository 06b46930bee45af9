/**
 * @description
 * Consumer side of the overdraft pipeline. Each account-overdrawn delivery
 * is counted by the aggregator, the aggregated summary is forwarded on the
 * customer-overdrafts exchange, and the fee assessed from the post-increment
 * counters is published on overdraft-fee — all in the same logical step.
 */
package app

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/acmebank/overdraft-pipeline/internal/overdraft/domain"
)

const (
	ExchangeAccountOverdrawn   = "account-overdrawn"
	RoutingKeyAccountOverdrawn = "account.overdrawn"
	QueueAccountOverdrawn      = "overdraft_service_account_overdrawn"

	ExchangeCustomerOverdrafts   = "customer-overdrafts"
	RoutingKeyCustomerOverdrafts = "customer.overdraft.updated"

	ExchangeOverdraftFee   = "overdraft-fee"
	RoutingKeyOverdraftFee = "overdraft.fee.assessed"

	ExchangeOverdraftUpdate   = "overdraft-update"
	RoutingKeyOverdraftUpdate = "overdraft.limit.updated"
)

// MessagePublisher is the slice of the rabbitmq producer the consumer needs.
type MessagePublisher interface {
	Publish(ctx context.Context, exchange, routingKey, correlationID string, body interface{}) error
}

// OverdrawnConsumer handles account-overdrawn deliveries.
type OverdrawnConsumer struct {
	aggregator *Aggregator
	producer   MessagePublisher
	dedup      Deduplicator // nil disables deduplication
}

func NewOverdrawnConsumer(aggregator *Aggregator, producer MessagePublisher, dedup Deduplicator) *OverdrawnConsumer {
	return &OverdrawnConsumer{aggregator: aggregator, producer: producer, dedup: dedup}
}

// HandleOverdrawn processes one delivery. Returning true acks the message;
// false requeues it. Once the aggregator has counted an event the message is
// always acked: requeueing at that point would double-count on redelivery.
func (c *OverdrawnConsumer) HandleOverdrawn(body []byte, correlationID string) bool {
	var event domain.Overdrawn
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("overdrawn-consumer: failed to unmarshal payload: %v", err)
		return true
	}
	if correlationID == "" {
		correlationID = event.EventID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if c.dedup != nil && event.EventID != "" {
		first, err := c.dedup.FirstDelivery(ctx, event.EventID)
		if err != nil {
			// Dedup store trouble must not stall the pipeline; count the
			// delivery as the source system would.
			log.Printf("overdrawn-consumer: dedup check for event %s failed: %v", event.EventID, err)
		} else if !first {
			log.Printf("overdrawn-consumer: dropping redelivered event %s for account %d", event.EventID, event.AccountNumber)
			return true
		}
	}

	customer, account := c.aggregator.OnOverdrawn(event)

	summary := domain.CustomerOverdraftSummary{
		EventID:               event.EventID,
		CustomerNumber:        customer.CustomerNumber,
		AccountNumber:         account.AccountNumber,
		Balance:               event.Balance,
		CurrentOverdraft:      account.CurrentOverdraft,
		TotalOverdrawnEvents:  customer.TotalOverdrawnEvents,
		NumberOverdrawnEvents: account.NumberOverdrawnEvents,
	}
	if err := c.producer.Publish(ctx, ExchangeCustomerOverdrafts, RoutingKeyCustomerOverdrafts, correlationID, summary); err != nil {
		log.Printf("overdrawn-consumer: forwarding summary for account %d failed: %v", account.AccountNumber, err)
	}

	fee := domain.AccountFee{
		AccountNumber: account.AccountNumber,
		OverdraftFee:  DetermineFee(account.NumberOverdrawnEvents, customer.TotalOverdrawnEvents),
	}
	if err := c.producer.Publish(ctx, ExchangeOverdraftFee, RoutingKeyOverdraftFee, correlationID, fee); err != nil {
		log.Printf("overdrawn-consumer: fee publish for account %d failed: %v", account.AccountNumber, err)
	}

	return true
}
