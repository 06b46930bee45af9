package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acmebank/overdraft-pipeline/internal/overdraft/domain"
)

// Service backs the overdraft service's HTTP surface: the read-only list of
// account aggregates and the administrative limit-update publisher.
type Service struct {
	aggregator *Aggregator
	producer   MessagePublisher
}

func NewService(aggregator *Aggregator, producer MessagePublisher) *Service {
	return &Service{aggregator: aggregator, producer: producer}
}

// ListAllAccountOverdrafts returns a fresh snapshot of every account
// aggregate across all customers.
func (s *Service) ListAllAccountOverdrafts() []domain.AccountOverdraft {
	return s.aggregator.ListAllAccountOverdrafts()
}

// RequestLimitUpdate publishes an OverdraftLimitUpdate on the
// overdraft-update exchange for the account service to apply. Fire and
// forget: no acknowledgment flows back to this side.
func (s *Service) RequestLimitUpdate(ctx context.Context, accountNumber int64, newLimit decimal.Decimal) error {
	update := domain.OverdraftLimitUpdate{
		AccountNumber:     accountNumber,
		NewOverdraftLimit: newLimit,
	}
	return s.producer.Publish(ctx, ExchangeOverdraftUpdate, RoutingKeyOverdraftUpdate, uuid.NewString(), update)
}
