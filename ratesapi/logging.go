package ratesapi

import (
	"context"
	"time"

	"github.com/go-kit/log"

	"rental-savings/domain"
)

// loggingService decorates a ratesapi.Service with logging
type loggingService struct {
	next   Service
	logger log.Logger
}

// NewLoggingService return a new logging service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) ExchangeRates(ctx context.Context, base domain.Currency) (snap domain.Snapshot, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "exchange_rates",
			"base", base,
			"rates", len(snap.Rates),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ExchangeRates(ctx, base)
}

func (s *loggingService) Refresh(ctx context.Context, base domain.Currency) (snap domain.Snapshot, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "refresh",
			"base", base,
			"rates", len(snap.Rates),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Refresh(ctx, base)
}
