package savings

import (
	"context"
	"time"

	"github.com/go-kit/log"

	"rental-savings/domain"
)

// loggingService decorates a savings.Service with logging
type loggingService struct {
	logger log.Logger
	next   Service
}

// NewLoggingService returns a new instance of a logging Service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Convert(ctx context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (ex domain.Exchanged, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "convert",
			"amount", amount,
			"from", from,
			"to", to,
			"rate", ex.Rate,
			"converted_amount", ex.Amount,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Convert(ctx, amount, from, to)
}

func (s *loggingService) Quote(ctx context.Context, req domain.QuoteRequest) (q domain.Quote) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "quote",
			"amount", req.Amount,
			"base", req.Base,
			"target", req.Target,
			"tier", req.Tier,
			"payable", q.Payable,
			"rates_unavailable", q.RatesUnavailable,
			"took", time.Since(begin),
		)
	}(time.Now())
	return s.next.Quote(ctx, req)
}

func (s *loggingService) Compare(ctx context.Context, amount domain.Amount, base domain.Currency, target domain.Currency) (qs []domain.Quote) {
	defer func(begin time.Time) {
		degraded := false
		for _, q := range qs {
			degraded = degraded || q.RatesUnavailable
		}
		s.logger.Log(
			"method", "compare",
			"amount", amount,
			"base", base,
			"target", target,
			"quotes", len(qs),
			"rates_unavailable", degraded,
			"took", time.Since(begin),
		)
	}(time.Now())
	return s.next.Compare(ctx, amount, base, target)
}

func (s *loggingService) Rates(ctx context.Context, base domain.Currency, refresh bool) (snap domain.Snapshot, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "rates",
			"base", base,
			"refresh", refresh,
			"source", snap.Source,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Rates(ctx, base, refresh)
}
