package ratesapi

import (
	"context"
	"fmt"
	"time"

	"rental-savings/domain"
)

// staticService answers from the built-in USD snapshot
type staticService struct {
	usd     domain.Rates
	updated time.Time
}

// NewStaticService returns a Service backed by the built-in rate table.
// Rates for other bases are crossed through USD.
func NewStaticService() Service {
	return &staticService{
		usd:     domain.StaticRates(),
		updated: time.Now().UTC(),
	}
}

func (s *staticService) ExchangeRates(_ context.Context, base domain.Currency) (domain.Snapshot, error) {
	baseRate, ok := s.usd[base]
	if !ok || baseRate <= 0 {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrUnsupported, base)
	}

	rates := make(domain.Rates, len(s.usd))
	for code, r := range s.usd {
		rates[code] = r / baseRate
	}
	rates[base] = 1

	return domain.Snapshot{
		Base:      base,
		Rates:     rates,
		UpdatedAt: s.updated,
		Source:    "static",
	}, nil
}

func (s *staticService) Refresh(ctx context.Context, base domain.Currency) (domain.Snapshot, error) {
	return s.ExchangeRates(ctx, base)
}
