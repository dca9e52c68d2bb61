package savings

import (
	"context"
	"errors"
	"fmt"

	"rental-savings/domain"
	"rental-savings/ratesapi"
)

var ErrUnknownCurrency = errors.New("unknown currency")

// Service works out discounted prices and currency conversions
type Service interface {
	// Convert converts amount with the current from->to rate.
	Convert(ctx context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (domain.Exchanged, error)
	// Quote never fails; without rates the target figures are omitted.
	Quote(ctx context.Context, req domain.QuoteRequest) domain.Quote
	// Compare quotes every tier, cheapest first, from one rate lookup.
	Compare(ctx context.Context, amount domain.Amount, base domain.Currency, target domain.Currency) []domain.Quote
	// Rates returns the snapshot quotes are computed from; refresh refetches it.
	Rates(ctx context.Context, base domain.Currency, refresh bool) (domain.Snapshot, error)
}

type service struct {
	// rates source of exchange rates
	rates ratesapi.Service
}

// NewService constructs a valid Service
func NewService(s ratesapi.Service) Service {
	return &service{
		rates: s,
	}
}

// Convert computes a conversion from one currency to another with the current exchange rate.
// As a side-effect the cache of exchange rates might be updated.
func (s *service) Convert(ctx context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (domain.Exchanged, error) {
	if !from.Valid() || !to.Valid() {
		return domain.Exchanged{}, fmt.Errorf("%w: %q -> %q", ErrUnknownCurrency, from, to)
	}
	snap, err := s.rates.ExchangeRates(ctx, from)
	if err != nil {
		return domain.Exchanged{}, fmt.Errorf("convert from [%v]: %w", from, err)
	}

	rate, ok := snap.Rate(to)
	if !ok {
		return domain.Exchanged{}, fmt.Errorf("%w: 'to' currency %v", ErrUnknownCurrency, to)
	}

	return domain.Exchanged{
		Rate:   rate,
		Amount: Convert(amount.Sanitize(), rate),
	}, nil
}

func (s *service) Quote(ctx context.Context, req domain.QuoteRequest) domain.Quote {
	rate, ok := s.rate(ctx, req.Base, req.Target)
	return Compute(req, rate, ok)
}

func (s *service) Compare(ctx context.Context, amount domain.Amount, base domain.Currency, target domain.Currency) []domain.Quote {
	rate, ok := s.rate(ctx, base, target)
	out := make([]domain.Quote, 0, len(domain.Tiers))
	for _, tier := range domain.Tiers {
		out = append(out, Compute(domain.QuoteRequest{
			Amount: amount,
			Base:   base,
			Target: target,
			Tier:   tier,
		}, rate, ok))
	}
	return out
}

func (s *service) Rates(ctx context.Context, base domain.Currency, refresh bool) (domain.Snapshot, error) {
	if refresh {
		return s.rates.Refresh(ctx, base)
	}
	return s.rates.ExchangeRates(ctx, base)
}

// rate looks up base->target; the lookup is skipped when no conversion is needed
func (s *service) rate(ctx context.Context, base, target domain.Currency) (domain.Rate, bool) {
	if target == "" || target == base {
		return 1, true
	}
	if !base.Valid() || !target.Valid() {
		return 0, false
	}
	snap, err := s.rates.ExchangeRates(ctx, base)
	if err != nil {
		return 0, false
	}
	return snap.Rate(target)
}
