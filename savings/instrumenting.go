package savings

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"rental-savings/domain"
)

type instrumentingService struct {
	quotes *prometheus.CounterVec
	next   Service
}

// NewInstrumentingService counts quotes by tier and whether rates were
// available, registering the counter on reg.
func NewInstrumentingService(reg prometheus.Registerer, s Service) Service {
	quotes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "savings_quotes_total",
			Help: "Quotes computed, by tier percentage and rate availability",
		},
		[]string{"tier", "degraded"},
	)
	reg.MustRegister(quotes)
	return &instrumentingService{
		quotes: quotes,
		next:   s,
	}
}

func (s *instrumentingService) Convert(ctx context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (domain.Exchanged, error) {
	return s.next.Convert(ctx, amount, from, to)
}

func (s *instrumentingService) Quote(ctx context.Context, req domain.QuoteRequest) domain.Quote {
	q := s.next.Quote(ctx, req)
	s.count(q)
	return q
}

func (s *instrumentingService) Compare(ctx context.Context, amount domain.Amount, base domain.Currency, target domain.Currency) []domain.Quote {
	qs := s.next.Compare(ctx, amount, base, target)
	for _, q := range qs {
		s.count(q)
	}
	return qs
}

func (s *instrumentingService) Rates(ctx context.Context, base domain.Currency, refresh bool) (domain.Snapshot, error) {
	return s.next.Rates(ctx, base, refresh)
}

func (s *instrumentingService) count(q domain.Quote) {
	s.quotes.WithLabelValues(strconv.Itoa(q.Tier.Percent()), strconv.FormatBool(q.RatesUnavailable)).Inc()
}
