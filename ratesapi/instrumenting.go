package ratesapi

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rental-savings/domain"
)

// Metrics collectors for rate lookups
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the rate lookup collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_requests_total",
				Help: "Exchange rate lookups by method, base currency and outcome",
			},
			[]string{"method", "base", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rates_request_duration_seconds",
				Help:    "Duration of exchange rate lookups",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"method"},
		),
	}
	reg.MustRegister(m.Requests, m.Duration)
	return m
}

type instrumentingService struct {
	next    Service
	metrics *Metrics
}

// NewInstrumentingService decorates s with Prometheus metrics
func NewInstrumentingService(metrics *Metrics, s Service) Service {
	return &instrumentingService{
		next:    s,
		metrics: metrics,
	}
}

func (s *instrumentingService) ExchangeRates(ctx context.Context, base domain.Currency) (snap domain.Snapshot, err error) {
	defer s.observe("exchange_rates", base, time.Now(), &err)
	return s.next.ExchangeRates(ctx, base)
}

func (s *instrumentingService) Refresh(ctx context.Context, base domain.Currency) (snap domain.Snapshot, err error) {
	defer s.observe("refresh", base, time.Now(), &err)
	return s.next.Refresh(ctx, base)
}

func (s *instrumentingService) observe(method string, base domain.Currency, begin time.Time, err *error) {
	status := "ok"
	if *err != nil {
		status = "error"
	}
	s.metrics.Requests.WithLabelValues(method, string(base), status).Inc()
	s.metrics.Duration.WithLabelValues(method).Observe(time.Since(begin).Seconds())
}
