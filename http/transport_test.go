package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-savings/domain"
	"rental-savings/ratesapi"
	"rental-savings/savings"
)

type mock struct {
	savings.Service
	t      *testing.T
	amount domain.Amount
	from   domain.Currency
	to     domain.Currency
}

func (m *mock) Convert(_ context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (domain.Exchanged, error) {
	assert.Equal(m.t, m.amount, amount, "amount")
	assert.Equal(m.t, m.from, from, "from")
	assert.Equal(m.t, m.to, to, "to")
	return domain.Exchanged{Rate: 2.0, Amount: 6.0}, nil
}

type unreachable struct{}

func (unreachable) ExchangeRates(context.Context, domain.Currency) (domain.Snapshot, error) {
	return domain.Snapshot{}, errors.New("dial tcp: i/o timeout")
}

func (u unreachable) Refresh(ctx context.Context, base domain.Currency) (domain.Snapshot, error) {
	return u.ExchangeRates(ctx, base)
}

func staticServer(opts Options) *Server {
	return NewServer(savings.NewService(ratesapi.NewStaticService()), nil, log.NewNopLogger(), opts)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type quoteBody struct {
	Quotes []struct {
		Tier                float64 `json:"tier"`
		Target              string  `json:"target"`
		PayableText         string  `json:"payableText"`
		SavedText           string  `json:"savedText"`
		PayableInTargetText string  `json:"payableInTargetText"`
	} `json:"quotes"`
	RatesUnavailable bool `json:"ratesUnavailable"`
}

func TestServer_ServeHTTP(t *testing.T) {
	es := mock{
		t:      t,
		amount: 3,
		from:   "GBP",
		to:     "FOO",
	}

	server := NewServer(&es, nil, log.NewNopLogger(), Options{})

	msg := `{"fromCurrency":"GBP", "toCurrency":"FOO","amount":3.0}`
	w := do(t, server, "POST", "/api/convert", msg)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"exchange":2,"amount":6,"original":3}`, strings.TrimSpace(w.Body.String()))
}

func TestServer_ConvertRejectsBadRequests(t *testing.T) {
	server := staticServer(Options{})

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"fromCurrency":`},
		{"unknown target", `{"fromCurrency":"USD","toCurrency":"ZZZ","amount":1}`},
		{"unknown base", `{"fromCurrency":"ZZZ","toCurrency":"USD","amount":1}`},
		{"query in code", `{"fromCurrency":"usd?junk=1","toCurrency":"EUR","amount":1}`},
		{"path in code", `{"fromCurrency":"../../admin","toCurrency":"EUR","amount":1}`},
		{"short target", `{"fromCurrency":"USD","toCurrency":"EU","amount":1}`},
		{"missing codes", `{"amount":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, server, "POST", "/api/convert", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestServer_ConvertMalformedCodesNeverReachService(t *testing.T) {
	es := mock{t: t}
	server := NewServer(&es, nil, log.NewNopLogger(), Options{})

	w := do(t, server, "POST", "/api/convert", `{"fromCurrency":"usd?junk=1","toCurrency":"EUR","amount":1}`)

	// mock.Convert would fail the test on any call with these arguments
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_ConvertUpstreamFailureIsBadGateway(t *testing.T) {
	server := NewServer(savings.NewService(unreachable{}), nil, log.NewNopLogger(), Options{})

	w := do(t, server, "POST", "/api/convert", `{"fromCurrency":"USD","toCurrency":"EUR","amount":1}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load exchange rates")
}

func TestServer_QuoteBothTiers(t *testing.T) {
	server := staticServer(Options{})

	w := do(t, server, "GET", "/api/quote?amount=5.99", "")
	require.Equal(t, 200, w.Code)

	var body quoteBody
	decode(t, w, &body)
	require.Len(t, body.Quotes, 2)
	assert.Equal(t, 0.7, body.Quotes[0].Tier)
	assert.Equal(t, "$4.19", body.Quotes[0].PayableText)
	assert.Equal(t, "$1.80", body.Quotes[0].SavedText)
	assert.Equal(t, "$4.79", body.Quotes[1].PayableText)
	assert.Equal(t, "USD", body.Quotes[0].Target)
	assert.False(t, body.RatesUnavailable)
}

func TestServer_QuoteSingleTierWithTarget(t *testing.T) {
	server := staticServer(Options{})

	w := do(t, server, "POST", "/api/quote", `{"amount":"10","base":"usd","target":"EUR","tier":"80%"}`)
	require.Equal(t, 200, w.Code)

	var body quoteBody
	decode(t, w, &body)
	require.Len(t, body.Quotes, 1)
	assert.Equal(t, 0.8, body.Quotes[0].Tier)
	assert.Equal(t, "$8.00", body.Quotes[0].PayableText)
	assert.Equal(t, "$2.00", body.Quotes[0].SavedText)
	assert.Equal(t, "€7.36", body.Quotes[0].PayableInTargetText)
}

func TestServer_QuoteInvalidInput(t *testing.T) {
	server := staticServer(Options{})

	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   int
	}{
		{"unknown tier", "GET", "/api/quote?amount=10&tier=50", "", http.StatusBadRequest},
		{"unknown tier json", "POST", "/api/quote", `{"amount":10,"tier":0.5}`, http.StatusBadRequest},
		{"bad base", "GET", "/api/quote?amount=10&base=dollars", "", http.StatusBadRequest},
		{"bad target", "GET", "/api/quote?amount=10&target=1", "", http.StatusBadRequest},
		{"broken json", "POST", "/api/quote", `{"amount":`, http.StatusBadRequest},
		{"amount not numeric", "GET", "/api/quote?amount=abc&tier=70", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, server, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestServer_QuoteWithoutRates(t *testing.T) {
	server := NewServer(savings.NewService(unreachable{}), nil, log.NewNopLogger(), Options{})

	w := do(t, server, "GET", "/api/quote?amount=5.99&target=EUR&tier=0.7", "")
	require.Equal(t, 200, w.Code)

	var body quoteBody
	decode(t, w, &body)
	require.Len(t, body.Quotes, 1)
	assert.True(t, body.RatesUnavailable)
	assert.Equal(t, "$4.19", body.Quotes[0].PayableText)
	assert.Empty(t, body.Quotes[0].PayableInTargetText)
}

func TestServer_Rates(t *testing.T) {
	server := staticServer(Options{})

	w := do(t, server, "GET", "/api/rates/usd", "")
	require.Equal(t, 200, w.Code)
	var snap domain.Snapshot
	decode(t, w, &snap)
	assert.Equal(t, domain.USD, snap.Base)
	assert.Equal(t, domain.Rate(0.92), snap.Rates["EUR"])
	assert.Equal(t, "static", snap.Source)

	assert.Equal(t, http.StatusNotFound, do(t, server, "GET", "/api/rates/XXX", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, server, "GET", "/api/rates/12", "").Code)
}

func TestServer_RatesUnavailable(t *testing.T) {
	server := NewServer(savings.NewService(unreachable{}), nil, log.NewNopLogger(), Options{})

	w := do(t, server, "GET", "/api/rates/USD", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load exchange rates")
}

func TestServer_RefreshIsRateLimited(t *testing.T) {
	limiter := NewRateLimiter(1, time.Hour)
	server := staticServer(Options{RefreshLimiter: limiter})

	assert.Equal(t, 200, do(t, server, "GET", "/api/rates/USD?refresh=1", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, server, "GET", "/api/rates/USD?refresh=1", "").Code)
	// cached reads are never limited
	assert.Equal(t, 200, do(t, server, "GET", "/api/rates/USD", "").Code)
	// the page falls back to cached rates
	assert.Equal(t, 200, do(t, server, "GET", "/?refresh=1", "").Code)
}

func TestServer_Currencies(t *testing.T) {
	server := staticServer(Options{})

	var body struct {
		Currencies []domain.CurrencyInfo `json:"currencies"`
	}
	decode(t, do(t, server, "GET", "/api/currencies", ""), &body)
	assert.Len(t, body.Currencies, len(domain.AllCurrencies()))

	decode(t, do(t, server, "GET", "/api/currencies?featured=1&q=rupee", ""), &body)
	codes := []domain.Currency{}
	for _, c := range body.Currencies {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []domain.Currency{"INR", "PKR"}, codes)

	w := do(t, server, "GET", "/api/currencies?q=nothing-matches", "")
	assert.Equal(t, `{"currencies":[]}`, strings.TrimSpace(w.Body.String()))
}

func TestServer_Availability(t *testing.T) {
	server := staticServer(Options{})

	var all struct {
		Platforms []domain.Platform `json:"platforms"`
	}
	decode(t, do(t, server, "GET", "/api/availability", ""), &all)
	require.Len(t, all.Platforms, 3)
	assert.Equal(t, "Amazon & Prime Video", all.Platforms[0].Label)

	var one struct {
		Platform  domain.Platform `json:"platform"`
		Countries []struct {
			Name string `json:"name"`
			Flag string `json:"flag"`
		} `json:"countries"`
	}
	decode(t, do(t, server, "GET", "/api/availability?platform=iTunes&q=an", ""), &one)
	assert.Equal(t, "itunes", one.Platform.ID)
	require.Len(t, one.Countries, 2)
	assert.Equal(t, "Germany", one.Countries[0].Name)
	assert.Equal(t, "🇩🇪", one.Countries[0].Flag)
	assert.Equal(t, "Poland", one.Countries[1].Name)

	assert.Equal(t, http.StatusNotFound, do(t, server, "GET", "/api/availability?platform=netflix", "").Code)
}

func TestServer_Country(t *testing.T) {
	server := staticServer(Options{})

	var body struct {
		Country   string   `json:"country"`
		Flag      string   `json:"flag"`
		Platforms []string `json:"platforms"`
	}
	w := do(t, server, "GET", "/api/availability/countries/united%20kingdom", "")
	require.Equal(t, 200, w.Code)
	decode(t, w, &body)
	assert.Equal(t, "United Kingdom", body.Country)
	assert.Equal(t, "🇬🇧", body.Flag)
	assert.Equal(t, []string{"amazon", "itunes"}, body.Platforms)

	assert.Equal(t, http.StatusNotFound, do(t, server, "GET", "/api/availability/countries/Atlantis", "").Code)
}

func TestServer_Page(t *testing.T) {
	server := staticServer(Options{})

	w := do(t, server, "GET", "/?price=19.99&currency=GBP", "")
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Savings Calculator")
	assert.Contains(t, w.Body.String(), "$13.99")

	css := do(t, server, "GET", "/static/site.css", "")
	assert.Equal(t, 200, css.Code)
}

func TestServer_PageWithoutRates(t *testing.T) {
	server := NewServer(savings.NewService(unreachable{}), nil, log.NewNopLogger(), Options{})

	w := do(t, server, "GET", "/", "")
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load exchange rates. Please try again.")
}

func TestServer_HealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "probe_total", Help: "probe"})
	reg.MustRegister(counter)
	counter.Inc()

	server := staticServer(Options{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})

	w := do(t, server, "GET", "/healthz", "")
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"status":"ok"}`, strings.TrimSpace(w.Body.String()))

	w = do(t, server, "GET", "/metrics", "")
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "probe_total 1")

	// without a metrics handler the route is absent
	assert.Equal(t, http.StatusNotFound, do(t, staticServer(Options{}), "GET", "/metrics", "").Code)
}

func TestServer_CORS(t *testing.T) {
	server := staticServer(Options{CORSOrigins: []string{"https://example.com"}})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/currencies", nil)
	r.Header.Set("Origin", "https://example.com")
	server.ServeHTTP(w, r)

	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
