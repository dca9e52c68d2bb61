package ratesapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"rental-savings/domain"
)

const ApiUrlBase = "https://api.exchangerate-api.com/v4/latest"

// ErrUnsupported the rate source has no rates for the requested base
var ErrUnsupported = errors.New("unsupported base currency")

// Service looks up exchange rates for a base currency
type Service interface {
	// ExchangeRates may answer from a cache.
	ExchangeRates(ctx context.Context, base domain.Currency) (domain.Snapshot, error)
	// Refresh always goes to the source of truth.
	Refresh(ctx context.Context, base domain.Currency) (domain.Snapshot, error)
}

// service exchangerate-api.com client
type service struct {
	// url base API url
	url string

	// client for HTTP requests
	client http.Client
}

// NewService constructs a valid exchangerate-api Service. An empty url uses
// the public endpoint.
func NewService(url string, timeout time.Duration) Service {
	if url == "" {
		url = ApiUrlBase
	}
	return &service{
		url: strings.TrimSuffix(url, "/"),
		client: http.Client{
			Timeout: timeout,
		},
	}
}

// ExchangeRates loads the current rates for a base currency.
func (s *service) ExchangeRates(ctx context.Context, base domain.Currency) (domain.Snapshot, error) {
	type Response struct {
		Base            string             `json:"base"`
		Date            string             `json:"date"`
		TimeLastUpdated int64              `json:"time_last_updated"`
		Rates           map[string]float64 `json:"rates"`
	}

	if !base.Valid() {
		return domain.Snapshot{}, fmt.Errorf("%w: %q", ErrUnsupported, base)
	}
	url := fmt.Sprintf("%v/%v", s.url, base)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("building http request: %w", err)
	}
	httpResponse, err := s.client.Do(request)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("http get: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode == http.StatusNotFound {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrUnsupported, base)
	}
	if httpResponse.StatusCode != http.StatusOK {
		return domain.Snapshot{}, fmt.Errorf("unexpected status %d", httpResponse.StatusCode)
	}

	var response Response
	bytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("reading json: %w", err)
	}

	err = json.Unmarshal(bytes, &response)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("decoding json: %w", err)
	}
	if len(response.Rates) == 0 {
		return domain.Snapshot{}, fmt.Errorf("no rates for %v", base)
	}

	rates := domain.Rates{}
	for k, v := range response.Rates {
		if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		rates[domain.Currency(k)] = domain.Rate(v)
	}
	rates[base] = 1

	updated := time.Now().UTC()
	if response.TimeLastUpdated > 0 {
		updated = time.Unix(response.TimeLastUpdated, 0).UTC()
	}

	return domain.Snapshot{
		Base:      base,
		Rates:     rates,
		UpdatedAt: updated,
		Source:    "exchangerate-api",
	}, nil
}

// Refresh is the same as ExchangeRates; there is nothing cached here.
func (s *service) Refresh(ctx context.Context, base domain.Currency) (domain.Snapshot, error) {
	return s.ExchangeRates(ctx, base)
}
