package ratesapi

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"rental-savings/domain"
)

// CachingService a Service that also reports which bases it holds
type CachingService interface {
	Service
	// Known lists the cached base currencies, sorted.
	Known() []domain.Currency
}

// cachingService decorates a Service with a cache of snapshots.
// The cachingService is concurrency safe. Entries expire after ttl unless
// refreshed; a failed refresh leaves the previous entry in place.
type cachingService struct {
	// next the service being decorated with a cache
	next Service

	// cache base currency -> domain.Snapshot
	cache *gocache.Cache

	// ttl how long a snapshot is served without a successful refresh
	ttl time.Duration

	// seeding collapses concurrent cold lookups of one base into one call
	seeding singleflight.Group

	logger log.Logger
}

// NewCachingService returns a new caching Service
func NewCachingService(ttl time.Duration, logger log.Logger, s Service) CachingService {
	return &cachingService{
		next:   s,
		cache:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger,
	}
}

// ExchangeRates looks up rates and caches the results. A caller that gives up
// does not cancel the lookup for the others waiting on it.
func (s *cachingService) ExchangeRates(ctx context.Context, base domain.Currency) (domain.Snapshot, error) {
	if !base.Valid() {
		return domain.Snapshot{}, fmt.Errorf("%w: %q", ErrUnsupported, base)
	}
	if cached, ok := s.cache.Get(string(base)); ok {
		return cached.(domain.Snapshot), nil
	}

	ch := s.seeding.DoChan(string(base), func() (interface{}, error) {
		snap, err := s.next.ExchangeRates(context.WithoutCancel(ctx), base)
		if err != nil {
			return nil, err
		}
		s.cache.Set(string(base), snap, s.ttl)
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return domain.Snapshot{}, fmt.Errorf("seeding cache [%v]: %w", base, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Snapshot{}, fmt.Errorf("seeding cache [%v]: %w", base, res.Err)
		}
		if res.Shared {
			level.Debug(s.logger).Log("msg", "joined in-flight lookup", "base", base)
		}
		return res.Val.(domain.Snapshot), nil
	}
}

// Refresh fetches through the cache and stores whatever resolves last
func (s *cachingService) Refresh(ctx context.Context, base domain.Currency) (domain.Snapshot, error) {
	if !base.Valid() {
		return domain.Snapshot{}, fmt.Errorf("%w: %q", ErrUnsupported, base)
	}
	snap, err := s.next.Refresh(ctx, base)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("refresh [%v]: %w", base, err)
	}
	s.cache.Set(string(base), snap, s.ttl)
	return snap, nil
}

func (s *cachingService) Known() []domain.Currency {
	items := s.cache.Items()
	out := make([]domain.Currency, 0, len(items))
	for k := range items {
		out = append(out, domain.Currency(k))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
