package ratesapi

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/redis/go-redis/v9"

	"rental-savings/domain"
)

const redisKeyPrefix = "rates:"

// redisService shares snapshots between instances through Redis.
// Redis problems are logged and never fail a lookup on their own.
type redisService struct {
	next   Service
	client redis.Cmdable
	ttl    time.Duration
	logger log.Logger
}

// NewRedisService decorates s with a Redis-backed snapshot cache
func NewRedisService(client redis.Cmdable, ttl time.Duration, logger log.Logger, s Service) Service {
	return &redisService{
		next:   s,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *redisService) ExchangeRates(ctx context.Context, base domain.Currency) (domain.Snapshot, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+string(base)).Bytes()
	switch {
	case err == nil:
		var snap domain.Snapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			return snap, nil
		}
		level.Warn(s.logger).Log("msg", "discarding corrupt cached rates", "base", base)
	case !errors.Is(err, redis.Nil):
		level.Warn(s.logger).Log("msg", "redis get failed", "base", base, "err", err)
	}

	snap, err := s.next.ExchangeRates(ctx, base)
	if err != nil {
		return domain.Snapshot{}, err
	}
	s.store(ctx, snap)
	return snap, nil
}

func (s *redisService) Refresh(ctx context.Context, base domain.Currency) (domain.Snapshot, error) {
	snap, err := s.next.Refresh(ctx, base)
	if err != nil {
		return domain.Snapshot{}, err
	}
	s.store(ctx, snap)
	return snap, nil
}

func (s *redisService) store(ctx context.Context, snap domain.Snapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		level.Warn(s.logger).Log("msg", "encoding rates", "base", snap.Base, "err", err)
		return
	}
	if err := s.client.Set(ctx, redisKeyPrefix+string(snap.Base), raw, s.ttl).Err(); err != nil {
		level.Warn(s.logger).Log("msg", "redis set failed", "base", snap.Base, "err", err)
	}
}
