package ratesapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/robfig/cron/v3"

	"rental-savings/domain"
)

// Warmer keeps cached snapshots fresh on a cron schedule
type Warmer struct {
	cache   CachingService
	seed    []domain.Currency
	timeout time.Duration
	logger  log.Logger
	cron    *cron.Cron
}

// NewWarmer schedules a refresh of every known base, plus seed, on schedule.
func NewWarmer(schedule string, cache CachingService, seed []domain.Currency, timeout time.Duration, logger log.Logger) (*Warmer, error) {
	w := &Warmer{
		cache:   cache,
		seed:    seed,
		timeout: timeout,
		logger:  logger,
		cron:    cron.New(),
	}
	if _, err := w.cron.AddFunc(schedule, func() { w.RefreshAll(context.Background()) }); err != nil {
		return nil, fmt.Errorf("scheduling rate refresh %q: %w", schedule, err)
	}
	return w, nil
}

// Start runs the schedule in its own goroutine
func (w *Warmer) Start() {
	w.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
}

// RefreshAll refreshes every base once and returns how many failed.
// Failures are logged and the previous snapshots stay cached.
func (w *Warmer) RefreshAll(ctx context.Context) int {
	failed := 0
	for _, base := range w.bases() {
		rctx, cancel := context.WithTimeout(ctx, w.timeout)
		_, err := w.cache.Refresh(rctx, base)
		cancel()
		if err != nil {
			failed++
			level.Warn(w.logger).Log("msg", "scheduled refresh failed", "base", base, "err", err)
		}
	}
	return failed
}

func (w *Warmer) bases() []domain.Currency {
	seen := map[domain.Currency]bool{}
	var out []domain.Currency
	for _, b := range append(append([]domain.Currency{}, w.seed...), w.cache.Known()...) {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	return out
}
