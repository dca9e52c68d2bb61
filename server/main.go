package main

import (
	"context"
	"errors"
	nhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"rental-savings/config"
	"rental-savings/domain"
	"rental-savings/http"
	"rental-savings/landing"
	"rental-savings/ratesapi"
	"rental-savings/savings"
)

func main() {
	w := log.NewSyncWriter(os.Stderr)
	logger := log.NewLogfmtLogger(w)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	cfg, err := config.Load(log.With(logger, "component", "config"))
	if err != nil {
		level.Error(logger).Log("msg", "invalid configuration", "err", err)
		os.Exit(1)
	}
	logger = level.NewFilter(logger, cfg.Level())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var ratesService ratesapi.Service
	switch cfg.RatesProvider {
	case config.ProviderStatic:
		ratesService = ratesapi.NewStaticService()
	default:
		ratesService = ratesapi.NewService(cfg.RatesURL, cfg.RatesTimeout)
	}
	ratesService = ratesapi.NewLoggingService(log.With(logger, "component", "rates_rest"), ratesService)
	ratesService = ratesapi.NewInstrumentingService(ratesapi.NewMetrics(reg), ratesService)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		ratesService = ratesapi.NewRedisService(client, cfg.RatesCacheTTL, log.With(logger, "component", "rates_redis"), ratesService)
	}

	cache := ratesapi.NewCachingService(cfg.RatesCacheTTL, log.With(logger, "component", "rates_cache"), ratesService)
	ratesService = ratesapi.NewLoggingService(log.With(logger, "component", "rates_cache"), cache)

	savingsService := savings.NewService(ratesService)
	savingsService = savings.NewLoggingService(log.With(logger, "component", "savings"), savingsService)
	savingsService = savings.NewInstrumentingService(reg, savingsService)

	warmer, err := ratesapi.NewWarmer(cfg.RefreshSpec, cache, []domain.Currency{cfg.Base(), domain.USD}, cfg.RatesTimeout, log.With(logger, "component", "rates_warmer"))
	if err != nil {
		level.Error(logger).Log("msg", "invalid refresh schedule", "err", err)
		os.Exit(1)
	}
	if failed := warmer.RefreshAll(context.Background()); failed > 0 {
		level.Warn(logger).Log("msg", "starting without some rates", "failed", failed)
	}
	warmer.Start()

	limiter := http.NewRateLimiter(cfg.RefreshLimit, cfg.RefreshWindow)

	handler := http.NewServer(savingsService, landing.NewBuilder(savingsService), log.With(logger, "component", "http"), http.Options{
		DefaultBase:    cfg.Base(),
		RefreshLimiter: limiter,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSOrigins:    cfg.CORSOrigins,
	})

	srv := &nhttp.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		level.Info(logger).Log("msg", "listening", "addr", cfg.Addr, "provider", cfg.RatesProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nhttp.ErrServerClosed) {
			level.Error(logger).Log("msg", "server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	level.Info(logger).Log("msg", "shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		level.Error(logger).Log("msg", "shutdown failed", "err", err)
	}
	warmer.Stop()
}
