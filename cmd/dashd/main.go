package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/workpulse/dashd/internal/aggregate"
	"github.com/workpulse/dashd/internal/api"
	"github.com/workpulse/dashd/internal/cache"
	"github.com/workpulse/dashd/internal/config"
	"github.com/workpulse/dashd/internal/domain"
	"github.com/workpulse/dashd/internal/health"
	"github.com/workpulse/dashd/internal/insight"
	"github.com/workpulse/dashd/internal/metrics"
	"github.com/workpulse/dashd/internal/peer"
	"github.com/workpulse/dashd/internal/source"
	"github.com/workpulse/dashd/internal/store"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("listen_addr", cfg.ListenAddr).
		Str("store_path", cfg.StorePath).
		Bool("peer_enabled", cfg.PeerEnabled()).
		Msg("starting workpulse dashboard daemon")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	collectors := metrics.New()
	checker := health.NewChecker(logger)

	// Local activity store. A missing or broken database is not fatal:
	// the chain degrades to the peer and fallback tiers.
	var localStore *store.Store
	localStore, err = store.New(cfg.StorePath, logger)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.StorePath).Msg("local store unavailable (non-fatal)")
		localStore = nil
	} else {
		checker.Register("store", health.StoreCheck(localStore))
	}

	// Peer desktop process (optional).
	var peerSource source.PeerSource
	if cfg.PeerEnabled() {
		peerClient := peer.NewClient(cfg.PeerBaseURL, logger)
		peerSource = peerClient
		checker.Register("peer", health.PeerCheck(peerClient))
	} else {
		logger.Info().Msg("peer not configured — serving from local store only")
	}

	var agg *aggregate.Aggregator
	if localStore != nil {
		agg = aggregate.New(localStore, cfg.StoreQueryTimeout, logger)
	}

	chain := source.New(
		peerSource,
		agg,
		cache.New[string, domain.Snapshot](cfg.ActivityCacheTTL, cfg.CacheCapacity),
		cache.New[string, []domain.ActivityRecord](cfg.MetricsCacheTTL, cfg.CacheCapacity),
		source.Config{
			PeerBudget:  cfg.PeerTimeout,
			RangeBudget: cfg.StoreRangeTimeout,
		},
		collectors,
		logger,
	)

	handlers := api.NewHandlers(chain, insight.New(time.Local), checker, cfg, time.Local, logger)
	server := api.NewServer(api.ServerConfig{
		ListenAddr:  cfg.ListenAddr,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit: api.RateLimitConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		},
	}, handlers, collectors, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("api server error")
		}
	}()

	// Prime the readiness cache so the first probe is cheap.
	checker.RunAll(ctx)

	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	cancel()

	if err := server.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("api server shutdown error")
	}

	if localStore != nil {
		if err := localStore.Close(); err != nil {
			logger.Error().Err(err).Msg("store close error")
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info().Msg("all goroutines stopped")
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("forced shutdown after timeout")
	}

	logger.Info().Msg("dashboard daemon stopped")
}
