// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github-repo-mirror/internal/config"
	"github-repo-mirror/internal/domain/ports/adapter"
	"github-repo-mirror/internal/infra/adapters/github"
	"github-repo-mirror/internal/infra/api"
	"github-repo-mirror/internal/infra/api/apiv1"
	pg "github-repo-mirror/internal/infra/db/postgres"
	"github-repo-mirror/internal/infra/lock"
	"github-repo-mirror/internal/infra/logging"
	"github-repo-mirror/internal/infra/metrics"
	red "github-repo-mirror/internal/infra/redis"
	"github-repo-mirror/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

const shutdownGrace = 10 * time.Second

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	health := map[string]api.Pinger{"postgres": pool}

	// ---- Redis (optional) ----
	var (
		locker     adapter.Locker
		syncGuards []apiv1.Option
	)
	if cfg.RedisEnabled() {
		redisClient, err := red.NewClient(ctx, &cfg.Redis, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		health["redis"] = redisClient

		locker = red.NewLocker(redisClient, cfg.Sync.LockRetries, cfg.Sync.LockRetryDelay)
		if cfg.RateLimit.SyncRequests > 0 {
			limiter := red.NewRateLimiter(redisClient)
			syncGuards = append(syncGuards, apiv1.WithSyncGuard(
				api.RateLimit(limiter, "sync", cfg.RateLimit.SyncRequests, cfg.RateLimit.Window, logger),
			))
		}
	} else {
		logger.Warn().Msg("redis.url not set; using in-process locks and no rate limiting")
		locker = lock.NewLocalLocker(cfg.Sync.LockRetries, cfg.Sync.LockRetryDelay)
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	repoRepo := pg.NewRepoRepo(pool)
	statsRepo := pg.NewStatisticsRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- GitHub ----
	gh, err := github.NewClient(github.Config{
		BaseURL:   cfg.GitHub.BaseURL,
		Timeout:   cfg.GitHub.Timeout,
		UserAgent: cfg.GitHub.UserAgent,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("github client")
	}

	// ---- Use cases ----
	syncUC := usecase.NewSyncUseCase(gh, userRepo, repoRepo, tm, locker, usecase.SyncOptions{
		LockTTL:      cfg.Sync.LockTTL,
		WriteTimeout: cfg.Sync.WriteTimeout,
	}, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, statsRepo, tm, logger)
	catalogUC := usecase.NewCatalogUseCase(userRepo, repoRepo, logger)

	// ---- Metrics ----
	metrics.MustRegister()
	prometheus.MustRegister(metrics.NewDBPoolCollector(pool))

	// ---- HTTP ----
	srv := apiv1.NewServer(syncUC, statsUC, catalogUC, logger, syncGuards...)
	router := apiv1.NewRouter(srv, apiv1.RouterConfig{
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Health:         api.Health(health, logger),
	}, logger)

	servers := []*http.Server{
		api.NewHTTPServer(fmt.Sprintf(":%d", cfg.HTTP.Port), router, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout),
	}
	if cfg.Metrics.Port > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		servers = append(servers, api.NewHTTPServer(
			fmt.Sprintf(":%d", cfg.Metrics.Port),
			api.Chain(mux, api.Recover(logger)),
			cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout,
		))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			logger.Info().Str("addr", s.Addr).Msg("http listening")
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", s.Addr, err)
			}
			return nil
		})
	}

	// ---- Graceful shutdown ----
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown requested")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		var errs []error
		for _, s := range servers {
			if err := s.Shutdown(sctx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", s.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("bye")
}
