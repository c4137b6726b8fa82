// Package main wires the taskhive auth server: configuration, stores,
// security services, HTTP transport, and lifecycle. Business logic lives in
// the internal service packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"taskhive/internal/audit"
	"taskhive/internal/auth/handler"
	"taskhive/internal/auth/metrics"
	"taskhive/internal/auth/service"
	credentialStore "taskhive/internal/auth/store/credentials"
	userStore "taskhive/internal/auth/store/user"
	"taskhive/internal/lockout"
	"taskhive/internal/passhistory"
	"taskhive/internal/platform/config"
	"taskhive/internal/platform/health"
	"taskhive/internal/platform/logger"
	"taskhive/internal/platform/middleware"
	platformredis "taskhive/internal/platform/redis"
	"taskhive/internal/ratelimit"
	"taskhive/internal/token"
)

const poolStatsInterval = 15 * time.Second

func environment() string {
	if env := os.Getenv("TASKHIVE_ENV"); env != "" {
		return env
	}
	return "dev"
}

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var (
		users       service.UserStore
		credentials service.CredentialStore
		lockStore   lockout.Store
		histStore   passhistory.Store
		rateStore   ratelimit.Store
	)
	if redisClient != nil {
		log.Info("using redis-backed stores")
		users = userStore.NewRedisStore(redisClient)
		credentials = credentialStore.NewRedisStore(redisClient)
		lockStore = lockout.NewRedisStore(redisClient)
		histStore = passhistory.NewRedisStore(redisClient)
		rateStore = ratelimit.NewRedisStore(redisClient)
	} else {
		log.Warn("REDIS_URL not set, using in-memory stores; state is lost on restart")
		users = userStore.NewInMemoryStore()
		credentials = credentialStore.NewInMemoryStore()
		lockStore = lockout.NewInMemoryStore()
		histStore = passhistory.NewInMemoryStore()
		rateStore = ratelimit.NewInMemoryStore()
	}

	tracker, err := lockout.New(lockStore, cfg.Security.LockoutThreshold, cfg.Security.LockoutWindow, lockout.WithLogger(log))
	if err != nil {
		log.Error("lockout tracker init failed", "error", err)
		os.Exit(1)
	}
	guard, err := passhistory.New(histStore, cfg.Security.PasswordHistoryDepth, cfg.Security.PasswordHistoryTTL)
	if err != nil {
		log.Error("password history guard init failed", "error", err)
		os.Exit(1)
	}
	limiter, err := ratelimit.New(rateStore, ratelimit.WithLogger(log))
	if err != nil {
		log.Error("rate limiter init failed", "error", err)
		os.Exit(1)
	}

	auditPublisher := audit.NewPublisher(
		audit.NewInMemoryStore(),
		audit.WithAsyncBuffer(64),
		audit.WithPublisherLogger(log),
	)
	defer auditPublisher.Close()

	authService := service.New(
		users,
		credentials,
		token.New(cfg.Security.SigningSecret, cfg.Security.AccessTokenTTL, cfg.Security.RefreshTokenTTL),
		tracker,
		guard,
		limiter,
		cfg.Security,
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(metrics.New()),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))

	handler.New(authService, log).Register(r)
	r.Handle("/metrics", promhttp.Handler())

	healthHandler := health.New(environment())
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(checkCtx)
		})
	}
	healthHandler.Register(r)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if redisClient != nil {
		g.Go(func() error {
			ticker := time.NewTicker(poolStatsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					redisClient.RecordPoolStats()
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
