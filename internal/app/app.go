// Package app assembles the record store, balance engine and HTTP surface
// from a Config. Both binaries build on it.
package app

import (
	"context"
	"fmt"
	"net/http"

	"account-balance-service/config"
	httpHandler "account-balance-service/internal/adapter/http/handler"
	"account-balance-service/internal/adapter/http/middleware"
	memStorage "account-balance-service/internal/adapter/storage/memory"
	pgStorage "account-balance-service/internal/adapter/storage/postgres"
	redisStorage "account-balance-service/internal/adapter/storage/redis"
	"account-balance-service/internal/core/ports"
	"account-balance-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// App owns every long-lived dependency. Close releases them in reverse order.
type App struct {
	cfg      *config.Config
	log      zerolog.Logger
	accounts ports.AccountService
	tokens   ports.TokenService
	limiter  ports.RateLimiter
	checkers []ports.HealthChecker
	closers  []func()
}

// New connects the configured backends. On error everything opened so far
// is closed again.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		a.checkers = append(a.checkers, redisStorage.NewHealthCheck(rdb))
		if cfg.RateLimit.Enabled {
			a.limiter = redisStorage.NewRateLimitStore(rdb)
		}
	} else if cfg.RateLimit.Enabled {
		log.Warn().Msg("rate limiting needs redis.enabled, continuing without it")
	}

	policy := service.RetryPolicy{
		MaxAttempts:     cfg.Batch.MaxAttempts,
		InitialInterval: cfg.Batch.InitialBackoff,
		MaxInterval:     cfg.Batch.MaxBackoff,
	}
	a.accounts = service.NewAccountService(store, policy, cfg.Batch.MaxOperations, log)

	if cfg.Auth.Enabled() {
		a.tokens = service.NewJWTTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) (ports.RecordStore, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverMemory:
		store := memStorage.NewStore()
		a.checkers = append(a.checkers, store)
		a.log.Warn().Msg("using in-memory record store, balances are lost on exit")
		return store, nil

	case config.DriverPostgres:
		pool, err := pgStorage.NewPool(ctx, a.cfg.Database, a.log)
		if err != nil {
			return nil, fmt.Errorf("connecting postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.checkers = append(a.checkers, pgStorage.NewHealthCheck(pool))

		if a.cfg.Database.AutoMigrate {
			if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
				return nil, err
			}
			a.log.Info().Msg("database schema ensured")
		}
		return pgStorage.NewPoolRecordStore(pool, a.log), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", a.cfg.Storage.Driver)
}

// Accounts returns the balance engine.
func (a *App) Accounts() ports.AccountService {
	return a.accounts
}

// Tokens returns the token service, or nil when auth is disabled.
func (a *App) Tokens() ports.TokenService {
	return a.tokens
}

// Handler builds the HTTP router.
func (a *App) Handler() http.Handler {
	gin.SetMode(a.cfg.Server.Mode)
	return httpHandler.SetupRouter(httpHandler.RouterDeps{
		AccountSvc:  a.accounts,
		TokenSvc:    a.tokens,
		RateLimiter: a.limiter,
		RateLimit: middleware.RateLimitRule{
			Limit:  a.cfg.RateLimit.Requests,
			Window: a.cfg.RateLimit.Window,
		},
		HealthCheckers: a.checkers,
		BaseURL:        a.cfg.Server.BaseURL,
		Logger:         a.log,
	})
}

// Close releases backends in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
