// Command tinyhttp runs the HTTP server with the default middleware stack and
// a few sample routes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/tinyhttp/core/config"
	"github.com/dmitrymomot/tinyhttp/core/logger"
	"github.com/dmitrymomot/tinyhttp/core/server"
	"github.com/dmitrymomot/tinyhttp/integration/database/pg"
	"github.com/dmitrymomot/tinyhttp/integration/database/redis"
	"github.com/dmitrymomot/tinyhttp/middleware"
	"github.com/dmitrymomot/tinyhttp/pkg/ratelimiter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app appConfig
	if err := config.Load(&app); err != nil {
		return err
	}

	log := newLogger(app)

	var srvCfg server.Config
	if err := config.Load(&srvCfg); err != nil {
		return err
	}
	var rlCfg ratelimiter.Config
	if err := config.Load(&rlCfg); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	var checks []func(context.Context) error

	var store ratelimiter.Store
	switch app.RateLimitStore {
	case storeRedis:
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()

		store = ratelimiter.NewRedisStore(client)
		checks = append(checks, redis.Healthcheck(client))
	case storeMemory:
		mem := ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreLogger(log))
		g.Go(mem.Run(ctx))

		store = mem
		checks = append(checks, mem.Healthcheck)
	default:
		return fmt.Errorf("unknown RATE_LIMIT_STORE %q", app.RateLimitStore)
	}

	if app.PostgresURL != "" {
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		checks = append(checks, pg.Healthcheck(pool))
	}

	limiter, err := ratelimiter.NewBucket(store, rlCfg)
	if err != nil {
		return err
	}

	security := middleware.BalancedSecurity
	if !app.production() {
		security = middleware.DevelopmentSecurity
	}

	srv, err := server.NewFromConfig(srvCfg,
		server.WithLogger(log),
		server.WithMiddleware(
			middleware.RequestID(),
			middleware.ClientIP(),
			middleware.LoggingWithLogger(log),
			middleware.RateLimit(middleware.RateLimitConfig{
				Limiter:    limiter,
				SetHeaders: true,
				Logger:     log,
			}),
			middleware.SecurityHeadersWithConfig(security),
			middleware.BodyLimit(),
		),
	)
	if err != nil {
		return err
	}

	g.Go(srv.Run(ctx, newRouter(log, checks...)))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped", logger.Error(err))
		return err
	}
	return nil
}

func newLogger(app appConfig) *slog.Logger {
	opts := []logger.Option{logger.WithContextExtractors(middleware.RequestIDExtractor)}
	if app.production() {
		opts = append(opts, logger.WithProduction(app.Name))
	} else {
		opts = append(opts, logger.WithDevelopment(app.Name))
	}
	// explicit LOG_LEVEL wins over the environment preset
	if _, ok := os.LookupEnv("LOG_LEVEL"); ok {
		opts = append(opts, logger.WithLevel(app.LogLevel))
	}
	return logger.New(opts...)
}
