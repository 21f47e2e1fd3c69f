package main

import "log/slog"

const (
	storeMemory = "memory"
	storeRedis  = "redis"
)

type appConfig struct {
	Env      string     `env:"APP_ENV" envDefault:"development"`
	Name     string     `env:"APP_NAME" envDefault:"tinyhttp"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	// RateLimitStore selects where token buckets live: memory or redis.
	RateLimitStore string `env:"RATE_LIMIT_STORE" envDefault:"memory"`

	// PostgresURL enables the database readiness check when set.
	PostgresURL string `env:"PG_CONN_URL"`
}

func (c appConfig) production() bool { return c.Env == "production" }
