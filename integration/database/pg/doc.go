// Package pg provides PostgreSQL connection pool management and health checking.
//
// It wraps pgxpool with application level retries, pool tuning from the
// environment and a ping based healthcheck suitable for readiness endpoints.
//
// # Configuration
//
//	type Config struct {
//		ConnectionString  string        `env:"PG_CONN_URL,required"`
//		MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
//		MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
//		HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
//		MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
//		MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`
//		RetryAttempts     int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval     time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`
//	}
//
// MaxIdleConns maps to the pool's minimum connection count and never exceeds MaxOpenConns.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	r.Get("/ready", health.Readiness(log, pg.Healthcheck(pool)))
//
// # Transactions
//
// WithTx and TxFromContext carry a pgx.Tx through the request context so a
// handler can open a transaction and repositories can join it:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx)
//
//	ctx = pg.WithTx(ctx, tx)
//	if err := repo.CreateOrder(ctx, order); err != nil {
//		return err
//	}
//	return tx.Commit(ctx)
//
// # Error Handling
//
//   - ErrEmptyConnectionString: PG_CONN_URL not set
//   - ErrFailedToParseDBConfig: malformed connection string
//   - ErrFailedToOpenDBConnection: the pool could not be created or never answered a ping
//   - ErrHealthcheckFailed: a healthcheck ping failed
//
// IsNotFoundError and IsTxClosedError classify common pgx errors.
package pg
