// Package redis provides Redis client initialization and health checking.
//
// It wraps go-redis with URL validation, connection retries and a ping based
// healthcheck. The rate limiter's RedisStore runs on a client created here.
//
// # Key Features
//
//   - Connect: creates a client with exponential retry and verifies it with a ping
//   - Healthcheck: returns a check function for readiness endpoints
//
// # Configuration
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//	}
//
// Only redis:// and rediss:// (TLS) URLs are accepted.
//
// # Usage
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	store := ratelimiter.NewRedisStore(client)
//
//	r.Get("/ready", health.Readiness(log, redis.Healthcheck(client)))
//
// # Retry Logic
//
// Connect pings up to RetryAttempts times, waiting RetryInterval, then twice
// that, and so on. ConnectTimeout bounds the whole process and context
// cancellation aborts it early.
//
// # Error Handling
//
//   - ErrEmptyConnectionURL: no URL provided
//   - ErrFailedToParseRedisConnString: malformed URL or unsupported scheme
//   - ErrRedisNotReady: every ping failed
//   - ErrHealthcheckFailed: a healthcheck ping failed
package redis
