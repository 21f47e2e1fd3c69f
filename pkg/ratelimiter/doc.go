// Package ratelimiter provides token bucket rate limiting with pluggable storage backends.
//
// # Token Bucket Algorithm
//
// A bucket holds up to Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request consumes tokens. A request that does not fit is
// denied, and the bucket goes into debt by the missing amount, so clients that
// keep hammering an empty bucket stay limited until the debt is refilled. Debt
// is bounded by Capacity.
//
// # Core Types
//
// RateLimiter is the contract the HTTP middleware depends on:
//   - Allow(ctx, key): consume 1 token
//   - AllowN(ctx, key, n): consume n tokens
//
// Bucket implements RateLimiter on top of a Store and adds Status (inspect
// without consuming) and Reset.
//
// # Usage
//
//	store := ratelimiter.NewMemoryStore()
//
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       100,
//		RefillRate:     10,
//		RefillInterval: time.Second,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := limiter.Allow(ctx, clientIP)
//	if err != nil {
//		return err
//	}
//	if !result.Allowed() {
//		log.Printf("rate limited, retry after %v", result.RetryAfter())
//	}
//
// # Storage Backends
//
// MemoryStore keeps buckets in process memory. Start it (or pass Run to an
// errgroup) to remove buckets that have been idle longer than the stale threshold:
//
//	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(time.Minute))
//	g.Go(store.Run(ctx))
//
// RedisStore shares buckets across instances. Refill and consumption run in a
// single Lua script so concurrent instances never race:
//
//	client, err := redis.Connect(ctx, redisCfg)
//	store := ratelimiter.NewRedisStore(client)
//
// # Configuration
//
// Config carries env tags so it can be loaded with core/config:
//
//	RATE_LIMIT_CAPACITY        (default 100)
//	RATE_LIMIT_REFILL_RATE     (default 10)
//	RATE_LIMIT_REFILL_INTERVAL (default 1s)
//
// # Error Handling
//
//   - ErrInvalidConfig: invalid bucket parameters or missing store
//   - ErrInvalidTokenCount: AllowN with n <= 0
//   - ErrContextCancelled: context done before the store was asked
//   - ErrStoreUnavailable: wraps any error returned by the store
package ratelimiter
