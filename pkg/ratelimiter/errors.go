package ratelimiter

import "errors"

// Package-level error definitions for rate limiter operations.
var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidTokenCount = errors.New("invalid token count")
	ErrContextCancelled  = errors.New("context cancelled")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// Memory store lifecycle
	ErrStoreAlreadyStarted  = errors.New("memory store already started")
	ErrStoreNotStarted      = errors.New("memory store not started")
	ErrCleanupNotConfigured = errors.New("cleanup interval not configured")
	ErrCleanupNotRunning    = errors.New("cleanup is configured but not running")
	ErrShutdownTimeout      = errors.New("shutdown timeout exceeded")
)
