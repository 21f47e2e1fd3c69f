package redis

var RetryDelay = retryDelay
