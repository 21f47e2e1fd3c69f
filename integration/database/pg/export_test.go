package pg

var RetryDelay = retryDelay
