package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tinyhttp/integration/database/redis"
)

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{name: "empty", url: "", wantErr: redis.ErrEmptyConnectionURL},
		{name: "wrong scheme", url: "http://localhost:6379/0", wantErr: redis.ErrFailedToParseRedisConnString},
		{name: "bad database", url: "redis://localhost:6379/abc", wantErr: redis.ErrFailedToParseRedisConnString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: tt.url})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, client)
		})
	}
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	cfg := redis.Config{
		ConnectionURL:  "redis://127.0.0.1:1/0",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: 2 * time.Second,
	}

	client, err := redis.Connect(context.Background(), cfg)
	require.ErrorIs(t, err, redis.ErrRedisNotReady)
	assert.Nil(t, client)
}

func TestConnect_Live(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := redis.Connect(ctx, redis.Config{ConnectionURL: url, RetryAttempts: 1, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, redis.Healthcheck(client)(ctx))
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    time.Duration
		attempt int
		want    time.Duration
	}{
		{name: "first attempt uses base", base: time.Second, attempt: 0, want: time.Second},
		{name: "doubles per attempt", base: time.Second, attempt: 3, want: 8 * time.Second},
		{name: "capped", base: time.Second, attempt: 10, want: redis.MaxRetryDelay},
		{name: "large attempt does not overflow", base: 5 * time.Second, attempt: 200, want: redis.MaxRetryDelay},
		{name: "base above cap kept", base: time.Minute, attempt: 4, want: time.Minute},
		{name: "zero base", base: 0, attempt: 5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, redis.RetryDelay(tt.base, tt.attempt))
		})
	}
}
