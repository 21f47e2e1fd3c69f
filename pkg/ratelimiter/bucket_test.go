package ratelimiter_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tinyhttp/pkg/ratelimiter"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ConsumeTokens(ctx context.Context, key string, tokens int, config ratelimiter.Config) (int, time.Time, error) {
	args := m.Called(ctx, key, tokens, config)
	return args.Int(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockStore) Reset(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  ratelimiter.Config
		wantErr bool
	}{
		{"valid", ratelimiter.Config{Capacity: 10, RefillRate: 1, RefillInterval: time.Second}, false},
		{"zero capacity", ratelimiter.Config{RefillRate: 1, RefillInterval: time.Second}, true},
		{"negative refill rate", ratelimiter.Config{Capacity: 1, RefillRate: -1, RefillInterval: time.Second}, true},
		{"zero interval", ratelimiter.Config{Capacity: 1, RefillRate: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewBucket(t *testing.T) {
	t.Parallel()

	_, err := ratelimiter.NewBucket(nil, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second})
	require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)

	_, err = ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{})
	require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestBucket_Allow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	config := ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Hour}

	t.Run("allows up to capacity", func(t *testing.T) {
		t.Parallel()

		tb, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), config)
		require.NoError(t, err)

		for want := 2; want >= 0; want-- {
			result, err := tb.Allow(ctx, "ip")
			require.NoError(t, err)
			assert.True(t, result.Allowed())
			assert.Equal(t, want, result.Remaining)
			assert.Equal(t, 3, result.Limit)
			assert.Zero(t, result.RetryAfter())
		}

		result, err := tb.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.False(t, result.Allowed())
		assert.Positive(t, result.RetryAfter())
		assert.LessOrEqual(t, result.RetryAfter(), time.Hour)

		other, err := tb.Allow(ctx, "other")
		require.NoError(t, err)
		assert.True(t, other.Allowed())
	})

	t.Run("allowN rejects non-positive counts", func(t *testing.T) {
		t.Parallel()

		tb, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), config)
		require.NoError(t, err)

		_, err = tb.AllowN(ctx, "ip", 0)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
		_, err = tb.AllowN(ctx, "ip", -1)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
	})

	t.Run("status does not consume", func(t *testing.T) {
		t.Parallel()

		tb, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), config)
		require.NoError(t, err)

		_, err = tb.AllowN(ctx, "ip", 2)
		require.NoError(t, err)

		for range 3 {
			status, err := tb.Status(ctx, "ip")
			require.NoError(t, err)
			assert.Equal(t, 1, status.Remaining)
		}
	})

	t.Run("reset refills", func(t *testing.T) {
		t.Parallel()

		tb, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), config)
		require.NoError(t, err)

		_, err = tb.AllowN(ctx, "ip", 3)
		require.NoError(t, err)
		require.NoError(t, tb.Reset(ctx, "ip"))

		status, err := tb.Status(ctx, "ip")
		require.NoError(t, err)
		assert.Equal(t, 3, status.Remaining)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		tb, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), config)
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err = tb.Allow(cctx, "ip")
		assert.ErrorIs(t, err, ratelimiter.ErrContextCancelled)
		assert.ErrorIs(t, tb.Reset(cctx, "ip"), ratelimiter.ErrContextCancelled)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		boom := errors.New("connection refused")
		store.On("ConsumeTokens", mock.Anything, "ip", 1, config).Return(0, time.Time{}, boom)

		tb, err := ratelimiter.NewBucket(store, config)
		require.NoError(t, err)

		_, err = tb.Allow(ctx, "ip")
		assert.ErrorIs(t, err, ratelimiter.ErrStoreUnavailable)
		assert.ErrorIs(t, err, boom)
		store.AssertExpectations(t)
	})
}

func TestBucket_ConcurrentSafety(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrency test in short mode")
	}
	t.Parallel()

	ctx := context.Background()
	config := ratelimiter.Config{Capacity: 1000, RefillRate: 100, RefillInterval: time.Hour}

	tb, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), config)
	require.NoError(t, err)

	var allowed, denied atomic.Int64
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				result, err := tb.Allow(ctx, "shared")
				if !assert.NoError(t, err) {
					return
				}
				if result.Allowed() {
					allowed.Add(1)
				} else {
					denied.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(2000), allowed.Load()+denied.Load())
	assert.Equal(t, int64(config.Capacity), allowed.Load())
}
