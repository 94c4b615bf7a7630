package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRetryPolicy_SucceedsAfterFailures(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 5, Delay: time.Millisecond}
	calls := 0
	err := policy.Retry(context.Background(), "test", zap.NewNop(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_GivesUp(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, Delay: time.Millisecond}
	sentinel := errors.New("refused")
	calls := 0
	err := policy.Retry(context.Background(), "test", zap.NewNop(), func(context.Context) error {
		calls++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxRetries: 10, Delay: time.Hour}
	calls := 0
	err := policy.Retry(ctx, "test", zap.NewNop(), func(context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_ZeroRetriesMeansOneAttempt(t *testing.T) {
	calls := 0
	err := RetryPolicy{}.Retry(context.Background(), "test", zap.NewNop(), func(context.Context) error {
		calls++
		return errors.New("down")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNewPostgresPool_InvalidDSN(t *testing.T) {
	_, err := NewPostgresPool(context.Background(), PostgresConfig{DSN: "postgres://%zz"}, RetryPolicy{MaxRetries: 1}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(context.Background(), RedisConfig{Addr: "127.0.0.1:1"}, RetryPolicy{MaxRetries: 1}, zap.NewNop())
	assert.Error(t, err)
}
