package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

const defaultConnectTimeout = 10 * time.Second

// NewClient creates a new Redis client and waits, with exponential backoff,
// until it answers a ping or connectTimeout elapses.
func NewClient(ctx context.Context, redisURL string, connectTimeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = connectTimeout

	ping := func() error {
		return client.Ping(ctx).Err()
	}

	if err := backoff.Retry(ping, backoff.WithContext(policy, ctx)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
