package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectOptions defines the Redis client and its connection retry policy.
type ConnectOptions struct {
	Addr           string        // ex: "localhost:6379"
	Password       string        // optional
	DB             int           // Redis DB number
	DialTimeout    time.Duration // per-dial timeout
	ConnectTimeout time.Duration // total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // initial wait between retries, doubled after each attempt
	MaxWait        time.Duration // cap on the wait between retries
	PingTimeout    time.Duration // timeout for each ping attempt
}

// DefaultConnectOptions returns the retry policy used by the server.
func DefaultConnectOptions(addr string) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		DialTimeout:    5 * time.Second,
		ConnectTimeout: 30 * time.Second,
		RetryInterval:  time.Second,
		MaxWait:        10 * time.Second,
		PingTimeout:    2 * time.Second,
	}
}

func (o ConnectOptions) validate() error {
	switch {
	case o.Addr == "":
		return fmt.Errorf("redis: Addr is required")
	case o.ConnectTimeout <= 0:
		return fmt.Errorf("redis: ConnectTimeout must be > 0, got %v", o.ConnectTimeout)
	case o.RetryInterval <= 0:
		return fmt.Errorf("redis: RetryInterval must be > 0, got %v", o.RetryInterval)
	case o.MaxWait <= 0:
		return fmt.Errorf("redis: MaxWait must be > 0, got %v", o.MaxWait)
	case o.PingTimeout <= 0:
		return fmt.Errorf("redis: PingTimeout must be > 0, got %v", o.PingTimeout)
	}
	return nil
}

// Connect creates a Redis client and pings it until it answers or
// ConnectTimeout elapses, backing off exponentially between attempts.
func Connect(ctx context.Context, opts ConnectOptions, logger *slog.Logger) (*redis.Client, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	logger.Info("connecting to redis",
		slog.String("addr", opts.Addr),
		slog.Duration("timeout", opts.ConnectTimeout),
	)

	start := time.Now()
	wait := opts.RetryInterval
	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			logger.Info("connected to redis",
				slog.String("addr", opts.Addr),
				slog.Int("attempts", attempt),
				slog.Duration("elapsed", time.Since(start)),
			)
			return client, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			client.Close()
			logger.Error("redis unavailable",
				slog.String("addr", opts.Addr),
				slog.Int("attempts", attempt),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("redis: unavailable at %s after %d attempts: %w", opts.Addr, attempt, err)

		case <-timer.C:
			logger.Warn("redis connection failed, retrying",
				slog.String("addr", opts.Addr),
				slog.Int("attempt", attempt),
				slog.Duration("next_retry_in", wait),
				slog.String("error", err.Error()),
			)
			wait = min(wait*2, opts.MaxWait)
		}
	}
}
