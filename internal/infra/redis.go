package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisConfig describes the client used by the rate limiter and the audit
// job queue.
type RedisConfig struct {
	URL string
	// BlockingWorkers is how many goroutines sit in BRPOP. Each one holds a
	// connection for up to the pop timeout, so the pool is sized above it.
	BlockingWorkers int
}

// NewRedis opens the client and pings it once.
func NewRedis(cfg RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	if minPool := cfg.BlockingWorkers + 10; opts.PoolSize < minPool {
		opts.PoolSize = minPool
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	log.Info().Str("addr", opts.Addr).Int("pool_size", opts.PoolSize).Msg("redis connected")
	return rdb, nil
}
