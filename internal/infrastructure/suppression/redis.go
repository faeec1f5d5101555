package suppression

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rosterbot/internal/ports/output"
)

var _ output.SuppressionLedger = (*RedisLedger)(nil)

const redisKeyPrefix = "rosterbot:suppress:"

// RedisLedger shares the ledger between bot instances. Redis expiry plays
// the role of the sweep.
type RedisLedger struct {
	rdb     *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisLedger connects to dsn (redis://...) and checks the connection.
// Every command is bounded by timeout.
func NewRedisLedger(dsn string, ttl, timeout time.Duration) (*RedisLedger, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	opts.PoolSize = 5
	opts.ConnMaxIdleTime = 5 * time.Minute

	rdb := redis.NewClient(opts)
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisLedger{rdb: rdb, ttl: ttl, timeout: timeout}, nil
}

func (l *RedisLedger) Mark(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.rdb.Set(ctx, redisKeyPrefix+key, 1, l.ttl).Err()
}

func (l *RedisLedger) Consume(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	n, err := l.rdb.Del(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *RedisLedger) Close() error {
	return l.rdb.Close()
}

func (l *RedisLedger) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.rdb.Ping(ctx).Err()
}
