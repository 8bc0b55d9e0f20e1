package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tailor-backend/internal/metrics"
)

// Per-user summary cache keys
const (
	DashboardKeyFmt = "summary:%s:dashboard"
	BalancesKeyFmt  = "summary:%s:balances"
)

var client *redis.Client

// Options mirrors the redis section of the config.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Init connects to Redis. On failure the client stays nil and every cache
// call becomes a no-op.
func Init(opts Options) error {
	c := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		client = nil
		return err
	}
	client = c
	return nil
}

// GetClient returns the Redis client, or nil when Redis is unavailable.
func GetClient() *redis.Client {
	return client
}

func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.L().Debug("cache read failed", zap.String("component", "cache"), zap.String("key", key), zap.Error(err))
		}
		metrics.CacheResults.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheResults.WithLabelValues("hit").Inc()
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

func DashboardKey(userID string) string { return fmt.Sprintf(DashboardKeyFmt, userID) }

func BalancesKey(userID string) string { return fmt.Sprintf(BalancesKeyFmt, userID) }

// InvalidateUserSummaries clears every derived summary cached for a user.
// Called after any customer, order or payment mutation.
func InvalidateUserSummaries(ctx context.Context, userID string) {
	InvalidateKeys(ctx, DashboardKey(userID), BalancesKey(userID))
}

// Invalidator adapts the package-level cache to the services' hook.
type Invalidator struct{}

func (Invalidator) InvalidateUser(ctx context.Context, userID string) {
	InvalidateUserSummaries(ctx, userID)
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
