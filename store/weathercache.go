package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/gateway"
	"github.com/redis/go-redis/v9"
)

// WeatherCache wraps a gateway.WeatherSource with a Redis read-through
// cache, keyed by the requested date range. A cache miss (or a Redis
// error) always falls through to the inner source rather than failing the
// request — weather lookups must still work if Redis is down.
type WeatherCache struct {
	inner  gateway.WeatherSource
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
}

// NewWeatherCache wires a Redis-backed cache in front of inner.
func NewWeatherCache(inner gateway.WeatherSource, addr, password string, db int, ttl time.Duration) (*WeatherCache, error) {
	if addr == "" {
		return nil, errors.New("store: redis address cannot be empty")
	}
	if db < 0 {
		return nil, errors.New("store: redis database number must be >= 0")
	}
	if ttl == 0 {
		ttl = 6 * time.Hour
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("store: connect to redis at %s: %w", addr, err)
	}

	return &WeatherCache{inner: inner, client: client, ttl: ttl}, nil
}

func (c *WeatherCache) key(start, end time.Time) string {
	return fmt.Sprintf("agroalloc:weather:%s:%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// GetRange implements gateway.WeatherSource.
func (c *WeatherCache) GetRange(start, end time.Time) ([]domain.WeatherDay, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	key := c.key(start, end)

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var days []domain.WeatherDay
		if jerr := json.Unmarshal(data, &days); jerr == nil {
			return days, nil
		}
		slog.Warn("store: discarding malformed cached weather range", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("store: redis get failed, falling back to inner weather source", "key", key, "error", err)
	}

	days, err := c.inner.GetRange(start, end)
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(days); merr == nil {
		if serr := c.client.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			slog.Warn("store: failed to cache weather range", "key", key, "error", serr)
		}
	}

	return days, nil
}

// Close closes the Redis client. Safe to call multiple times.
func (c *WeatherCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	if err != nil && err.Error() == "redis: client is closed" {
		return nil
	}
	return err
}

// Ping checks the Redis connection health.
func (c *WeatherCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
