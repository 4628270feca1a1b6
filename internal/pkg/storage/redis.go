package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Vodeneev/valuebet/internal/pkg/models"
)

// RedisRatingsCache keeps fetched xG tables between runs so the ratings site
// is hit at most once per TTL.
type RedisRatingsCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisRatingsCache(addr, password string, db int, ttl time.Duration) (*RedisRatingsCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRatingsCache{client: client, ttl: ttl, prefix: "xg_table"}, nil
}

func (c *RedisRatingsCache) key(venue string) string {
	return fmt.Sprintf("%s:%s", c.prefix, venue)
}

// GetTable returns the cached table for venue; ok is false on a miss.
func (c *RedisRatingsCache) GetTable(ctx context.Context, venue string) (models.RatingTable, bool, error) {
	raw, err := c.client.Get(ctx, c.key(venue)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", c.key(venue), err)
	}
	var table models.RatingTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", c.key(venue), err)
	}
	return table, true, nil
}

func (c *RedisRatingsCache) SetTable(ctx context.Context, venue string, table models.RatingTable) error {
	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal rating table: %w", err)
	}
	return c.client.Set(ctx, c.key(venue), payload, c.ttl).Err()
}

func (c *RedisRatingsCache) Close() error {
	return c.client.Close()
}
