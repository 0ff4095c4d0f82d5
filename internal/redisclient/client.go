package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"perdami-store/internal/models"
)

const catalogKey = "catalog:visible-bundles"

type Client struct {
	rdb        *redis.Client
	catalogTTL time.Duration
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int, catalogTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, catalogTTL: catalogTTL}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCachedCatalog retrieves the cached visible-bundle catalog.
// Returns (nil, nil) on a cache miss.
func (c *Client) GetCachedCatalog(ctx context.Context) ([]models.ProductBundle, error) {
	data, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog cache read failed: %w", err)
	}

	var bundles []models.ProductBundle
	if err := json.Unmarshal(data, &bundles); err != nil {
		return nil, fmt.Errorf("catalog cache decode failed: %w", err)
	}
	return bundles, nil
}

// SetCachedCatalog stores the visible-bundle catalog with the configured TTL
func (c *Client) SetCachedCatalog(ctx context.Context, bundles []models.ProductBundle) error {
	data, err := json.Marshal(bundles)
	if err != nil {
		return fmt.Errorf("catalog cache encode failed: %w", err)
	}
	return c.rdb.Set(ctx, catalogKey, data, c.catalogTTL).Err()
}

// InvalidateCatalog drops the cached catalog after admin bundle mutations
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	return c.rdb.Del(ctx, catalogKey).Err()
}

// SetIdempotencyKey stores an idempotency key with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("idempotency:%s", key), value, ttl).Err()
}

// CheckIdempotencyKey checks if an idempotency key exists
func (c *Client) CheckIdempotencyKey(ctx context.Context, key string) (bool, error) {
	result, err := c.rdb.Exists(ctx, fmt.Sprintf("idempotency:%s", key)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}
