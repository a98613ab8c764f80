package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/pkg/models"
)

// Cache provides caching functionality using Redis
type Cache struct {
	client *redis.Client
}

// NewCache creates a new cache instance
func NewCache(host string, port int, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// User View Cache Operations

// SetUserView caches a user's public view
func (c *Cache) SetUserView(ctx context.Context, view models.UserView, ttl time.Duration) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal user view: %w", err)
	}

	key := fmt.Sprintf("user:%s", view.ID)
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetUserView retrieves a cached user view. A nil result means cache miss.
func (c *Cache) GetUserView(ctx context.Context, userID string) (*models.UserView, error) {
	key := fmt.Sprintf("user:%s", userID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get user view from cache: %w", err)
	}

	var view models.UserView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user view: %w", err)
	}

	return &view, nil
}

// InvalidateUser removes a user's cached view. Called after any credit
// mutation so stale balances are never served.
func (c *Cache) InvalidateUser(ctx context.Context, userID string) error {
	key := fmt.Sprintf("user:%s", userID)
	return c.client.Del(ctx, key).Err()
}
