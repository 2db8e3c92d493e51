package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/solatis/formkeeper/internal/schema"
)

const keyPrefix = "formkeeper:form:"

// Redis stores JSON-encoded forms under formkeeper:form:<slug>.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// OpenRedis connects to redisURL (redis://[:password@]host:port/db) and
// verifies the connection.
func OpenRedis(ctx context.Context, redisURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedis(client, ttl), nil
}

func key(slug string) string { return keyPrefix + slug }

// Get returns the cached form or ErrMiss.
func (r *Redis) Get(ctx context.Context, slug string) (*schema.Form, error) {
	data, err := r.client.Get(ctx, key(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var form schema.Form
	if err := json.Unmarshal(data, &form); err != nil {
		// A stale encoding from an older release; drop it.
		_ = r.client.Del(ctx, key(slug)).Err()
		return nil, ErrMiss
	}
	return &form, nil
}

// Set caches form under its slug for the configured TTL.
func (r *Redis) Set(ctx context.Context, form *schema.Form) error {
	data, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}
	return r.client.Set(ctx, key(form.Slug), data, r.ttl).Err()
}

// Delete evicts the given slugs.
func (r *Redis) Delete(ctx context.Context, slugs ...string) error {
	if len(slugs) == 0 {
		return nil
	}
	keys := make([]string, len(slugs))
	for i, s := range slugs {
		keys[i] = key(s)
	}
	return r.client.Del(ctx, keys...).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
