package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisAdapter implements DocumentCache with one Redis hash per namespace.
// Each document is a field of that hash, so a namespace can be inspected with HGETALL.
type RedisAdapter struct {
	client *redis.Client
}

// NewRedisAdapter creates a new Redis document cache.
// The redisURL should be in the format: redis://[:password@]host[:port][/database]
func NewRedisAdapter(redisURL string) (*RedisAdapter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	return NewRedisAdapterWithClient(redis.NewClient(opts)), nil
}

// NewRedisAdapterWithClient wraps an existing client, sharing its connection pool.
func NewRedisAdapterWithClient(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

// GetDocument reads one field of the namespace hash.
func (r *RedisAdapter) GetDocument(ctx context.Context, namespace, id string) ([]byte, error) {
	doc, err := r.client.HGet(ctx, namespace, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, namespace, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", namespace, id, err)
	}
	return doc, nil
}

// PutDocument overwrites one field of the namespace hash.
func (r *RedisAdapter) PutDocument(ctx context.Context, namespace, id string, doc []byte) error {
	if err := r.client.HSet(ctx, namespace, id, doc).Err(); err != nil {
		return fmt.Errorf("failed to put document %s/%s: %w", namespace, id, err)
	}
	return nil
}

// DeleteDocument removes one field of the namespace hash.
func (r *RedisAdapter) DeleteDocument(ctx context.Context, namespace, id string) error {
	if err := r.client.HDel(ctx, namespace, id).Err(); err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", namespace, id, err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (r *RedisAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisAdapter) Close() error {
	return r.client.Close()
}
