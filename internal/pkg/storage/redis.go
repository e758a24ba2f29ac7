package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis stores blobs as plain string values.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis wraps an established client. The client is owned by the caller.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Put stores data under key without expiry.
func (r *Redis) Put(ctx context.Context, key string, data []byte, _ string) error {
	return r.client.Set(ctx, r.prefix+key, data, 0).Err()
}

// Get returns the blob stored under key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrObjectNotFound
	}
	return data, err
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Close is a no-op; the client is closed by its owner.
func (r *Redis) Close() error {
	return nil
}
