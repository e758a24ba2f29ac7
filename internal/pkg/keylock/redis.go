package keylock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig tunes a Redis locker.
type RedisConfig struct {
	// Prefix is prepended to every lock key.
	Prefix string
	// TTL bounds how long a crashed holder can keep a key locked.
	TTL time.Duration
	// MaxWait bounds how long Lock polls before giving up.
	MaxWait time.Duration
}

// Redis is a Locker shared across processes through SET NX PX.
type Redis struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	maxWait time.Duration
}

// NewRedis returns a Redis locker using client.
func NewRedis(client redis.UniversalClient, cfg RedisConfig) *Redis {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 5 * time.Second
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "keylock:"
	}

	return &Redis{client: client, prefix: cfg.Prefix, ttl: cfg.TTL, maxWait: cfg.MaxWait}
}

// Lock polls with capped exponential backoff until key is acquired, MaxWait
// elapses or ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	fk := r.prefix + key

	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return nil, err
	}
	token := hex.EncodeToString(raw[:])

	b := retry.NewExponential(10 * time.Millisecond)
	b = retry.WithCappedDuration(250*time.Millisecond, b)
	b = retry.WithMaxDuration(r.maxWait, b)

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		ok, err := r.client.SetNX(ctx, fk, token, r.ttl).Result()
		if err != nil {
			return err
		}
		if !ok {
			return retry.RetryableError(ErrLockBusy)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := releaseScript.Run(context.WithoutCancel(ctx), r.client, []string{fk}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				slog.WarnContext(ctx, "failed to release key lock", "key", key, "error", err)
			}
		})
	}, nil
}
