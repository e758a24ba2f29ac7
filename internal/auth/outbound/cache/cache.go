package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/clock"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Keys outlive the domain expiry by this much so reads still observe "expired"
// instead of "missing".
const expiryGrace = time.Minute

const (
	kindOTP     = "otp"
	kindSession = "session"
	kindPending = "pending"
)

// State keeps OTP entries, verification sessions and pending registrations in
// Redis with key TTLs, so several instances can share them.
type State struct {
	client redis.UniversalClient
	clock  clock.Clocker
	prefix string
	ins    instrument.Instrumentation
}

func NewState(client redis.UniversalClient, clk clock.Clocker, prefix string, ins instrument.Instrumentation) *State {
	if prefix == "" {
		prefix = "easymed:auth:"
	}
	return &State{client: client, clock: clk, prefix: prefix, ins: ins}
}

func (s *State) mapError(err error) error {
	if errors.Is(err, redis.Nil) {
		return goerror.ErrNotFound
	}
	return err
}

func (s *State) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.outbound.cache").Start(ctx, name)
}

func (s *State) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *State) key(kind string, phone entity.Phone) string {
	return s.prefix + kind + ":" + phone.String()
}

func (s *State) ttl(expiresAt time.Time) time.Duration {
	if expiresAt.IsZero() {
		return 0
	}
	d := expiresAt.Sub(s.clock.Now()) + expiryGrace
	if d < time.Second {
		d = time.Second
	}
	return d
}

func (s *State) set(ctx context.Context, kind string, phone entity.Phone, v any, expiresAt time.Time) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(kind, phone), raw, s.ttl(expiresAt)).Err()
}

func (s *State) get(ctx context.Context, kind string, phone entity.Phone, dst any) error {
	raw, err := s.client.Get(ctx, s.key(kind, phone)).Bytes()
	if err != nil {
		return s.mapError(err)
	}
	return json.Unmarshal(raw, dst)
}

func (s *State) del(ctx context.Context, kind string, phone entity.Phone) error {
	return s.client.Del(ctx, s.key(kind, phone)).Err()
}

// countLive scans every key of kind and counts values whose expiry is after now.
func (s *State) countLive(ctx context.Context, kind string, now time.Time, expiresAt func([]byte) (time.Time, error)) (int, error) {
	var (
		cursor uint64
		live   int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+kind+":*", 100).Result()
		if err != nil {
			return 0, err
		}

		if len(keys) > 0 {
			// One GET per key: a cluster pipeline routes each to its own slot,
			// which a multi-key MGET cannot do.
			pipe := s.client.Pipeline()
			cmds := make([]*redis.StringCmd, len(keys))
			for i, key := range keys {
				cmds[i] = pipe.Get(ctx, key)
			}
			if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
				return 0, err
			}
			for _, cmd := range cmds {
				raw, err := cmd.Bytes()
				if err != nil {
					continue
				}
				exp, err := expiresAt(raw)
				if err != nil {
					continue
				}
				if exp.IsZero() || !now.After(exp) {
					live++
				}
			}
		}

		cursor = next
		if cursor == 0 {
			return live, nil
		}
	}
}
