package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

type expiring[V any] struct {
	mu    sync.Mutex
	items map[entity.Phone]V
	exp   func(V) time.Time
}

func newExpiring[V any](exp func(V) time.Time) *expiring[V] {
	return &expiring[V]{items: make(map[entity.Phone]V), exp: exp}
}

func (e *expiring[V]) put(k entity.Phone, v V) {
	e.mu.Lock()
	e.items[k] = v
	e.mu.Unlock()
}

func (e *expiring[V]) get(k entity.Phone) (V, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.items[k]
	return v, ok
}

func (e *expiring[V]) del(k entity.Phone) {
	e.mu.Lock()
	delete(e.items, k)
	e.mu.Unlock()
}

func (e *expiring[V]) live(now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, v := range e.items {
		if !now.After(e.exp(v)) {
			n++
		}
	}
	return n
}

func (e *expiring[V]) sweep(now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for k, v := range e.items {
		if now.After(e.exp(v)) {
			delete(e.items, k)
			n++
		}
	}
	return n
}

// State keeps OTP entries, verification sessions and pending registrations in
// process memory. Expiry is evaluated by callers on read; DeleteExpired only
// reclaims memory.
type State struct {
	otps     *expiring[entity.OTPEntry]
	sessions *expiring[entity.VerificationSession]
	pending  *expiring[entity.PendingRegistration]
}

func NewState() *State {
	return &State{
		otps:     newExpiring(func(v entity.OTPEntry) time.Time { return v.ExpiresAt }),
		sessions: newExpiring(func(v entity.VerificationSession) time.Time { return v.ExpiresAt }),
		pending: newExpiring(func(v entity.PendingRegistration) time.Time {
			if v.ExpiresAt.IsZero() {
				return time.Unix(1<<62, 0)
			}
			return v.ExpiresAt
		}),
	}
}

func (s *State) SaveOTP(_ context.Context, e entity.OTPEntry) error {
	s.otps.put(e.Phone, e)
	return nil
}

func (s *State) GetOTP(_ context.Context, phone entity.Phone) (*entity.OTPEntry, error) {
	v, ok := s.otps.get(phone)
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &v, nil
}

func (s *State) DeleteOTP(_ context.Context, phone entity.Phone) error {
	s.otps.del(phone)
	return nil
}

func (s *State) SaveSession(_ context.Context, v entity.VerificationSession) error {
	s.sessions.put(v.Phone, v)
	return nil
}

func (s *State) GetSession(_ context.Context, phone entity.Phone) (*entity.VerificationSession, error) {
	v, ok := s.sessions.get(phone)
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &v, nil
}

func (s *State) DeleteSession(_ context.Context, phone entity.Phone) error {
	s.sessions.del(phone)
	return nil
}

func (s *State) CountSessions(_ context.Context, now time.Time) (int, error) {
	return s.sessions.live(now), nil
}

func (s *State) SavePending(_ context.Context, v entity.PendingRegistration) error {
	s.pending.put(v.Phone, v)
	return nil
}

func (s *State) GetPending(_ context.Context, phone entity.Phone) (*entity.PendingRegistration, error) {
	v, ok := s.pending.get(phone)
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &v, nil
}

func (s *State) DeletePending(_ context.Context, phone entity.Phone) error {
	s.pending.del(phone)
	return nil
}

func (s *State) CountPending(_ context.Context, now time.Time) (int, error) {
	return s.pending.live(now), nil
}

// DeleteExpired drops every lapsed entry and returns how many were removed.
func (s *State) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	return s.otps.sweep(now) + s.sessions.sweep(now) + s.pending.sweep(now), nil
}
