package sms

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// SimulatedConfig configures the simulated transport.
type SimulatedConfig struct {
	// Delay mimics provider latency. Zero sends immediately.
	Delay time.Duration
	// Clock stamps messages; time.Now is used when nil.
	Clock interface{ Now() time.Time }
}

// Simulated records messages in memory instead of sending them.
type Simulated struct {
	delay time.Duration
	clock interface{ Now() time.Time }
	seq   *atomic.Int64

	mu   sync.RWMutex
	last map[string]Message
}

// NewSimulated returns a Simulated transport.
func NewSimulated(cfg SimulatedConfig) *Simulated {
	return &Simulated{
		delay: cfg.Delay,
		clock: cfg.Clock,
		seq:   atomic.NewInt64(0),
		last:  make(map[string]Message),
	}
}

// Send waits for the configured delay, honoring ctx, then records the message.
func (s *Simulated) Send(ctx context.Context, to, body string) (Message, error) {
	if to == "" {
		return Message{}, ErrNoRecipient
	}

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-t.C:
		}
	}

	now := time.Now()
	if s.clock != nil {
		now = s.clock.Now()
	}

	msg := Message{
		ID:     "SIM" + strconv.FormatInt(s.seq.Inc(), 10),
		To:     to,
		Body:   body,
		SentAt: now,
	}

	s.mu.Lock()
	s.last[to] = msg
	s.mu.Unlock()

	slog.InfoContext(ctx, "sms delivery simulated", "to", to, "message_id", msg.ID, "body", body)
	return msg, nil
}

// Mode reports ModeSimulated.
func (*Simulated) Mode() string {
	return ModeSimulated
}

// LastMessage returns the most recent message sent to to.
func (s *Simulated) LastMessage(to string) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.last[to]
	return msg, ok
}

// Sent returns how many messages were recorded.
func (s *Simulated) Sent() int64 {
	return s.seq.Load()
}
