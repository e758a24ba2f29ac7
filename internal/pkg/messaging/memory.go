package messaging

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// Memory is an in-process broker. Every consumer group of a topic gets its own
// buffered queue; consumers within a group share it.
type Memory struct {
	buffer int

	mu     sync.Mutex
	groups map[string]map[string]chan Message
	seq    uint64
	closed bool
}

// NewMemory returns a Memory broker whose group queues hold up to buffer messages.
func NewMemory(buffer int) *Memory {
	if buffer <= 0 {
		buffer = 256
	}
	return &Memory{buffer: buffer, groups: make(map[string]map[string]chan Message)}
}

// Publish copies msg into every group queue of topic, blocking while a queue is full.
func (m *Memory) Publish(ctx context.Context, topic string, msg Outgoing) error {
	if topic == "" {
		return ErrTopicRequired
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return io.ErrClosedPipe
	}
	m.seq++
	delivered := Message{
		ID:        strconv.FormatUint(m.seq, 10),
		Topic:     topic,
		Key:       msg.Key,
		Body:      msg.Body,
		Headers:   msg.Headers,
		Timestamp: time.Now(),
	}
	queues := make([]chan Message, 0, len(m.groups[topic]))
	for _, q := range m.groups[topic] {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	for _, q := range queues {
		select {
		case q <- delivered:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Consume registers group on topic and handles messages until ctx is done.
// Failed messages are logged and dropped.
func (m *Memory) Consume(ctx context.Context, topic, group string, handler Handler) error {
	if err := validateConsume(topic, group, handler); err != nil {
		return err
	}

	q, err := m.queue(topic, group)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-q:
			if err := dispatch(ctx, "memory", handler, msg); err != nil {
				slog.WarnContext(ctx, "memory message handler failed", "topic", topic, "group", group, "message_id", msg.ID, "error", err)
			}
		}
	}
}

// Close stops accepting new messages.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *Memory) queue(topic, group string) (chan Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, io.ErrClosedPipe
	}
	if m.groups[topic] == nil {
		m.groups[topic] = make(map[string]chan Message)
	}
	q, ok := m.groups[topic][group]
	if !ok {
		q = make(chan Message, m.buffer)
		m.groups[topic][group] = q
	}
	return q, nil
}
