package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrTopicRequired is returned when publishing or consuming without a topic.
	ErrTopicRequired = errors.New("messaging: topic is required")
	// ErrGroupRequired is returned when consuming without a consumer group.
	ErrGroupRequired = errors.New("messaging: consumer group is required")
	// ErrHandlerRequired is returned when consuming without a handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
	// ErrHandlerPanic wraps a recovered handler panic.
	ErrHandlerPanic = errors.New("messaging: handler panicked")
)

// Messaging is a broker-agnostic client that can publish and consume messages.
type Messaging interface {
	io.Closer

	// Publish sends msg to topic.
	Publish(ctx context.Context, topic string, msg Outgoing) error
	// Consume delivers messages of topic to handler until ctx is done. Consumers
	// sharing a group split the stream; different groups each see every message.
	Consume(ctx context.Context, topic, group string, handler Handler) error
}

// Handler processes a received message. A non-nil error asks the broker for
// redelivery where the broker supports it.
type Handler func(ctx context.Context, msg Message) error

// Outgoing is a message to publish.
type Outgoing struct {
	// Key is used for partitioning or ordering when the broker supports it.
	Key string
	// Body is the payload.
	Body []byte
	// Headers carry metadata such as the correlation id.
	Headers map[string]string
}

// Message is a received message.
type Message struct {
	// ID is the broker message id, when the broker assigns one.
	ID string
	// Topic is the topic the message was published to.
	Topic string
	// Key is the partition or ordering key.
	Key string
	// Body is the payload.
	Body []byte
	// Headers carry metadata such as the correlation id.
	Headers map[string]string
	// Timestamp is when the broker accepted the message.
	Timestamp time.Time
}

// Header returns the value of header key, or "" when absent.
func (m Message) Header(key string) string {
	if m.Headers == nil {
		return ""
	}
	return m.Headers[key]
}

func validateConsume(topic, group string, handler Handler) error {
	switch {
	case topic == "":
		return ErrTopicRequired
	case group == "":
		return ErrGroupRequired
	case handler == nil:
		return ErrHandlerRequired
	default:
		return nil
	}
}
