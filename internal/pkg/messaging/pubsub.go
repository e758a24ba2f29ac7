package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

// ErrPubSubProjectIDRequired indicates a missing Google Cloud project id.
var ErrPubSubProjectIDRequired = errors.New("messaging: pubsub project id is required")

// PubSubConfig configures the Google Pub/Sub driver.
type PubSubConfig struct {
	// ProjectID is the Google Cloud project.
	ProjectID string
	// ClientOptions are passed to pubsub.NewClient.
	ClientOptions []option.ClientOption
}

// PubSub implements Messaging with Google Pub/Sub. A consumer group maps to the
// subscription named "<topic>-<group>", which must already exist.
type PubSub struct {
	client *pubsub.Client

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

// NewPubSub creates a Pub/Sub client.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	if cfg.ProjectID == "" {
		return nil, ErrPubSubProjectIDRequired
	}

	c, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("messaging: pubsub new client: %w", err)
	}

	return &PubSub{client: c, publishers: make(map[string]*pubsub.Publisher)}, nil
}

// Publish sends msg to topic and waits for the server id.
func (p *PubSub) Publish(ctx context.Context, topic string, msg Outgoing) error {
	if topic == "" {
		return ErrTopicRequired
	}

	res := p.publisher(topic).Publish(ctx, &pubsub.Message{
		Data:        msg.Body,
		Attributes:  msg.Headers,
		OrderingKey: msg.Key,
	})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("messaging: pubsub publish: %w", err)
	}
	return nil
}

// Consume receives from the group subscription. A handler error nacks the message.
func (p *PubSub) Consume(ctx context.Context, topic, group string, handler Handler) error {
	if err := validateConsume(topic, group, handler); err != nil {
		return err
	}

	sub := p.client.Subscriber(topic + "-" + group)
	return sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		msg := Message{
			ID:        m.ID,
			Topic:     topic,
			Key:       m.OrderingKey,
			Body:      m.Data,
			Headers:   m.Attributes,
			Timestamp: m.PublishTime,
		}
		if err := dispatch(ctx, "pubsub", handler, msg); err != nil {
			m.Nack()
			return
		}
		m.Ack()
	})
}

// Close stops publishers and closes the client.
func (p *PubSub) Close() error {
	p.mu.Lock()
	for topic, pub := range p.publishers {
		pub.Stop()
		delete(p.publishers, topic)
	}
	p.mu.Unlock()

	return p.client.Close()
}

func (p *PubSub) publisher(topic string) *pubsub.Publisher {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pub, ok := p.publishers[topic]; ok {
		return pub
	}
	pub := p.client.Publisher(topic)
	p.publishers[topic] = pub
	return pub
}
