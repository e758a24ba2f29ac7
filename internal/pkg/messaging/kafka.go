package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrKafkaBrokersRequired indicates missing broker addresses.
var ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")

// KafkaConfig configures the Kafka driver.
type KafkaConfig struct {
	// Brokers are the bootstrap broker addresses.
	Brokers []string
	// Dialer optionally customizes connections (TLS, SASL).
	Dialer *kafka.Dialer
}

// Kafka implements Messaging with Kafka topics and consumer groups.
type Kafka struct {
	brokers []string
	dialer  *kafka.Dialer

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafka returns a Kafka driver. Connections are opened lazily.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	return &Kafka{
		brokers: append([]string{}, cfg.Brokers...),
		dialer:  cfg.Dialer,
		writers: make(map[string]*kafka.Writer),
	}, nil
}

// Publish writes msg to topic. Messages sharing a key land on one partition.
func (k *Kafka) Publish(ctx context.Context, topic string, msg Outgoing) error {
	if topic == "" {
		return ErrTopicRequired
	}

	kmsg := kafka.Message{Key: []byte(msg.Key), Value: msg.Body, Time: time.Now()}
	for hk, hv := range msg.Headers {
		kmsg.Headers = append(kmsg.Headers, kafka.Header{Key: hk, Value: []byte(hv)})
	}

	if err := k.writer(topic).WriteMessages(ctx, kmsg); err != nil {
		return fmt.Errorf("messaging: kafka publish: %w", err)
	}
	return nil
}

// Consume reads topic as consumer group group. Offsets are committed after the
// handler returns, also on failure, so a poison message cannot stall the group.
func (k *Kafka) Consume(ctx context.Context, topic, group string, handler Handler) error {
	if err := validateConsume(topic, group, handler); err != nil {
		return err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.brokers,
		GroupID:  group,
		Topic:    topic,
		Dialer:   k.dialer,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("messaging: kafka fetch: %w", err)
		}

		msg := Message{
			ID:        fmt.Sprintf("%d-%d", m.Partition, m.Offset),
			Topic:     m.Topic,
			Key:       string(m.Key),
			Body:      m.Value,
			Headers:   make(map[string]string, len(m.Headers)),
			Timestamp: m.Time,
		}
		for _, h := range m.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}

		if err := dispatch(ctx, "kafka", handler, msg); err != nil {
			slog.WarnContext(ctx, "kafka message handler failed", "topic", topic, "group", group, "message_id", msg.ID, "error", err)
		}
		if err := reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			return fmt.Errorf("messaging: kafka commit: %w", err)
		}
	}
}

// Close flushes and closes every writer.
func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var err error
	for topic, w := range k.writers {
		err = errors.Join(err, w.Close())
		delete(k.writers, topic)
	}
	return err
}

func (k *Kafka) writer(topic string) *kafka.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()

	if w, ok := k.writers[topic]; ok {
		return w
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  k.brokers,
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Dialer:   k.dialer,
	})
	k.writers[topic] = w
	return w
}
