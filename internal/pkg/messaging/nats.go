package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// ErrNATSURLRequired indicates a missing NATS server url.
var ErrNATSURLRequired = errors.New("messaging: nats url is required")

// NATSConfig configures the NATS driver.
type NATSConfig struct {
	// URL is the NATS server url.
	URL string
	// Options are passed to nats.Connect.
	Options []nats.Option
}

// NATS implements Messaging with core NATS queue subscriptions.
type NATS struct {
	conn *nats.Conn
}

// NewNATS connects to NATS.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}

	return &NATS{conn: conn}, nil
}

// Publish sends msg to the subject named topic.
func (n *NATS) Publish(ctx context.Context, topic string, msg Outgoing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}

	nmsg := nats.NewMsg(topic)
	nmsg.Data = msg.Body
	if msg.Key != "" {
		nmsg.Header.Set("key", msg.Key)
	}
	for k, v := range msg.Headers {
		nmsg.Header.Set(k, v)
	}

	if err := n.conn.PublishMsg(nmsg); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("messaging: nats flush: %w", err)
	}
	return nil
}

// Consume joins the queue group named group on subject topic.
func (n *NATS) Consume(ctx context.Context, topic, group string, handler Handler) error {
	if err := validateConsume(topic, group, handler); err != nil {
		return err
	}

	sub, err := n.conn.QueueSubscribe(topic, group, func(m *nats.Msg) {
		msg := Message{Topic: m.Subject, Body: m.Data, Headers: make(map[string]string, len(m.Header))}
		for k := range m.Header {
			if k == "key" {
				msg.Key = m.Header.Get(k)
				continue
			}
			msg.Headers[k] = m.Header.Get(k)
		}
		if err := dispatch(ctx, "nats", handler, msg); err != nil {
			slog.WarnContext(ctx, "nats message handler failed", "topic", topic, "group", group, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	<-ctx.Done()
	return errors.Join(ctx.Err(), sub.Drain())
}

// Close drains and closes the connection.
func (n *NATS) Close() error {
	err := n.conn.Drain()
	n.conn.Close()
	return err
}
