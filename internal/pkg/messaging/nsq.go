package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

var (
	// ErrNSQProducerAddrRequired indicates a missing nsqd address for publishing.
	ErrNSQProducerAddrRequired = errors.New("messaging: nsq producer address is required")
	// ErrNSQConsumerAddrsRequired indicates missing nsqd or lookupd addresses for consuming.
	ErrNSQConsumerAddrsRequired = errors.New("messaging: nsq consumer nsqd/lookupd addresses are required")
)

// NSQConfig configures the NSQ driver.
type NSQConfig struct {
	// ProducerAddr is the nsqd TCP address used for publishing.
	ProducerAddr string
	// ConsumerNSQDAddrs are nsqd addresses consumers connect to directly.
	ConsumerNSQDAddrs []string
	// ConsumerLookupdAddrs are nsqlookupd HTTP addresses used for discovery.
	ConsumerLookupdAddrs []string
	// ProducerConfig tunes the producer.
	ProducerConfig *nsq.Config
	// ConsumerConfig tunes consumers.
	ConsumerConfig *nsq.Config
}

// NSQ implements Messaging with NSQ topics and channels. Headers travel inside
// a JSON envelope because NSQ messages carry only a body.
type NSQ struct {
	producer       *nsq.Producer
	nsqdAddrs      []string
	lookupdAddrs   []string
	consumerConfig *nsq.Config
}

// NewNSQ creates the producer. Consumers are created per Consume call.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.ProducerAddr == "" {
		return nil, ErrNSQProducerAddrRequired
	}

	pcfg := cfg.ProducerConfig
	if pcfg == nil {
		pcfg = nsq.NewConfig()
	}
	producer, err := nsq.NewProducer(cfg.ProducerAddr, pcfg)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
	}
	producer.SetLoggerLevel(nsq.LogLevelError)

	ccfg := cfg.ConsumerConfig
	if ccfg == nil {
		ccfg = nsq.NewConfig()
	}

	return &NSQ{
		producer:       producer,
		nsqdAddrs:      append([]string{}, cfg.ConsumerNSQDAddrs...),
		lookupdAddrs:   append([]string{}, cfg.ConsumerLookupdAddrs...),
		consumerConfig: ccfg,
	}, nil
}

// Publish sends msg to topic.
func (n *NSQ) Publish(ctx context.Context, topic string, msg Outgoing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}

	body, err := encodeEnvelope(msg, time.Now())
	if err != nil {
		return err
	}
	if err := n.producer.Publish(topic, body); err != nil {
		return fmt.Errorf("messaging: nsq publish: %w", err)
	}
	return nil
}

// Consume reads topic through the channel named group. A handler error requeues the message.
func (n *NSQ) Consume(ctx context.Context, topic, group string, handler Handler) error {
	if err := validateConsume(topic, group, handler); err != nil {
		return err
	}
	if len(n.nsqdAddrs) == 0 && len(n.lookupdAddrs) == 0 {
		return ErrNSQConsumerAddrsRequired
	}

	ccfg := *n.consumerConfig
	consumer, err := nsq.NewConsumer(topic, group, &ccfg)
	if err != nil {
		return fmt.Errorf("messaging: nsq new consumer: %w", err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelError)

	consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		msg := decodeEnvelope(topic, string(m.ID[:]), m.Body)
		return dispatch(ctx, "nsq", handler, msg)
	}))

	if len(n.lookupdAddrs) > 0 {
		err = consumer.ConnectToNSQLookupds(n.lookupdAddrs)
	} else {
		err = consumer.ConnectToNSQDs(n.nsqdAddrs)
	}
	if err != nil {
		consumer.Stop()
		<-consumer.StopChan
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	select {
	case <-ctx.Done():
		consumer.Stop()
		<-consumer.StopChan
		return ctx.Err()
	case <-consumer.StopChan:
		return nil
	}
}

// Close stops the producer.
func (n *NSQ) Close() error {
	n.producer.Stop()
	return nil
}
