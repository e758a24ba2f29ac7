package messaging

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

const (
	DriverMemory       = "memory"
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
)

var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions holds the settings of every driver; only the selected one is read.
type FactoryOptions struct {
	// MemoryBuffer sizes the per-group queues of the memory driver.
	MemoryBuffer int
	NSQ          NSQConfig
	Kafka        KafkaConfig
	NATS         NATSConfig
	PubSub       PubSubConfig
}

type constructor func(ctx context.Context, opts FactoryOptions) (Messaging, error)

var constructors = map[string]constructor{
	DriverMemory: func(_ context.Context, opts FactoryOptions) (Messaging, error) {
		return NewMemory(opts.MemoryBuffer), nil
	},
	DriverNSQ: func(_ context.Context, opts FactoryOptions) (Messaging, error) {
		return NewNSQ(opts.NSQ)
	},
	DriverKafka: func(_ context.Context, opts FactoryOptions) (Messaging, error) {
		return NewKafka(opts.Kafka)
	},
	DriverNATS: func(_ context.Context, opts FactoryOptions) (Messaging, error) {
		return NewNATS(opts.NATS)
	},
	DriverGooglePubSub: func(ctx context.Context, opts FactoryOptions) (Messaging, error) {
		return NewPubSub(ctx, opts.PubSub)
	},
}

// Drivers lists the accepted driver names in sorted order.
func Drivers() []string {
	names := lo.Keys(constructors)
	slices.Sort(names)
	return names
}

// NewFromDriver builds the broker named by driver. An empty name selects memory.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Messaging, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = DriverMemory
	}

	build, ok := constructors[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownDriver, driver, strings.Join(Drivers(), ", "))
	}

	m, err := build(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("messaging: init %s: %w", driver, err)
	}
	return m, nil
}
