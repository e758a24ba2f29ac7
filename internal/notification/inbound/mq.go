package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/easymed/internal/pkg/config"
	"github.com/shandysiswandi/easymed/internal/pkg/goroutine"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/messaging"
	"github.com/shandysiswandi/easymed/internal/pkg/uid"
	"github.com/shandysiswandi/easymed/internal/shared/event"
)

// RegisterMQConsumer starts every consumer listed in
// modules.notification.consumer_names and returns how many were started.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) int {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")

	var consumers = []struct {
		name    string
		topic   string // destination where publisher sent message
		group   string // consumer group, queue group, channel or subscription per broker
		handler messaging.Handler
	}{
		{
			name:    event.UserRegisteredConsumerNotification,
			topic:   event.UserRegisteredDestination,
			group:   event.UserRegisteredConsumerNotification,
			handler: mqHandler.UserRegisteredNotification,
		},
		{
			name:    event.AdminSignedInConsumerNotification,
			topic:   event.AdminSignedInDestination,
			group:   event.AdminSignedInConsumerNotification,
			handler: mqHandler.AdminSignedInNotification,
		},
	}

	started := 0
	for _, consumer := range consumers {
		if !slices.Contains(enableConsumerNames, consumer.name) {
			continue
		}

		ok := routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx, consumer.topic, consumer.group, consumer.handler)
		})
		if ok {
			started++
		}
	}

	return started
}
