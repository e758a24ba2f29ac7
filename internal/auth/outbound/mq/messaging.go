package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/easymed/internal/auth/usecase"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/messaging"
	"github.com/shandysiswandi/easymed/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishUserRegistered(ctx context.Context, msg usecase.UserRegisteredEvent) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, "PublishUserRegistered")
	defer span.End()

	return m.publish(ctx, span, event.UserRegisteredDestination, msg.User.ID, event.UserRegisteredMessage{
		UserID:    msg.User.ID,
		Name:      msg.User.Name,
		Phone:     msg.User.Phone.String(),
		Email:     msg.User.Email,
		Role:      msg.User.Role.String(),
		CreatedAt: msg.User.CreatedAt,
	})
}

func (m *Messaging) PublishUserLoggedIn(ctx context.Context, msg usecase.UserLoggedInEvent) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, "PublishUserLoggedIn")
	defer span.End()

	return m.publish(ctx, span, event.UserLoggedInDestination, msg.User.ID, event.UserLoggedInMessage{
		UserID:     msg.User.ID,
		Phone:      msg.User.Phone.String(),
		Role:       msg.User.Role.String(),
		LoggedInAt: msg.At,
	})
}

func (m *Messaging) PublishAdminSignedIn(ctx context.Context, msg usecase.AdminSignedInEvent) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, "PublishAdminSignedIn")
	defer span.End()

	return m.publish(ctx, span, event.AdminSignedInDestination, msg.User.ID, event.AdminSignedInMessage{
		UserID:     msg.User.ID,
		Email:      msg.User.Email,
		SignedInAt: msg.At,
	})
}

func (m *Messaging) publish(ctx context.Context, span trace.Span, topic, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if err := m.client.Publish(ctx, topic, messaging.Outgoing{
		Key:     key,
		Body:    body,
		Headers: map[string]string{event.HeaderCorrelationID: cID},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
