package sms

import (
	"context"

	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/sms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type SMS struct {
	client sms.SMS
	ins    instrument.Instrumentation
}

func New(client sms.SMS, ins instrument.Instrumentation) *SMS {
	return &SMS{client: client, ins: ins}
}

func (s *SMS) Send(ctx context.Context, to, body string) error {
	ctx, span := s.ins.Tracer("notification.outbound.sms").Start(ctx, "Send")
	defer span.End()

	msg, err := s.client.Send(ctx, to, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("sms.message_id", msg.ID), attribute.String("sms.mode", s.client.Mode()))
	return nil
}
