package email

import (
	"context"
	"errors"

	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrNoRecipient = errors.New("email: message has no recipient")

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

func (m *Mail) Send(ctx context.Context, msg mail.Message) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "Send")
	defer span.End()

	recipients := len(msg.Recipients())
	span.SetAttributes(
		attribute.Int("email.recipients", recipients),
		attribute.String("email.subject", msg.Subject),
		attribute.Bool("email.html", msg.HTMLBody != ""),
	)

	if recipients == 0 {
		span.SetStatus(codes.Error, ErrNoRecipient.Error())
		return ErrNoRecipient
	}

	if err := m.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
