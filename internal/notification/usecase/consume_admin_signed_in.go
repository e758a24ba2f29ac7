package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/easymed/internal/notification/entity"
)

type ConsumeAdminSignedInInput struct {
	UserID     string `validate:"required"`
	Email      string `validate:"required,email"`
	SignedInAt time.Time
}

// ConsumeAdminSignedIn mails a sign-in alert to the administrator's address.
func (s *Usecase) ConsumeAdminSignedIn(ctx context.Context, in ConsumeAdminSignedInInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeAdminSignedIn")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "dropping invalid admin signed in event", "user_id", in.UserID, "error", err)
		return nil
	}

	at := in.SignedInAt
	if at.IsZero() {
		at = s.clock.Now()
	}

	data := s.baseTemplateData()
	data["email"] = in.Email
	data["signed_in_at"] = at.UTC().Format(time.RFC1123)

	s.deliver(ctx, deliveryInput{
		UserID:       in.UserID,
		Recipient:    in.Email,
		TriggerKey:   entity.TriggerKeyAdminAlert,
		Channel:      entity.ChannelEmail,
		TemplateData: data,
	})

	return nil
}
