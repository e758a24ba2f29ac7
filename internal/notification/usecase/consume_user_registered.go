package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/easymed/internal/notification/entity"
)

type ConsumeUserRegisteredInput struct {
	UserID string `validate:"required"`
	Name   string `validate:"required"`
	Phone  string `validate:"omitempty,e164"`
	Email  string `validate:"omitempty,email"`
	Role   string `validate:"required"`
}

// ConsumeUserRegistered welcomes a new user by SMS and, when they gave one, by email.
func (s *Usecase) ConsumeUserRegistered(ctx context.Context, in ConsumeUserRegisteredInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserRegistered")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "dropping invalid user registered event", "user_id", in.UserID, "error", err)
		return nil
	}

	data := s.baseTemplateData()
	data["name"] = in.Name
	data["role"] = in.Role
	data["phone"] = in.Phone

	if in.Phone != "" {
		s.deliver(ctx, deliveryInput{
			UserID:       in.UserID,
			Recipient:    in.Phone,
			TriggerKey:   entity.TriggerKeyUserWelcome,
			Channel:      entity.ChannelSMS,
			TemplateData: data,
		})
	}

	if in.Email != "" {
		s.deliver(ctx, deliveryInput{
			UserID:       in.UserID,
			Recipient:    in.Email,
			TriggerKey:   entity.TriggerKeyUserWelcome,
			Channel:      entity.ChannelEmail,
			TemplateData: data,
		})
	}

	return nil
}
