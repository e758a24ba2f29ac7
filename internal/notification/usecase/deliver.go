package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/easymed/internal/notification/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/mail"
)

type deliveryInput struct {
	UserID       string
	Recipient    string
	TriggerKey   entity.TriggerKey
	Channel      entity.Channel
	TemplateData map[string]any
}

// deliver renders the template for the trigger and channel, sends it and
// records the outcome. Failures are logged and recorded, never returned.
func (s *Usecase) deliver(ctx context.Context, in deliveryInput) {
	tpl, ok := s.templates[templateKey{trigger: in.TriggerKey, channel: in.Channel}]
	if !ok {
		slog.WarnContext(ctx, "notification template not found", "trigger_key", in.TriggerKey.String(), "channel", in.Channel.String())
		return
	}

	body, err := s.render(in.TriggerKey.String(), in.Channel, tpl.Body, in.TemplateData)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render notification body", "user_id", in.UserID, "trigger_key", in.TriggerKey.String(), "error", err)
		return
	}

	now := s.clock.Now()
	dl := entity.DeliveryLog{
		ID:         s.uid.Generate(),
		TriggerKey: in.TriggerKey,
		Channel:    in.Channel,
		UserID:     in.UserID,
		Recipient:  in.Recipient,
		Status:     entity.DeliveryStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repoLog.CreateDeliveryLog(ctx, dl); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "user_id", in.UserID, "trigger_key", in.TriggerKey.String(), "error", err)
		return
	}

	var sendErr error
	switch in.Channel {
	case entity.ChannelEmail:
		sendErr = s.repoMail.Send(ctx, mail.Message{
			ReplyTo:  s.supportEmail(),
			To:       []string{in.Recipient},
			Subject:  tpl.Subject,
			HTMLBody: body,
		})
	case entity.ChannelSMS:
		sendErr = s.repoSMS.Send(ctx, in.Recipient, body)
	}

	dl.UpdatedAt = s.clock.Now()
	dl.Status = entity.DeliveryStatusSent
	if sendErr != nil {
		dl.Status = entity.DeliveryStatusFailed
		dl.Error = sendErr.Error()
		slog.ErrorContext(ctx, "failed to send notification", "log_id", dl.ID, "user_id", in.UserID, "channel", in.Channel.String(), "error", sendErr)
	}

	if err := s.repoLog.UpdateDeliveryLogStatus(ctx, dl); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery log status", "log_id", dl.ID, "status", dl.Status.String(), "error", err)
	}
}
