package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/easymed/internal/notification/usecase"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/messaging"
	"github.com/shandysiswandi/easymed/internal/pkg/uid"
	"github.com/shandysiswandi/easymed/internal/shared/event"
)

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(event.HeaderCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) UserRegisteredNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "UserRegisteredNotification")
	defer span.End()

	slog.InfoContext(ctx, "consume: user registered notification", "msg_id", msg.ID)

	var payload event.UserRegisteredMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user registered notification", "msg_body", string(msg.Body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeUserRegistered(ctx, usecase.ConsumeUserRegisteredInput{
		UserID: payload.UserID,
		Name:   payload.Name,
		Phone:  payload.Phone,
		Email:  payload.Email,
		Role:   payload.Role,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user registered", "user_id", payload.UserID, "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) AdminSignedInNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "AdminSignedInNotification")
	defer span.End()

	slog.InfoContext(ctx, "consume: admin signed in notification", "msg_id", msg.ID)

	var payload event.AdminSignedInMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of admin signed in notification", "msg_body", string(msg.Body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeAdminSignedIn(ctx, usecase.ConsumeAdminSignedInInput{
		UserID:     payload.UserID,
		Email:      payload.Email,
		SignedInAt: payload.SignedInAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume admin signed in", "user_id", payload.UserID, "error", err)
		return err
	}

	return nil
}
