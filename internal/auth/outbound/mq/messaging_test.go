package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/auth/usecase"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/messaging"
	"github.com/shandysiswandi/easymed/internal/shared/event"
)

type published struct {
	topic string
	msg   messaging.Outgoing
}

type recorder struct {
	sent []published
	err  error
}

func (r *recorder) Publish(_ context.Context, topic string, msg messaging.Outgoing) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, published{topic: topic, msg: msg})
	return nil
}

func (r *recorder) Consume(context.Context, string, string, messaging.Handler) error { return nil }

func (r *recorder) Close() error { return nil }

func TestMessaging(t *testing.T) {
	user := entity.User{
		ID:        "u-1",
		Name:      "Asha Rao",
		Email:     "asha@example.com",
		Phone:     "+919876543210",
		Role:      entity.RoleDoctor,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	t.Run("UserRegisteredCarriesCorrelationID", func(t *testing.T) {
		// Arrange
		rec := &recorder{}
		m := NewMessaging(rec, instrument.NewNoop())
		ctx := instrument.SetCorrelationID(context.Background(), "cid-42")

		// Act
		err := m.PublishUserRegistered(ctx, usecase.UserRegisteredEvent{User: user})

		// Assert
		if err != nil {
			t.Fatalf("publish: %v", err)
		}
		if len(rec.sent) != 1 || rec.sent[0].topic != event.UserRegisteredDestination {
			t.Fatalf("unexpected publish %+v", rec.sent)
		}
		out := rec.sent[0].msg
		if out.Key != "u-1" || out.Headers[event.HeaderCorrelationID] != "cid-42" {
			t.Fatalf("unexpected envelope %+v", out)
		}
		var body event.UserRegisteredMessage
		if err := json.Unmarshal(out.Body, &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Phone != "+919876543210" || body.Role != "doctor" || !body.CreatedAt.Equal(user.CreatedAt) {
			t.Fatalf("unexpected body %+v", body)
		}
	})

	t.Run("LoggedInAndAdminTopics", func(t *testing.T) {
		// Arrange
		rec := &recorder{}
		m := NewMessaging(rec, instrument.NewNoop())
		at := user.CreatedAt.Add(time.Hour)

		// Act
		errLogin := m.PublishUserLoggedIn(context.Background(), usecase.UserLoggedInEvent{User: user, At: at})
		errAdmin := m.PublishAdminSignedIn(context.Background(), usecase.AdminSignedInEvent{User: user, At: at})

		// Assert
		if errLogin != nil || errAdmin != nil {
			t.Fatalf("publish: %v %v", errLogin, errAdmin)
		}
		if rec.sent[0].topic != event.UserLoggedInDestination || rec.sent[1].topic != event.AdminSignedInDestination {
			t.Fatalf("unexpected topics %+v", rec.sent)
		}
		var admin event.AdminSignedInMessage
		if err := json.Unmarshal(rec.sent[1].msg.Body, &admin); err != nil || admin.Email != user.Email || !admin.SignedInAt.Equal(at) {
			t.Fatalf("unexpected admin body %+v, %v", admin, err)
		}
	})

	t.Run("BrokerErrorIsReturned", func(t *testing.T) {
		// Arrange
		want := errors.New("broker down")
		m := NewMessaging(&recorder{err: want}, instrument.NewNoop())

		// Act
		err := m.PublishUserLoggedIn(context.Background(), usecase.UserLoggedInEvent{User: user})

		// Assert
		if !errors.Is(err, want) {
			t.Fatalf("got %v", err)
		}
	})
}
