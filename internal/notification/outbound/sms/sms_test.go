package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/sms"
)

type fakeClient struct {
	to, body string
	err      error
}

func (f *fakeClient) Send(_ context.Context, to, body string) (sms.Message, error) {
	if f.err != nil {
		return sms.Message{}, f.err
	}
	f.to, f.body = to, body
	return sms.Message{ID: "SM1", To: to, Body: body}, nil
}

func (f *fakeClient) Mode() string { return sms.ModeSimulated }

func TestSMS_Send(t *testing.T) {
	t.Run("delivered", func(t *testing.T) {
		// Arrange
		client := &fakeClient{}
		s := New(client, instrument.NewNoop())

		// Act
		err := s.Send(context.Background(), "+919876543210", "hello")

		// Assert
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if client.to != "+919876543210" || client.body != "hello" {
			t.Fatalf("client got (%q, %q)", client.to, client.body)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		errProvider := errors.New("twilio 500")
		s := New(&fakeClient{err: errProvider}, instrument.NewNoop())

		if err := s.Send(context.Background(), "+919876543210", "hello"); !errors.Is(err, errProvider) {
			t.Fatalf("Send() error = %v, want %v", err, errProvider)
		}
	})
}
