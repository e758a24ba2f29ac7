package email

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/mail"
)

type fakeClient struct {
	sent []mail.Message
	err  error
}

func (f *fakeClient) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeClient) Close() error { return nil }

func TestMail_Send(t *testing.T) {
	errSMTP := errors.New("smtp down")

	tests := []struct {
		name     string
		msg      mail.Message
		err      error
		wantErr  error
		wantSent int
	}{
		{name: "delivered", msg: mail.Message{To: []string{"a@easymed.in"}, Subject: "hi"}, wantSent: 1},
		{name: "bcc only", msg: mail.Message{Bcc: []string{"a@easymed.in"}}, wantSent: 1},
		{name: "no recipient", msg: mail.Message{Subject: "hi"}, wantErr: ErrNoRecipient},
		{name: "client error", msg: mail.Message{To: []string{"a@easymed.in"}}, err: errSMTP, wantErr: errSMTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			client := &fakeClient{err: tt.err}
			m := New(client, instrument.NewNoop())

			// Act
			err := m.Send(context.Background(), tt.msg)

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Send() error = %v, want %v", err, tt.wantErr)
			}
			if len(client.sent) != tt.wantSent {
				t.Fatalf("sent = %d, want %d", len(client.sent), tt.wantSent)
			}
		})
	}
}
