package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestBuildBody(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		wantType string
	}{
		{name: "text", msg: Message{TextBody: "hi"}, wantType: "text/plain; charset=UTF-8"},
		{name: "html", msg: Message{HTMLBody: "<b>hi</b>"}, wantType: "text/html; charset=UTF-8"},
		{name: "both", msg: Message{TextBody: "hi", HTMLBody: "<b>hi</b>"}, wantType: "multipart/alternative; boundary=easymed-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := buildBody(tt.msg)
			if !strings.HasPrefix(ct, tt.wantType) {
				t.Fatalf("content type = %q, want prefix %q", ct, tt.wantType)
			}
			if body == "" {
				t.Fatalf("expected body")
			}
		})
	}
}

func TestNewSMTP_RequiresHost(t *testing.T) {
	if _, err := NewSMTP(SMTPConfig{}); !errors.Is(err, ErrSMTPHostPortRequired) {
		t.Fatalf("expected ErrSMTPHostPortRequired, got %v", err)
	}
}

func TestSMTP_SendValidation(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 2525})
	if err != nil {
		t.Fatalf("NewSMTP() error = %v", err)
	}

	if err := s.Send(context.Background(), Message{Subject: "x"}); !errors.Is(err, ErrSMTPNoRecipients) {
		t.Fatalf("expected ErrSMTPNoRecipients, got %v", err)
	}
	if err := s.Send(context.Background(), Message{To: []string{"a@easymed.in"}}); !errors.Is(err, ErrSMTPNoSender) {
		t.Fatalf("expected ErrSMTPNoSender, got %v", err)
	}
}

func TestLog_Send(t *testing.T) {
	l := NewLog()

	if err := l.Send(context.Background(), Message{To: []string{"admin@easymed.in"}, Subject: "Welcome"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := l.Send(context.Background(), Message{}); !errors.Is(err, ErrSMTPNoRecipients) {
		t.Fatalf("expected ErrSMTPNoRecipients, got %v", err)
	}
}

func TestSMTP_SendComposesEnvelope(t *testing.T) {
	// Arrange
	s, err := NewSMTP(SMTPConfig{Host: "smtp.easymed.in", Port: 587, From: "no-reply@easymed.in"})
	if err != nil {
		t.Fatalf("NewSMTP() error = %v", err)
	}
	s.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }

	var gotAddr, gotFrom string
	var gotTo []string
	var gotRaw string
	s.send = func(addr string, _ smtp.Auth, from string, to []string, raw []byte) error {
		gotAddr, gotFrom, gotTo, gotRaw = addr, from, to, string(raw)
		return nil
	}

	// Act
	err = s.Send(context.Background(), Message{
		ReplyTo:  "support@easymed.in",
		To:       []string{"admin@easymed.in"},
		Bcc:      []string{"audit@easymed.in"},
		Subject:  "Nouvelle connexion",
		TextBody: "hello",
	})

	// Assert
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotAddr != "smtp.easymed.in:587" || gotFrom != "no-reply@easymed.in" {
		t.Fatalf("addr/from = %q/%q", gotAddr, gotFrom)
	}
	if len(gotTo) != 2 || gotTo[1] != "audit@easymed.in" {
		t.Fatalf("envelope recipients = %v", gotTo)
	}
	for _, want := range []string{"Reply-To: support@easymed.in", "Date: Sun, 01 Mar 2026 09:30:00 +0000", "Message-ID: <"} {
		if !strings.Contains(gotRaw, want) {
			t.Fatalf("raw message missing %q:\n%s", want, gotRaw)
		}
	}
	if strings.Contains(gotRaw, "audit@easymed.in") {
		t.Fatalf("bcc leaked into headers:\n%s", gotRaw)
	}
}

func TestMessage_Recipients(t *testing.T) {
	got := Message{To: []string{"a"}, Cc: []string{"b"}, Bcc: []string{"c"}}.Recipients()

	if strings.Join(got, ",") != "a,b,c" {
		t.Fatalf("Recipients() = %v", got)
	}
}
