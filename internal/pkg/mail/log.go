package mail

import (
	"context"
	"log/slog"
	"strings"
)

// Log is a Mail implementation that only logs messages. It is used when no
// SMTP server is configured.
type Log struct{}

// NewLog returns a Log mailer.
func NewLog() *Log {
	return &Log{}
}

// Send logs the envelope of msg.
func (*Log) Send(ctx context.Context, msg Message) error {
	if len(msg.Recipients()) == 0 {
		return ErrSMTPNoRecipients
	}

	slog.InfoContext(ctx, "mail delivery simulated", "to", strings.Join(msg.To, ","), "subject", msg.Subject)
	return nil
}

// Close implements io.Closer.
func (*Log) Close() error {
	return nil
}
