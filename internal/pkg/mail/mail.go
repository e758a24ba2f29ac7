package mail

import (
	"context"
	"io"
)

// Message is one outgoing email.
type Message struct {
	// From overrides the transport's default sender.
	From string
	// ReplyTo is where replies go, usually the support mailbox.
	ReplyTo string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	// TextBody is sent alone, or as the plain part next to HTMLBody.
	TextBody string
	HTMLBody string
}

// Recipients returns every envelope address in To, Cc, Bcc order.
func (m Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

// Mail is implemented by every transport.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
