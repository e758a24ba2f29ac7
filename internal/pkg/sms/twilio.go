package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrTwilioNotConfigured indicates missing Twilio credentials or sender.
var ErrTwilioNotConfigured = errors.New("sms: twilio account sid, auth token and from number are required")

// TwilioConfig configures the Twilio transport.
type TwilioConfig struct {
	// AccountSID is the Twilio account identifier.
	AccountSID string
	// AuthToken is the Twilio auth token.
	AuthToken string
	// From is the sender number or messaging service id.
	From string
}

// Twilio sends messages through the Twilio REST API.
type Twilio struct {
	client *twilio.RestClient
	from   string
}

// NewTwilio returns a Twilio transport.
func NewTwilio(cfg TwilioConfig) (*Twilio, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, ErrTwilioNotConfigured
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &Twilio{client: client, from: cfg.From}, nil
}

// Send delivers body to to. The Twilio client is not context aware, so ctx is
// only checked before the call.
func (t *Twilio) Send(ctx context.Context, to, body string) (Message, error) {
	if to == "" {
		return Message{}, ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return Message{}, fmt.Errorf("sms: twilio create message: %w", err)
	}

	msg := Message{To: to, Body: body, SentAt: time.Now()}
	if resp != nil && resp.Sid != nil {
		msg.ID = *resp.Sid
	}
	return msg, nil
}

// Mode reports ModeTwilio.
func (*Twilio) Mode() string {
	return ModeTwilio
}
