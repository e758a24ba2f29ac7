// Package sms delivers short text messages to phone numbers.
//
// A simulated transport keeps messages in memory and in the logs, which is the
// default for local runs. The Twilio transport sends real messages.
package sms

import (
	"context"
	"errors"
	"time"
)

const (
	// ModeSimulated marks the in-memory transport.
	ModeSimulated = "simulated"
	// ModeTwilio marks the Twilio transport.
	ModeTwilio = "twilio"
)

var (
	// ErrUnknownDriver indicates an unsupported SMS driver.
	ErrUnknownDriver = errors.New("sms: unknown driver")
	// ErrNoRecipient indicates an empty destination number.
	ErrNoRecipient = errors.New("sms: recipient is required")
)

// Message is one delivered SMS.
type Message struct {
	// ID is the provider message id.
	ID string
	// To is the destination number in E.164 form.
	To string
	// Body is the text content.
	Body string
	// SentAt is when the transport accepted the message.
	SentAt time.Time
}

// SMS abstracts an SMS provider.
type SMS interface {
	// Send delivers body to the E.164 number to.
	Send(ctx context.Context, to, body string) (Message, error)
	// Mode reports which transport is active.
	Mode() string
}

// Config selects and configures an SMS transport.
type Config struct {
	// Driver is "simulated" or "twilio".
	Driver string
	// Simulated configures the simulated transport.
	Simulated SimulatedConfig
	// Twilio configures the Twilio transport.
	Twilio TwilioConfig
}

// NewFromDriver constructs the transport named by cfg.Driver.
func NewFromDriver(cfg Config) (SMS, error) {
	switch cfg.Driver {
	case "", ModeSimulated:
		return NewSimulated(cfg.Simulated), nil
	case ModeTwilio:
		return NewTwilio(cfg.Twilio)
	default:
		return nil, ErrUnknownDriver
	}
}
