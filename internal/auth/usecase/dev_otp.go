package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

type (
	DevOTPInput struct {
		Phone string `validate:"required,phone"`
	}

	DevOTPOutput struct {
		Phone  string
		Body   string
		SentAt time.Time
	}
)

// DevOTP exposes the last message the simulated transport delivered to a phone.
func (s *Usecase) DevOTP(ctx context.Context, in DevOTPInput) (*DevOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "DevOTP")
	defer span.End()

	if !s.DevOTPEnabled() {
		return nil, goerror.NewBusiness("not found", goerror.CodeNotFound)
	}

	in.Phone = strings.TrimSpace(in.Phone)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	phone, err := normalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}

	msg, ok := s.smsInbox.LastMessage(phone.String())
	if !ok {
		return nil, goerror.NewBusiness("no message delivered to phone", goerror.CodeNotFound)
	}

	return &DevOTPOutput{Phone: msg.To, Body: msg.Body, SentAt: msg.SentAt}, nil
}

// DevOTPEnabled reports whether the simulated inbox may be read over HTTP.
func (s *Usecase) DevOTPEnabled() bool {
	return s.smsInbox != nil && s.cfg.GetBool("modules.auth.dev_otp_enabled")
}
