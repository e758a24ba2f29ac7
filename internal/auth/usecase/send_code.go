package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

const StatusOTPSent = "otp_sent"

type (
	SendCodeInput struct {
		Phone string `validate:"required,phone"`
	}

	SendCodeOutput struct {
		Status     string
		Phone      entity.Phone
		IssuanceID string
		ExpiresAt  time.Time
	}
)

func (s *Usecase) SendCode(ctx context.Context, in SendCodeInput) (*SendCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "SendCode")
	defer span.End()

	in.Phone = strings.TrimSpace(in.Phone)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	phone, err := normalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.sendCode(ctx, phone)
}

// sendCode issues a code and opens the verification session. The caller holds the phone lock.
func (s *Usecase) sendCode(ctx context.Context, phone entity.Phone) (*SendCodeOutput, error) {
	issued, err := s.IssueOTP(ctx, phone)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.repoState.SaveSession(ctx, entity.VerificationSession{
		Phone:     phone,
		StartedAt: now,
		ExpiresAt: now.Add(s.sessionTTL()),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo save verification session", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &SendCodeOutput{
		Status:     StatusOTPSent,
		Phone:      phone,
		IssuanceID: issued.IssuanceID,
		ExpiresAt:  issued.ExpiresAt,
	}, nil
}

func normalizePhone(raw string) (entity.Phone, error) {
	phone, err := entity.NormalizePhone(raw)
	if err != nil {
		return "", goerror.NewInvalidInput(nil, "phone", "invalid phone number")
	}
	return phone, nil
}
