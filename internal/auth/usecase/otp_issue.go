package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

// IssueOTP stores a fresh code for phone, replacing any outstanding one, and
// delivers it by SMS.
func (s *Usecase) IssueOTP(ctx context.Context, phone entity.Phone) (*entity.PendingIssuance, error) {
	ctx, span := s.startSpan(ctx, "IssueOTP")
	defer span.End()

	if !entity.IsE164(phone.String()) {
		return nil, goerror.NewInvalidInput(nil, "phone", "invalid phone number")
	}

	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.otpTTL()
	entry := entity.OTPEntry{
		Phone:     phone,
		CodeHash:  string(codeHash),
		ExpiresAt: s.clock.Now().Add(ttl),
	}
	if err := s.repoState.SaveOTP(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to repo save otp", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}

	body := fmt.Sprintf("Your EasyMed verification code is %s. It expires in %d minutes.", code, int(ttl.Minutes()))
	msg, err := s.sms.Send(ctx, phone.String(), body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send otp sms", "phone", phone, "error", err)
		if err := s.repoState.DeleteOTP(ctx, phone); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete undelivered otp", "phone", phone, "error", err)
		}
		return nil, goerror.NewServer(err)
	}

	issuanceID := strconv.FormatInt(s.uid.Generate(), 10)
	slog.InfoContext(ctx, "otp issued", "issuance_id", issuanceID, "phone", phone, "sms_id", msg.ID, "sms_mode", s.sms.Mode())

	return &entity.PendingIssuance{
		IssuanceID: issuanceID,
		Phone:      phone,
		ExpiresAt:  entry.ExpiresAt,
	}, nil
}
