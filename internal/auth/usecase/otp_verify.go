package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

// VerifyOTP checks code against the outstanding entry for phone. The error is
// non-nil only for store faults.
func (s *Usecase) VerifyOTP(ctx context.Context, phone entity.Phone, code string) (entity.VerificationOutcome, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	entry, err := s.repoState.GetOTP(ctx, phone)
	if errors.Is(err, goerror.ErrNotFound) {
		return entity.OutcomeNoEntry, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp", "phone", phone, "error", err)
		return entity.OutcomeNoEntry, err
	}

	if entry.IsExpired(s.clock.Now()) {
		if err := s.repoState.DeleteOTP(ctx, phone); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete expired otp", "phone", phone, "error", err)
			return entity.OutcomeExpired, err
		}
		return entity.OutcomeExpired, nil
	}

	if !s.hmac.Verify(entry.CodeHash, code) {
		entry.Attempts++
		limit := s.maxAttempts()
		if limit > 0 && entry.Attempts >= limit {
			slog.WarnContext(ctx, "otp attempt limit reached, invalidating code", "phone", phone, "attempts", entry.Attempts)
			err = s.repoState.DeleteOTP(ctx, phone)
		} else {
			err = s.repoState.SaveOTP(ctx, *entry)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo record otp attempt", "phone", phone, "error", err)
			return entity.OutcomeInvalid, err
		}
		return entity.OutcomeInvalid, nil
	}

	if err := s.repoState.DeleteOTP(ctx, phone); err != nil {
		slog.ErrorContext(ctx, "failed to repo consume otp", "phone", phone, "error", err)
		return entity.OutcomeApproved, err
	}

	return entity.OutcomeApproved, nil
}
