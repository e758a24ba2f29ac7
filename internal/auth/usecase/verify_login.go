package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

type (
	VerifyAndLoginInput struct {
		Phone string `validate:"required,phone"`
		Code  string `validate:"required,otpcode"`
	}

	VerifyAndLoginOutput struct {
		User        entity.User
		AccessToken string
		ExpiresAt   time.Time
		Created     bool
	}
)

func (s *Usecase) VerifyAndLogin(ctx context.Context, in VerifyAndLoginInput) (*VerifyAndLoginOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyAndLogin")
	defer span.End()

	in.Phone = strings.TrimSpace(in.Phone)
	in.Code = strings.TrimSpace(in.Code)
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

	session, err := s.repoState.GetSession(ctx, phone)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("verification session not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get verification session", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}

	if session.IsExpired(s.clock.Now()) {
		if err := s.repoState.DeleteSession(ctx, phone); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete stale session", "phone", phone, "error", err)
			return nil, goerror.NewServer(err)
		}
		return nil, goerror.NewBusiness("verification session expired", goerror.CodeExpired)
	}

	outcome, err := s.VerifyOTP(ctx, phone, in.Code)
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	switch outcome {
	case entity.OutcomeInvalid:
		return nil, goerror.NewBusiness("invalid verification code", goerror.CodeUnauthorized)
	case entity.OutcomeExpired:
		if err := s.repoState.DeleteSession(ctx, phone); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete session of expired code", "phone", phone, "error", err)
		}
		return nil, goerror.NewBusiness("verification code expired", goerror.CodeExpired)
	case entity.OutcomeNoEntry:
		return nil, goerror.NewBusiness("verification code not found", goerror.CodeNotFound)
	}

	if err := s.repoState.DeleteSession(ctx, phone); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete verified session", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}

	user, created, err := s.resolveUser(ctx, phone)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user.LastLogin = now
	if err := s.repoDirectory.Update(ctx, *user); err != nil {
		slog.ErrorContext(ctx, "failed to repo touch last login", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	s.persist(ctx)

	if created {
		if err := s.repoMessaging.PublishUserRegistered(ctx, UserRegisteredEvent{User: *user}); err != nil {
			slog.ErrorContext(ctx, "failed to publish user registered", "user_id", user.ID, "error", err)
		}
	}
	if err := s.repoMessaging.PublishUserLoggedIn(ctx, UserLoggedInEvent{User: *user, At: now}); err != nil {
		slog.ErrorContext(ctx, "failed to publish user logged in", "user_id", user.ID, "error", err)
	}

	token, expiresAt, err := s.issueToken(ctx, *user)
	if err != nil {
		return nil, err
	}

	return &VerifyAndLoginOutput{
		User:        *user,
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Created:     created,
	}, nil
}

// resolveUser returns the user for phone, materializing a live pending
// registration or a default patient when none exists yet.
func (s *Usecase) resolveUser(ctx context.Context, phone entity.Phone) (*entity.User, bool, error) {
	user, err := s.repoDirectory.FindByPhone(ctx, phone)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo find user by phone", "phone", phone, "error", err)
		return nil, false, goerror.NewServer(err)
	}

	now := s.clock.Now()
	newUser := entity.DefaultPatient(s.uuid.Generate(), phone, now)

	pending, err := s.repoState.GetPending(ctx, phone)
	switch {
	case err == nil && !pending.IsExpired(now):
		newUser = pending.Materialize(newUser.ID, now)
	case err == nil:
		slog.InfoContext(ctx, "ignoring expired pending registration", "phone", phone, "expired_at", pending.ExpiresAt)
	case !errors.Is(err, goerror.ErrNotFound):
		slog.ErrorContext(ctx, "failed to repo get pending registration", "phone", phone, "error", err)
		return nil, false, goerror.NewServer(err)
	}

	// Allow-listed admin phones always sign in as administrators.
	if s.isAdminPhone(phone) {
		newUser.Role = entity.RoleAdmin
		newUser.Profile = entity.AdminProfile{Organization: s.adminOrganization()}
		if pending == nil || pending.IsExpired(now) {
			newUser.Name = "Administrator"
		}
	}

	if err := s.repoDirectory.Insert(ctx, newUser); err != nil {
		slog.ErrorContext(ctx, "failed to repo insert user", "phone", phone, "error", err)
		return nil, false, goerror.NewServer(err)
	}

	if pending != nil {
		if err := s.repoState.DeletePending(ctx, phone); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete pending registration", "phone", phone, "error", err)
		}
	}

	slog.InfoContext(ctx, "user created", "user_id", newUser.ID, "role", newUser.Role.String())

	return &newUser, true, nil
}
