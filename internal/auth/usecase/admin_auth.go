package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

const StatusAuthenticated = "authenticated"

type (
	AuthenticateAdminInput struct {
		Identifier string `validate:"required,max=254"`
		Password   string `validate:"max=256"`
	}

	// AuthenticateAdminOutput is discriminated by Kind: otp_sent carries
	// Code, authenticated carries User and the token.
	AuthenticateAdminOutput struct {
		Kind        string
		Code        *SendCodeOutput
		User        *entity.User
		AccessToken string
		ExpiresAt   time.Time
	}
)

func (s *Usecase) AuthenticateAdmin(ctx context.Context, in AuthenticateAdminInput) (*AuthenticateAdminOutput, error) {
	ctx, span := s.startSpan(ctx, "AuthenticateAdmin")
	defer span.End()

	in.Identifier = strings.TrimSpace(in.Identifier)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if !strings.Contains(in.Identifier, "@") {
		if phone, err := entity.NormalizePhone(in.Identifier); err == nil {
			return s.adminByPhone(ctx, phone)
		}
	}

	return s.adminByEmail(ctx, strings.ToLower(in.Identifier), in.Password)
}

func (s *Usecase) adminByPhone(ctx context.Context, phone entity.Phone) (*AuthenticateAdminOutput, error) {
	if !s.isAdminPhone(phone) {
		slog.WarnContext(ctx, "admin sign-in rejected", "phone", phone)
		return nil, goerror.NewBusiness("not an administrator", goerror.CodeForbidden)
	}

	unlock, err := s.lockPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	defer unlock()

	out, err := s.sendCode(ctx, phone)
	if err != nil {
		return nil, err
	}

	return &AuthenticateAdminOutput{Kind: StatusOTPSent, Code: out}, nil
}

func (s *Usecase) isAdminPhone(phone entity.Phone) bool {
	return lo.ContainsBy(s.configList("modules.auth.admin.phones"), func(v string) bool {
		p, err := entity.NormalizePhone(v)
		return err == nil && p == phone
	})
}

func (s *Usecase) adminOrganization() string {
	if org := strings.TrimSpace(s.cfg.GetString("modules.auth.admin.organization")); org != "" {
		return org
	}
	return defaultOrganization
}

func (s *Usecase) adminByEmail(ctx context.Context, email, password string) (*AuthenticateAdminOutput, error) {
	emails := lo.Map(s.configList("modules.auth.admin.emails"), func(v string, _ int) string {
		return strings.ToLower(v)
	})
	if !lo.Contains(emails, email) {
		slog.WarnContext(ctx, "admin sign-in rejected", "email", email)
		return nil, goerror.NewBusiness("not an administrator", goerror.CodeForbidden)
	}

	// Every entry is checked so timing does not reveal the matching position.
	matched := false
	for _, entry := range s.configList("modules.auth.admin.passwords") {
		if s.adminHash.Verify(entry, password) {
			matched = true
		}
	}
	if password == "" || !matched {
		slog.WarnContext(ctx, "admin sign-in rejected", "email", email, "reason", "password")
		return nil, goerror.NewBusiness("not an administrator", goerror.CodeForbidden)
	}

	unlock, err := s.lockKey(ctx, "auth:email:"+email)
	if err != nil {
		return nil, err
	}
	defer unlock()

	user, err := s.findOrCreateAdmin(ctx, email)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user.LastLogin = now
	if err := s.repoDirectory.Update(ctx, *user); err != nil {
		slog.ErrorContext(ctx, "failed to repo touch admin last login", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	s.persist(ctx)

	if err := s.repoMessaging.PublishAdminSignedIn(ctx, AdminSignedInEvent{User: *user, At: now}); err != nil {
		slog.ErrorContext(ctx, "failed to publish admin signed in", "user_id", user.ID, "error", err)
	}

	token, expiresAt, err := s.issueToken(ctx, *user)
	if err != nil {
		return nil, err
	}

	return &AuthenticateAdminOutput{
		Kind:        StatusAuthenticated,
		User:        user,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Usecase) findOrCreateAdmin(ctx context.Context, email string) (*entity.User, error) {
	user, err := s.repoDirectory.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo find user by email", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	admin := entity.User{
		ID:        s.uuid.Generate(),
		Name:      "Administrator",
		Email:     email,
		Role:      entity.RoleAdmin,
		Profile:   entity.AdminProfile{Organization: s.adminOrganization()},
		Verified:  true,
		CreatedAt: now,
	}
	if err := s.repoDirectory.Insert(ctx, admin); err != nil {
		slog.ErrorContext(ctx, "failed to repo insert admin", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "admin user created", "user_id", admin.ID)

	return &admin, nil
}
