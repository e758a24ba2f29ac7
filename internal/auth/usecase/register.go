package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

type RegisterInput struct {
	Phone        string `validate:"required,phone"`
	Name         string `validate:"required,min=2,max=100,alphaspace"`
	Email        string `validate:"omitempty,email,max=254"`
	Role         string `validate:"omitempty,oneof=patient asha-worker doctor admin"`
	Specialty    string `validate:"max=100"`
	Village      string `validate:"max=100"`
	Organization string `validate:"max=100"`
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*SendCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Phone = strings.TrimSpace(in.Phone)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
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

	_, err = s.repoDirectory.FindByPhone(ctx, phone)
	if err == nil {
		return nil, goerror.NewBusiness("phone already registered", goerror.CodeConflict)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo find user by phone", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}

	role := entity.RoleFromString(in.Role)
	now := s.clock.Now()
	pending := entity.PendingRegistration{
		Phone: phone,
		Name:  in.Name,
		Email: in.Email,
		Role:  role,
		Profile: entity.NewRoleProfile(role, entity.ProfileAttributes{
			Specialty:    strings.TrimSpace(in.Specialty),
			Village:      strings.TrimSpace(in.Village),
			Organization: strings.TrimSpace(in.Organization),
		}),
		CreatedAt: now,
		ExpiresAt: now.Add(s.pendingTTL()),
	}
	if err := s.repoState.SavePending(ctx, pending); err != nil {
		slog.ErrorContext(ctx, "failed to repo save pending registration", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}

	return s.sendCode(ctx, phone)
}
