package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
	"github.com/shandysiswandi/easymed/internal/pkg/valueobject"
)

type (
	LinkExternalProfileInput struct {
		UserID    string `validate:"required,max=64"`
		Reference string `validate:"max=128"`
		// Data is nil when the profile should be fetched from the health-ID system.
		Data map[string]any
	}

	LinkExternalProfileOutput struct {
		Linked bool
		User   *entity.User
	}
)

func (s *Usecase) LinkExternalProfile(ctx context.Context, in LinkExternalProfileInput) (*LinkExternalProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "LinkExternalProfile")
	defer span.End()

	in.UserID = strings.TrimSpace(in.UserID)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if err := s.selfOrAuthorized(ctx, in.UserID, ObjProfile, ActWrite); err != nil {
		return nil, err
	}

	user, err := s.repoDirectory.GetByID(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "health profile link skipped for unknown user", "user_id", in.UserID)
		return &LinkExternalProfileOutput{Linked: false}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	var profile *entity.HealthProfile
	if in.Data != nil {
		profile = &entity.HealthProfile{
			Reference: strings.TrimSpace(in.Reference),
			Data:      valueobject.JSONMap(in.Data).Clone(),
		}
		if profile.Reference == "" {
			profile.Reference = profile.Data.GetString("reference")
		}
	} else {
		profile, err = s.healthID.FetchProfile(ctx, user.ID)
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("health profile not found", goerror.CodeNotFound)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to fetch health profile", "user_id", user.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	unlock, err := s.lockUser(ctx, *user)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock so a concurrent login or link is not overwritten.
	user, err = s.repoDirectory.GetByID(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return &LinkExternalProfileOutput{Linked: false}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	profile.LinkedAt = s.clock.Now()
	user.HealthProfile = profile
	user.Verified = true
	if err := s.repoDirectory.Update(ctx, *user); err != nil {
		slog.ErrorContext(ctx, "failed to repo update user health profile", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	s.persist(ctx)

	return &LinkExternalProfileOutput{Linked: true, User: user}, nil
}
