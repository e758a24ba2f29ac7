package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

type UserDetailInput struct {
	ID string `validate:"required,max=64"`
}

func (s *Usecase) UserDetail(ctx context.Context, in UserDetailInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserDetail")
	defer span.End()

	in.ID = strings.TrimSpace(in.ID)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if err := s.selfOrAuthorized(ctx, in.ID, ObjUsers, ActRead); err != nil {
		return nil, err
	}

	return s.userByID(ctx, in.ID)
}

// Me returns the user behind the access token.
func (s *Usecase) Me(ctx context.Context) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "Me")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	return s.userByID(ctx, clm.UserID)
}

func (s *Usecase) userByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.repoDirectory.GetByID(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user", "user_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	return user, nil
}
