package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

// UserList returns every user ordered by creation time.
func (s *Usecase) UserList(ctx context.Context) ([]entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, ObjUsers, ActRead); err != nil {
		return nil, err
	}

	users, err := s.repoDirectory.All(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list users", "error", err)
		return nil, goerror.NewServer(err)
	}

	return users, nil
}
