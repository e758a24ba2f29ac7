package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

// UserClear empties the directory and persists the empty snapshot.
func (s *Usecase) UserClear(ctx context.Context) (int, error) {
	ctx, span := s.startSpan(ctx, "UserClear")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, ObjUsers, ActDelete)
	if err != nil {
		return 0, err
	}

	n, err := s.repoDirectory.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count users", "error", err)
		return 0, goerror.NewServer(err)
	}

	if err := s.repoDirectory.Clear(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to repo clear users", "error", err)
		return 0, goerror.NewServer(err)
	}
	s.persist(ctx)

	slog.WarnContext(ctx, "user directory cleared", "by", clm.UserID, "removed", n)

	return n, nil
}
