package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

// Status reports directory size and the live pending and session counts.
func (s *Usecase) Status(ctx context.Context) (*entity.Status, error) {
	ctx, span := s.startSpan(ctx, "Status")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, ObjStatus, ActRead); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	total, err := s.repoDirectory.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count users", "error", err)
		return nil, goerror.NewServer(err)
	}

	pending, err := s.repoState.CountPending(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count pending registrations", "error", err)
		return nil, goerror.NewServer(err)
	}

	sessions, err := s.repoState.CountSessions(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count sessions", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &entity.Status{
		TotalUsers:           total,
		PendingRegistrations: pending,
		ActiveSessions:       sessions,
		SMSMode:              s.sms.Mode(),
	}, nil
}
