package usecase

import (
	"context"
	"log/slog"
)

// Sweep drops expired OTP entries, sessions and pending registrations.
// Reads already treat expired records as absent; this only reclaims space.
func (s *Usecase) Sweep(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Sweep")
	defer span.End()

	n, err := s.repoState.DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete expired state", "error", err)
		return err
	}

	if n > 0 {
		slog.DebugContext(ctx, "expired auth state swept", "removed", n)
	}

	return nil
}

// Hydrate replaces the directory with the persisted snapshot.
func (s *Usecase) Hydrate(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Hydrate")
	defer span.End()

	users, err := s.repoSnapshot.Load(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load user snapshot", "error", err)
		return err
	}

	if err := s.repoDirectory.Replace(ctx, users); err != nil {
		slog.ErrorContext(ctx, "failed to repo replace users", "users", len(users), "error", err)
		return err
	}

	slog.InfoContext(ctx, "user directory hydrated", "users", len(users))

	return nil
}
