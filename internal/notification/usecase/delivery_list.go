package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/easymed/internal/notification/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

const defaultDeliveryLimit = 50

type DeliveryListInput struct {
	Limit int `validate:"gte=0,lte=500"`
}

// DeliveryList returns the most recent delivery records, newest first.
func (s *Usecase) DeliveryList(ctx context.Context, in DeliveryListInput) ([]entity.DeliveryLog, error) {
	ctx, span := s.startSpan(ctx, "DeliveryList")
	defer span.End()

	if _, err := s.requireAuthorized(ctx, ObjDeliveries, "read"); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	limit := in.Limit
	if limit == 0 {
		limit = defaultDeliveryLimit
	}

	logs, err := s.repoLog.ListDeliveryLogs(ctx, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list delivery logs", "limit", limit, "error", err)
		return nil, goerror.NewServer(err)
	}

	return logs, nil
}
