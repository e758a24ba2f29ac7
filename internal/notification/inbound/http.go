package inbound

import (
	"context"

	"github.com/shandysiswandi/easymed/internal/notification/entity"
	"github.com/shandysiswandi/easymed/internal/notification/usecase"
	"github.com/shandysiswandi/easymed/internal/pkg/router"
)

type uc interface {
	ConsumeUserRegistered(ctx context.Context, in usecase.ConsumeUserRegisteredInput) error
	ConsumeAdminSignedIn(ctx context.Context, in usecase.ConsumeAdminSignedInInput) error
	DeliveryList(ctx context.Context, in usecase.DeliveryListInput) ([]entity.DeliveryLog, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/v1/notification/deliveries", end.DeliveryList)
}
