package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/easymed/internal/notification/entity"
	"github.com/shandysiswandi/easymed/internal/notification/usecase"
	"github.com/shandysiswandi/easymed/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// DeliveryList returns recent notification deliveries.
// @Summary List notification deliveries
// @Description Returns the most recent welcome and alert deliveries. Admin only.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum number of records (default 50)"
// @Success 200 {object} router.successResponse{data=DeliveriesResponse} "Delivery list"
// @Failure 400 {object} router.errorResponse "Invalid query"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/deliveries [get]
func (h *HTTPEndpoint) DeliveryList(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	logs, err := h.uc.DeliveryList(r.Context(), usecase.DeliveryListInput{Limit: int(limit)})
	if err != nil {
		return nil, err
	}

	return DeliveriesResponse{
		Deliveries: lo.Map(logs, func(dl entity.DeliveryLog, _ int) DeliveryResponse {
			return DeliveryResponse{
				ID:         dl.ID,
				TriggerKey: dl.TriggerKey.String(),
				Channel:    dl.Channel.String(),
				UserID:     dl.UserID,
				Recipient:  dl.Recipient,
				Status:     dl.Status.String(),
				Error:      dl.Error,
				CreatedAt:  dl.CreatedAt,
				UpdatedAt:  dl.UpdatedAt,
			}
		}),
	}, nil
}
