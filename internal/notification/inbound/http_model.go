package inbound

import "time"

type DeliveryResponse struct {
	ID         int64     `json:"id,string"`
	TriggerKey string    `json:"trigger_key"`
	Channel    string    `json:"channel"`
	UserID     string    `json:"user_id"`
	Recipient  string    `json:"recipient"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type DeliveriesResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
}

func (r DeliveriesResponse) Meta() map[string]any {
	return map[string]any{"total": len(r.Deliveries)}
}
