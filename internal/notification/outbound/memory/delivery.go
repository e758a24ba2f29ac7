package memory

import (
	"context"
	"sync"

	"github.com/shandysiswandi/easymed/internal/notification/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

const defaultCapacity = 1000

// DeliveryLog keeps the most recent delivery records in insertion order.
// Once capacity is reached the oldest record is evicted.
type DeliveryLog struct {
	mu       sync.RWMutex
	capacity int
	order    []int64
	logs     map[int64]entity.DeliveryLog
}

func NewDeliveryLog(capacity int) *DeliveryLog {
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	return &DeliveryLog{
		capacity: capacity,
		order:    make([]int64, 0, capacity),
		logs:     make(map[int64]entity.DeliveryLog, capacity),
	}
}

func (d *DeliveryLog) CreateDeliveryLog(_ context.Context, dl entity.DeliveryLog) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.logs[dl.ID]; ok {
		return goerror.ErrConflict
	}

	if len(d.order) == d.capacity {
		delete(d.logs, d.order[0])
		d.order = d.order[1:]
	}

	d.order = append(d.order, dl.ID)
	d.logs[dl.ID] = dl
	return nil
}

func (d *DeliveryLog) UpdateDeliveryLogStatus(_ context.Context, dl entity.DeliveryLog) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	old, ok := d.logs[dl.ID]
	if !ok {
		return goerror.ErrNotFound
	}

	old.Status = dl.Status
	old.Error = dl.Error
	old.UpdatedAt = dl.UpdatedAt
	d.logs[dl.ID] = old
	return nil
}

// ListDeliveryLogs returns up to limit records, newest first.
func (d *DeliveryLog) ListDeliveryLogs(_ context.Context, limit int) ([]entity.DeliveryLog, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit <= 0 || limit > len(d.order) {
		limit = len(d.order)
	}

	out := make([]entity.DeliveryLog, 0, limit)
	for i := len(d.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, d.logs[d.order[i]])
	}

	return out, nil
}
