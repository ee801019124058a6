package memory

import (
	"bus-schedule-bot/internal/domain"
	"context"
	"strconv"
	"sync"
)

// In-memory implementation of the DriverRepository port.
type DriverRepository struct {
	mu      sync.RWMutex
	drivers map[int64]domain.Driver
}

func NewDriverRepository() *DriverRepository {
	return &DriverRepository{drivers: make(map[int64]domain.Driver)}
}

func (r *DriverRepository) RegisterDriver(ctx context.Context, d domain.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[d.ID] = d
	return nil
}

func (r *DriverRepository) GetDriver(ctx context.Context, id int64) (domain.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drivers[id]
	if !ok {
		return domain.Driver{}, domain.NotFound("driver", strconv.FormatInt(id, 10))
	}
	return d, nil
}
