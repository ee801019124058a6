package ports

import (
	"bus-schedule-bot/internal/domain"
	"context"
)

// Port: registered drivers keyed by chat user id.
type DriverRepository interface {
	// Create the driver or update its name.
	RegisterDriver(ctx context.Context, d domain.Driver) error
	// Return the driver or a domain.NotFoundError.
	GetDriver(ctx context.Context, id int64) (domain.Driver, error)
}
