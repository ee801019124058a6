package ports

import (
	"bus-schedule-bot/internal/domain"
	"context"
	"time"
)

// Port: per-driver, per-date shift records.
//
// RecordShift appends; it never overwrites prior shifts for the same key.
// ShiftsFor returns shifts in insertion order, or an empty slice.
type ScheduleStore interface {
	RecordShift(ctx context.Context, driverID int64, date time.Time, shift domain.Shift) error
	ShiftsFor(ctx context.Context, driverID int64, date time.Time) ([]domain.Shift, error)
}
