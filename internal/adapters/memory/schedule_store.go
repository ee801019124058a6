package memory

import (
	"bus-schedule-bot/internal/domain"
	"context"
	"fmt"
	"sync"
	"time"
)

type scheduleKey struct {
	driverID int64
	date     string
}

type bucket struct {
	mu     sync.RWMutex
	shifts []domain.Shift
}

// In-memory implementation of the ScheduleStore port.
// The outer mutex only guards bucket creation; appends and reads lock the
// (driver, date) bucket they touch.
type ScheduleStore struct {
	mu      sync.Mutex
	buckets map[scheduleKey]*bucket
}

func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{buckets: make(map[scheduleKey]*bucket)}
}

func (s *ScheduleStore) bucket(driverID int64, date time.Time, create bool) *bucket {
	k := scheduleKey{driverID: driverID, date: date.Format(domain.DateLayout)}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[k]
	if !ok && create {
		b = &bucket{}
		s.buckets[k] = b
	}
	return b
}

func (s *ScheduleStore) RecordShift(ctx context.Context, driverID int64, date time.Time, shift domain.Shift) error {
	if err := shift.Validate(); err != nil {
		return fmt.Errorf("record shift: %w", err)
	}

	shift.RouteIDs = append([]string(nil), shift.RouteIDs...)

	b := s.bucket(driverID, date, true)
	b.mu.Lock()
	b.shifts = append(b.shifts, shift)
	b.mu.Unlock()

	return nil
}

func (s *ScheduleStore) ShiftsFor(ctx context.Context, driverID int64, date time.Time) ([]domain.Shift, error) {
	b := s.bucket(driverID, date, false)
	if b == nil {
		return []domain.Shift{}, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.Shift, len(b.shifts))
	for i, sh := range b.shifts {
		sh.RouteIDs = append([]string(nil), sh.RouteIDs...)
		out[i] = sh
	}
	return out, nil
}
