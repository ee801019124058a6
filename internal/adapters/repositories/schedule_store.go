package repositories

import (
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/platform/db"
	"bus-schedule-bot/internal/platform/obs"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQL-backed implementation of the ScheduleStore port.
// Each shift is one row in schedules; the route list is a JSON array.
type SQLScheduleStore struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLScheduleStore(conn *sql.DB, dialect db.Dialect) *SQLScheduleStore {
	return &SQLScheduleStore{DB: conn, Dialect: dialect}
}

// Append a shift for the driver and date.
func (s *SQLScheduleStore) RecordShift(
	ctx context.Context,
	driverID int64,
	date time.Time,
	shift domain.Shift,
) (err error) {
	defer obs.Time(ctx, "schedule.store.RecordShift")(&err)

	if s.DB == nil {
		return errors.New("schedule store: DB is nil")
	}
	if err := shift.Validate(); err != nil {
		return fmt.Errorf("record shift: %w", err)
	}

	routes, err := json.Marshal(shift.RouteIDs)
	if err != nil {
		return fmt.Errorf("record shift: encode routes: %w", err)
	}

	query := s.Dialect.Rebind(`
	INSERT INTO schedules (
		driver_id,
		date,
		umlauf,
		start_time,
		end_time,
		routes
	)
	VALUES (?, ?, ?, ?, ?, ?);
	`)

	_, err = s.DB.ExecContext(ctx, query,
		driverID,
		date.Format(domain.DateLayout),
		shift.Umlauf,
		shift.Start.String(),
		shift.End.String(),
		string(routes),
	)
	if err != nil {
		return fmt.Errorf("record shift: insert driver=%d umlauf=%q: %w", driverID, shift.Umlauf, err)
	}

	return nil
}

// Return shifts for the driver and date in insertion order.
func (s *SQLScheduleStore) ShiftsFor(
	ctx context.Context,
	driverID int64,
	date time.Time,
) (_ []domain.Shift, err error) {
	defer obs.Time(ctx, "schedule.store.ShiftsFor")(&err)

	if s.DB == nil {
		return nil, errors.New("schedule store: DB is nil")
	}

	query := s.Dialect.Rebind(`
	SELECT
		umlauf,
		start_time,
		end_time,
		routes
	FROM schedules
	WHERE driver_id = ? AND date = ?
	ORDER BY id;
	`)

	rows, err := s.DB.QueryContext(ctx, query, driverID, date.Format(domain.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("shifts for: query schedules table: %w", err)
	}
	defer rows.Close()

	shifts := make([]domain.Shift, 0, 4)
	for rows.Next() {
		var umlauf, start, end, routes string
		if err := rows.Scan(&umlauf, &start, &end, &routes); err != nil {
			return nil, fmt.Errorf("shifts for: scan row: %w", err)
		}

		sh := domain.Shift{Umlauf: umlauf}
		if sh.Start, err = domain.ParseTimeOfDay(start); err != nil {
			return nil, fmt.Errorf("shifts for: umlauf %q: %w", umlauf, err)
		}
		if sh.End, err = domain.ParseTimeOfDay(end); err != nil {
			return nil, fmt.Errorf("shifts for: umlauf %q: %w", umlauf, err)
		}
		if err := json.Unmarshal([]byte(routes), &sh.RouteIDs); err != nil {
			return nil, fmt.Errorf("shifts for: umlauf %q: decode routes: %w", umlauf, err)
		}
		shifts = append(shifts, sh)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("shifts for: row iteration: %w", err)
	}

	return shifts, nil
}
