package repositories

import (
	"bus-schedule-bot/internal/platform/db"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the database schema for the given dialect.
func InitSchema(conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == db.Postgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		telegram_id BIGINT PRIMARY KEY,
		name TEXT NOT NULL
	);
	`

	createSchedulesQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS schedules (
		id %s,
		driver_id BIGINT NOT NULL,
		date TEXT NOT NULL,
		umlauf TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		routes TEXT NOT NULL
	);
	`, serial)

	createBusRoutesQuery := `
	CREATE TABLE IF NOT EXISTS bus_routes (
		route_number TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		stations TEXT NOT NULL,
		position INTEGER NOT NULL
	);
	`

	createExtractionCacheQuery := `
	CREATE TABLE IF NOT EXISTS extraction_cache (
		digest TEXT PRIMARY KEY,
		mime_type TEXT NOT NULL,
		text TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_schedules_driver_date
	ON schedules(driver_id, date, id);
	`

	statements := []string{
		createDriversQuery,
		createSchedulesQuery,
		createBusRoutesQuery,
		createExtractionCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
