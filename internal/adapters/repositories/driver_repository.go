package repositories

import (
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/platform/db"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// SQL-backed implementation of the DriverRepository port.
type SQLDriverRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLDriverRepository(conn *sql.DB, dialect db.Dialect) *SQLDriverRepository {
	return &SQLDriverRepository{DB: conn, Dialect: dialect}
}

// Insert the driver or rename it if the chat id is already registered.
func (r *SQLDriverRepository) RegisterDriver(ctx context.Context, d domain.Driver) error {
	if r.DB == nil {
		return errors.New("driver repository: DB is nil")
	}

	// Both SQLite (>= 3.24) and Postgres accept this upsert form.
	query := r.Dialect.Rebind(`
	INSERT INTO drivers (telegram_id, name)
	VALUES (?, ?)
	ON CONFLICT (telegram_id) DO UPDATE
	SET name = excluded.name;
	`)

	if _, err := r.DB.ExecContext(ctx, query, d.ID, d.Name); err != nil {
		return fmt.Errorf("register driver %d: %w", d.ID, err)
	}
	return nil
}

func (r *SQLDriverRepository) GetDriver(ctx context.Context, id int64) (domain.Driver, error) {
	if r.DB == nil {
		return domain.Driver{}, errors.New("driver repository: DB is nil")
	}

	query := r.Dialect.Rebind(`
	SELECT telegram_id, name
	FROM drivers
	WHERE telegram_id = ?;
	`)

	var d domain.Driver
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Driver{}, domain.NotFound("driver", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return domain.Driver{}, fmt.Errorf("get driver %d: %w", id, err)
	}

	return d, nil
}
