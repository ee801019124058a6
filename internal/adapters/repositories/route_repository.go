package repositories

import (
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/platform/db"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SQL-backed persisted copy of the route catalog (bus_routes table).
type SQLRouteRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLRouteRepository(conn *sql.DB, dialect db.Dialect) *SQLRouteRepository {
	return &SQLRouteRepository{DB: conn, Dialect: dialect}
}

// Return all stored routes in catalog order.
func (r *SQLRouteRepository) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	if r.DB == nil {
		return nil, errors.New("route repository: DB is nil")
	}

	query := `
	SELECT
		route_number,
		name,
		stations
	FROM bus_routes
	ORDER BY position;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list routes: query bus_routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]domain.Route, 0, 16)
	for rows.Next() {
		var rt domain.Route
		var stations string
		if err := rows.Scan(&rt.ID, &rt.Name, &stations); err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(stations), &rt.Stations); err != nil {
			return nil, fmt.Errorf("list routes: route %q: decode stations: %w", rt.ID, err)
		}
		routes = append(routes, rt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	return routes, nil
}

// Replace the stored catalog with routes in a single transaction.
func (r *SQLRouteRepository) SaveRoutes(ctx context.Context, routes []domain.Route) error {
	if r.DB == nil {
		return errors.New("route repository: DB is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save routes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bus_routes;`); err != nil {
		return fmt.Errorf("save routes: clear bus_routes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, r.Dialect.Rebind(`
	INSERT INTO bus_routes (
		route_number,
		name,
		stations,
		position
	)
	VALUES (?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save routes: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rt := range routes {
		stations, err := json.Marshal(rt.Stations)
		if err != nil {
			return fmt.Errorf("save routes: route %q: encode stations: %w", rt.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, rt.ID, rt.Name, string(stations), i); err != nil {
			return fmt.Errorf("save routes: insert route %q: %w", rt.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save routes: commit tx: %w", err)
	}

	return nil
}
