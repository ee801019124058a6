package ports

import (
	"bus-schedule-bot/internal/domain"
	"context"
)

// Port: persisted copy of the route catalog.
type RouteRepository interface {
	ListRoutes(ctx context.Context) ([]domain.Route, error)
	SaveRoutes(ctx context.Context, routes []domain.Route) error
}
