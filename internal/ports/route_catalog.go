package ports

import "bus-schedule-bot/internal/domain"

// Read-only view over the known bus lines.
type RouteCatalog interface {
	// Return the route with the given id or a domain.NotFoundError.
	Lookup(routeID string) (domain.Route, error)
	// Return every route in a stable order.
	ListAll() []domain.Route
}
