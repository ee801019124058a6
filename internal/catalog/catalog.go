package catalog

import (
	"bus-schedule-bot/internal/domain"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Catalog is the immutable, in-memory set of known routes.
// It is safe for concurrent use because nothing mutates it after New.
type Catalog struct {
	byID   map[string]int
	routes []domain.Route
}

// Build a catalog from routes, keeping their order.
// Route ids are trimmed and must be unique; every route needs two stations.
func New(routes []domain.Route) (*Catalog, error) {
	v := validator.New()

	c := &Catalog{
		byID:   make(map[string]int, len(routes)),
		routes: make([]domain.Route, 0, len(routes)),
	}
	for i, r := range routes {
		r.ID = strings.TrimSpace(r.ID)
		if err := v.Struct(r); err != nil {
			return nil, fmt.Errorf("catalog: route #%d (%q): %w", i+1, r.ID, err)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate route id %q", r.ID)
		}

		stations := make([]domain.Station, len(r.Stations))
		copy(stations, r.Stations)
		r.Stations = stations

		c.byID[r.ID] = len(c.routes)
		c.routes = append(c.routes, r)
	}

	return c, nil
}

func (c *Catalog) Lookup(routeID string) (domain.Route, error) {
	i, ok := c.byID[strings.TrimSpace(routeID)]
	if !ok {
		return domain.Route{}, domain.NotFound("route", routeID)
	}
	return c.routes[i], nil
}

// ListAll returns routes in load order. The slice is a copy.
func (c *Catalog) ListAll() []domain.Route {
	out := make([]domain.Route, len(c.routes))
	copy(out, c.routes)
	return out
}
