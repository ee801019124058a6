package services

import (
	"bus-schedule-bot/internal/action"
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/ports"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Presenter formats schedule and route queries into responses.
// Unknown routes and empty schedules are normal responses, not errors;
// errors are reserved for store failures and invalid caller input.
type Presenter struct {
	Catalog ports.RouteCatalog
	Store   ports.ScheduleStore
}

func NewPresenter(catalog ports.RouteCatalog, store ports.ScheduleStore) *Presenter {
	return &Presenter{Catalog: catalog, Store: store}
}

// List the driver's shifts for date with one route button per distinct route.
func (p *Presenter) RenderSchedule(ctx context.Context, driverID int64, date time.Time) (Response, error) {
	day := date.Format(domain.DateLayout)

	shifts, err := p.Store.ShiftsFor(ctx, driverID, date)
	if err != nil {
		return Response{}, fmt.Errorf("render schedule: driver=%d date=%s: %w", driverID, day, err)
	}
	if len(shifts) == 0 {
		return textResponse(fmt.Sprintf("No schedule found for %s.", day)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Schedule for %s:\n", day)

	seen := make(map[string]bool)
	var buttons []Button
	for _, s := range shifts {
		end := s.End.String()
		if s.Overnight() {
			end += " (+1)"
		}

		names := make([]string, 0, len(s.RouteIDs))
		for _, id := range s.RouteIDs {
			names = append(names, p.routeLabel(id))

			if !seen[id] {
				seen[id] = true
				buttons = append(buttons, Button{
					Label:  fmt.Sprintf("Route %s details", id),
					Action: action.Route(id),
				})
			}
		}

		fmt.Fprintf(&b, "\nUmlauf: %s\nTime: %s - %s\nRoutes: %s\n", s.Umlauf, s.Start, end, strings.Join(names, ", "))
	}

	return Response{Text: b.String(), Actions: buttons}, nil
}

// routeLabel resolves a route id to "31 (name)", or the raw id if unknown.
func (p *Presenter) routeLabel(id string) string {
	r, err := p.Catalog.Lookup(id)
	if err != nil || r.Name == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", id, r.Name)
}

// Show the ordered stations of a route with one navigate button per adjacent pair.
func (p *Presenter) RenderRouteDetail(routeID string) Response {
	r, err := p.Catalog.Lookup(routeID)
	if err != nil {
		return routeNotFound(routeID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Route %s: %s\n\nStations:\n", r.ID, r.Name)
	for i, s := range r.Stations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Name)
	}

	buttons := make([]Button, 0, len(r.Stations)-1)
	for i := 0; i+1 < len(r.Stations); i++ {
		buttons = append(buttons, Button{
			Label:  fmt.Sprintf("%s → %s", r.Stations[i].Name, r.Stations[i+1].Name),
			Action: action.Navigate(r.ID, i, i+1),
		})
	}

	return Response{Text: b.String(), Actions: buttons}
}

// List every route with one detail button each.
func (p *Presenter) RenderAllRoutes() Response {
	routes := p.Catalog.ListAll()
	if len(routes) == 0 {
		return textResponse("No routes found.")
	}

	var b strings.Builder
	b.WriteString("Available routes:\n\n")
	buttons := make([]Button, 0, len(routes))
	for _, r := range routes {
		fmt.Fprintf(&b, "Route %s: %s\n", r.ID, r.Name)
		buttons = append(buttons, Button{
			Label:  "Route " + r.ID,
			Action: action.Route(r.ID),
		})
	}

	return Response{Text: b.String(), Actions: buttons}
}

// Navigation instructions between two station indices of a route.
// Index errors are returned as *domain.UsageError.
func (p *Presenter) RenderNavigation(routeID string, from, to int) (Response, error) {
	r, err := p.Catalog.Lookup(routeID)
	if err != nil {
		return routeNotFound(routeID), nil
	}

	nav, err := PlanNavigation(r, from, to)
	if err != nil {
		return Response{}, err
	}
	return renderNavigation(nav), nil
}

// Like RenderNavigation, resolving station names case-insensitively.
// A missing name is a *domain.NotFoundError; a name listed twice on the
// route is a *domain.UsageError.
func (p *Presenter) RenderNavigationByName(routeID, fromName, toName string) (Response, error) {
	r, err := p.Catalog.Lookup(routeID)
	if err != nil {
		return routeNotFound(routeID), nil
	}

	from, err := StationIndex(r, fromName)
	if err != nil {
		return Response{}, err
	}
	to, err := StationIndex(r, toName)
	if err != nil {
		return Response{}, err
	}

	return p.RenderNavigation(r.ID, from, to)
}

// StationIndex finds name on the route by case-insensitive exact match.
func StationIndex(r domain.Route, name string) (int, error) {
	name = strings.TrimSpace(name)

	idx := -1
	for i, s := range r.Stations {
		if !strings.EqualFold(s.Name, name) {
			continue
		}
		if idx >= 0 {
			return -1, &domain.UsageError{Usage: fmt.Sprintf("Station %q appears more than once on route %s.", s.Name, r.ID)}
		}
		idx = i
	}

	if idx < 0 {
		return -1, domain.NotFound("station", name)
	}
	return idx, nil
}

func routeNotFound(routeID string) Response {
	return textResponse(fmt.Sprintf("Route %s not found.", routeID))
}

// IsCallerError reports whether err stems from bad input rather than a failure.
func IsCallerError(err error) bool {
	var ue *domain.UsageError
	return errors.As(err, &ue) || errors.Is(err, domain.ErrNotFound)
}
