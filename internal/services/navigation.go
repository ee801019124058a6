package services

import (
	"bus-schedule-bot/internal/domain"
	"fmt"
	"net/url"
	"strings"
)

// One hop between adjacent stations.
type Segment struct {
	From domain.Station
	To   domain.Station
}

// Navigation is a walk along a route's station list.
// Segments are consecutive pairs in travel order; MapLink points at the destination.
type Navigation struct {
	RouteID  string
	Segments []Segment
	MapLink  string
}

func (n Navigation) Destination() domain.Station {
	return n.Segments[len(n.Segments)-1].To
}

// PlanNavigation walks from index from to index to in either direction.
// Walking j->i visits exactly the stations of i->j, reversed.
func PlanNavigation(r domain.Route, from, to int) (Navigation, error) {
	n := len(r.Stations)
	if from < 0 || from >= n || to < 0 || to >= n {
		return Navigation{}, &domain.UsageError{
			Usage: fmt.Sprintf("Station index out of range: route %s has stations 0..%d.", r.ID, n-1),
		}
	}
	if from == to {
		return Navigation{}, &domain.UsageError{Usage: "Start and destination are the same station."}
	}

	step := 1
	if to < from {
		step = -1
	}

	segments := make([]Segment, 0, (to-from)*step)
	for i := from; i != to; i += step {
		segments = append(segments, Segment{From: r.Stations[i], To: r.Stations[i+step]})
	}

	return Navigation{
		RouteID:  r.ID,
		Segments: segments,
		MapLink:  MapLink(r.Stations[to].Coords),
	}, nil
}

// MapLink builds a map search URL for c.
func MapLink(c domain.Coordinates) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", c.String())
	return "https://www.google.com/maps/search/?" + q.Encode()
}

func renderNavigation(nav Navigation) Response {
	var b strings.Builder
	fmt.Fprintf(&b, "Navigation on route %s from %s to %s:\n\n",
		nav.RouteID, nav.Segments[0].From.Name, nav.Destination().Name)
	for i, s := range nav.Segments {
		fmt.Fprintf(&b, "%d. %s → %s\n", i+1, s.From.Name, s.To.Name)
	}
	fmt.Fprintf(&b, "\nMap: %s\n", nav.MapLink)

	return textResponse(b.String())
}
