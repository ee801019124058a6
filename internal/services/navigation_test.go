package services

import (
	"bus-schedule-bot/internal/domain"
	"testing"
)

func TestPlanNavigationSymmetric(t *testing.T) {
	r := domain.Route{
		ID:       "31",
		Stations: []domain.Station{hauptbahnhof, bismarckplatz, universitaetsplatz, technologiepark},
	}

	for i := range r.Stations {
		for j := range r.Stations {
			if i == j {
				continue
			}

			fwd, err := PlanNavigation(r, i, j)
			if err != nil {
				t.Fatalf("%d->%d: %v", i, j, err)
			}
			rev, err := PlanNavigation(r, j, i)
			if err != nil {
				t.Fatalf("%d->%d: %v", j, i, err)
			}

			if len(fwd.Segments) != len(rev.Segments) {
				t.Fatalf("%d<->%d: segment counts %d vs %d", i, j, len(fwd.Segments), len(rev.Segments))
			}
			n := len(fwd.Segments)
			for k, s := range fwd.Segments {
				back := rev.Segments[n-1-k]
				if s.From.Name != back.To.Name || s.To.Name != back.From.Name {
					t.Fatalf("%d<->%d: segment %d %s→%s not mirrored by %s→%s",
						i, j, k, s.From.Name, s.To.Name, back.From.Name, back.To.Name)
				}
			}
		}
	}
}

func TestPlanNavigationWalk(t *testing.T) {
	r := domain.Route{
		ID:       "31",
		Stations: []domain.Station{hauptbahnhof, bismarckplatz, universitaetsplatz, technologiepark},
	}

	nav, err := PlanNavigation(r, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(nav.Segments) != 3 {
		t.Fatalf("segments = %d, want 3", len(nav.Segments))
	}
	if nav.Segments[0].From.Name != "Technologiepark" || nav.Destination().Name != "Hauptbahnhof" {
		t.Fatalf("walk = %+v", nav.Segments)
	}
	if nav.MapLink != MapLink(hauptbahnhof.Coords) {
		t.Fatalf("map link = %s", nav.MapLink)
	}
}
