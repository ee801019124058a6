package repositories

import (
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/platform/db"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(conn, db.SQLite); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return conn
}

func TestSQLScheduleStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSQLScheduleStore(openTestDB(t), db.SQLite)
	day := time.Date(2025, 4, 17, 0, 0, 0, 0, time.UTC)

	u1, _ := domain.NewShift("U1", "08:00", "12:00", "31,32")
	u2, _ := domain.NewShift("U2", "22:00", "01:30", "33")

	for _, s := range []domain.Shift{u1, u2, u1} {
		if err := store.RecordShift(ctx, 100, day, s); err != nil {
			t.Fatalf("record shift: %v", err)
		}
	}

	got, err := store.ShiftsFor(ctx, 100, day)
	if err != nil {
		t.Fatalf("shifts for: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("shifts = %d, want 3", len(got))
	}
	if got[0].Umlauf != "U1" || got[1].Umlauf != "U2" || got[2].Umlauf != "U1" {
		t.Fatalf("order = %s,%s,%s, want U1,U2,U1", got[0].Umlauf, got[1].Umlauf, got[2].Umlauf)
	}
	if got[0].Start.String() != "08:00" || got[0].End.String() != "12:00" {
		t.Fatalf("times = %s-%s", got[0].Start, got[0].End)
	}
	if strings.Join(got[0].RouteIDs, ",") != "31,32" {
		t.Fatalf("routes = %v", got[0].RouteIDs)
	}
	if !got[1].Overnight() {
		t.Fatalf("U2 should be overnight")
	}

	empty, err := store.ShiftsFor(ctx, 100, day.AddDate(0, 0, 1))
	if err != nil || len(empty) != 0 {
		t.Fatalf("next day = %v, %v; want empty", empty, err)
	}
}

func TestSQLDriverRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLDriverRepository(openTestDB(t), db.SQLite)

	if _, err := repo.GetDriver(ctx, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	if err := repo.RegisterDriver(ctx, domain.Driver{ID: 5, Name: "Jonas"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.RegisterDriver(ctx, domain.Driver{ID: 5, Name: "Jonas B."}); err != nil {
		t.Fatal(err)
	}

	d, err := repo.GetDriver(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "Jonas B." {
		t.Fatalf("name = %q, want Jonas B.", d.Name)
	}
}

func TestSQLRouteRepositoryReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRouteRepository(openTestDB(t), db.SQLite)

	first := []domain.Route{
		{ID: "32", Name: "B", Stations: []domain.Station{{Name: "X"}, {Name: "Y"}}},
		{ID: "31", Name: "A", Stations: []domain.Station{
			{Name: "Hauptbahnhof", Coords: domain.Coordinates{Lat: 49.4036, Lon: 8.6759}},
			{Name: "Bismarckplatz", Coords: domain.Coordinates{Lat: 49.4095, Lon: 8.693}},
		}},
	}
	if err := repo.SaveRoutes(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveRoutes(ctx, first[1:]); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListRoutes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "31" {
		t.Fatalf("routes = %+v, want only 31", got)
	}
	if got[0].Stations[1].Coords.Lon != 8.693 {
		t.Fatalf("coords not preserved: %+v", got[0].Stations[1])
	}
}
