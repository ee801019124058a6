package api

import (
	"bus-schedule-bot/internal/adapters/memory"
	"bus-schedule-bot/internal/api/dto"
	"bus-schedule-bot/internal/catalog"
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/ingest"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cat, err := catalog.New([]domain.Route{
		{ID: "31", Name: "Hauptbahnhof - Bismarckplatz", Stations: []domain.Station{
			{Name: "Hauptbahnhof", Coords: domain.Coordinates{Lat: 49.4037, Lon: 8.6756}},
			{Name: "Bismarckplatz", Coords: domain.Coordinates{Lat: 49.4093, Lon: 8.6931}},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	store := memory.NewScheduleStore()
	drivers := memory.NewDriverRepository()
	if err := drivers.RegisterDriver(context.Background(), domain.Driver{ID: 7, Name: "Anna"}); err != nil {
		t.Fatal(err)
	}

	return NewRouter(Deps{
		Catalog:        cat,
		Store:          store,
		Drivers:        drivers,
		Ingest:         ingest.NewService(store, nil),
		MaxUploadBytes: 1 << 16,
	})
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = do(t, newTestRouter(t), http.MethodPost, "/health", "", "")
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != http.MethodGet {
		t.Fatalf("status = %d allow = %q", rec.Code, rec.Header().Get("Allow"))
	}
}

func TestRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/routes", "", "")
	var list dto.ListRoutesResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Routes) != 1 || list.Routes[0].ID != "31" || len(list.Routes[0].Stations) != 2 {
		t.Fatalf("routes = %+v", list)
	}

	if rec := do(t, h, http.MethodGet, "/routes/31", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("get 31: status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/routes/99", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get 99: status = %d", rec.Code)
	}
}

func TestImportThenGetSchedule(t *testing.T) {
	h := newTestRouter(t)

	body := "date,umlauf,start_time,end_time,routes\n" +
		"2025-04-17,U1,22:00,02:00,31\n" +
		"2025-04-17,U2,25:00,02:00,31\n"

	rec := do(t, h, http.MethodPost, "/drivers/7/schedule/import", "text/csv", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d body = %s", rec.Code, rec.Body)
	}
	var ir dto.IngestResponse
	if err := json.NewDecoder(rec.Body).Decode(&ir); err != nil {
		t.Fatal(err)
	}
	if ir.Status != "partial" || ir.Stored != 1 || len(ir.Errors) != 1 || ir.Errors[0].Row != 2 {
		t.Fatalf("ingest = %+v", ir)
	}

	rec = do(t, h, http.MethodGet, "/drivers/7/schedule?date=2025-04-17", "", "")
	var sr dto.ScheduleResponse
	if err := json.NewDecoder(rec.Body).Decode(&sr); err != nil {
		t.Fatal(err)
	}
	if len(sr.Shifts) != 1 || !sr.Shifts[0].Overnight || sr.Shifts[0].End != "02:00" {
		t.Fatalf("schedule = %+v", sr)
	}
}

func TestScheduleErrors(t *testing.T) {
	h := newTestRouter(t)

	cases := []struct {
		method, path, ct, body string
		want                   int
	}{
		{http.MethodGet, "/drivers/7/schedule?date=17.04.2025", "", "", http.StatusBadRequest},
		{http.MethodGet, "/drivers/abc/schedule?date=2025-04-17", "", "", http.StatusBadRequest},
		{http.MethodGet, "/drivers/8/schedule?date=2025-04-17", "", "", http.StatusNotFound},
		{http.MethodPost, "/drivers/7/schedule/import", "image/png", "x", http.StatusUnsupportedMediaType},
		{http.MethodPost, "/drivers/7/schedule/import", "text/plain", "hello", http.StatusUnprocessableEntity},
		{http.MethodPost, "/drivers/7/schedule/import", "text/csv", strings.Repeat("x", 1<<17), http.StatusRequestEntityTooLarge},
	}

	for _, tc := range cases {
		rec := do(t, h, tc.method, tc.path, tc.ct, tc.body)
		if rec.Code != tc.want {
			t.Fatalf("%s %s: status = %d, want %d (%s)", tc.method, tc.path, rec.Code, tc.want, rec.Body)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "", "")
	if id := rec.Header().Get("X-Request-ID"); len(id) != 36 {
		t.Fatalf("generated request id = %q", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if id := rec.Header().Get("X-Request-ID"); id != "abc" {
		t.Fatalf("propagated request id = %q", id)
	}
}

func TestHealthReportsStorageFailure(t *testing.T) {
	h := NewRouter(Deps{
		Ping: func(ctx context.Context) error { return errors.New("connection refused") },
	})

	rec := do(t, h, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["storage"] != "unavailable" {
		t.Fatalf("body = %v", body)
	}
}
