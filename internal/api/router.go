package api

import (
	"bus-schedule-bot/internal/api/handlers"
	"bus-schedule-bot/internal/ingest"
	"bus-schedule-bot/internal/ports"
	"context"
	"net/http"
)

type Deps struct {
	Catalog        ports.RouteCatalog
	Store          ports.ScheduleStore
	Drivers        ports.DriverRepository
	Ingest         *ingest.Service
	MaxUploadBytes int64

	// Ping checks storage for /health; nil for the in-memory store.
	Ping func(ctx context.Context) error
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{Catalog: d.Catalog}
	scheduleHandler := &handlers.ScheduleHandler{
		Store:          d.Store,
		Drivers:        d.Drivers,
		Ingest:         d.Ingest,
		MaxUploadBytes: d.MaxUploadBytes,
	}

	healthHandler := &handlers.HealthHandler{Ping: d.Ping}

	mux.HandleFunc("/health", healthHandler.Check)
	mux.HandleFunc("/routes", routeHandler.List)
	mux.HandleFunc("/routes/{id}", routeHandler.Get)
	mux.HandleFunc("/drivers/{driver}/schedule", scheduleHandler.Get)
	mux.HandleFunc("/drivers/{driver}/schedule/import", scheduleHandler.Import)

	return loggingMiddleware(mux)
}
