package handlers

import (
	"bus-schedule-bot/internal/api/dto"
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/ports"
	"errors"
	"net/http"
	"strings"
)

// RouteHandler exposes the read-only route catalog.
type RouteHandler struct {
	Catalog ports.RouteCatalog
}

func toRouteResponse(r domain.Route) dto.RouteResponse {
	res := dto.RouteResponse{
		ID:       r.ID,
		Name:     r.Name,
		Stations: make([]dto.StationResponse, 0, len(r.Stations)),
	}
	for _, s := range r.Stations {
		res.Stations = append(res.Stations, dto.StationResponse{
			Name: s.Name,
			Lat:  s.Coords.Lat,
			Lon:  s.Coords.Lon,
		})
	}
	return res
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	routes := h.Catalog.ListAll()
	res := dto.ListRoutesResponse{
		Routes: make([]dto.RouteResponse, 0, len(routes)),
	}
	for _, rt := range routes {
		res.Routes = append(res.Routes, toRouteResponse(rt))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	rt, err := h.Catalog.Lookup(id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toRouteResponse(rt))
}
