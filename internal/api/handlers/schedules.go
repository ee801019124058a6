package handlers

import (
	"bus-schedule-bot/internal/api/dto"
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/ingest"
	"bus-schedule-bot/internal/ports"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
)

const defaultMaxUploadBytes = 10 << 20

type ScheduleHandler struct {
	Store          ports.ScheduleStore
	Drivers        ports.DriverRepository
	Ingest         *ingest.Service
	MaxUploadBytes int64
}

func (h *ScheduleHandler) driver(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("driver"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "driver must be an integer")
		return 0, false
	}

	if _, err := h.Drivers.GetDriver(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "driver not found")
			return 0, false
		}
		log.Printf("get driver failed: driver=%d err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return 0, false
	}
	return id, true
}

// Get returns the driver's shifts for the date given as ?date=YYYY-MM-DD.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date, err := domain.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	driverID, ok := h.driver(w, r)
	if !ok {
		return
	}

	shifts, err := h.Store.ShiftsFor(r.Context(), driverID, date)
	if err != nil {
		log.Printf("list shifts failed: driver=%d err=%v", driverID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ScheduleResponse{
		DriverID: driverID,
		Date:     date.Format(domain.DateLayout),
		Shifts:   make([]dto.ShiftResponse, 0, len(shifts)),
	}
	for _, s := range shifts {
		res.Shifts = append(res.Shifts, dto.ShiftResponse{
			Umlauf:    s.Umlauf,
			Start:     s.Start.String(),
			End:       s.End.String(),
			Overnight: s.Overnight(),
			Routes:    s.RouteIDs,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Import ingests a CSV or structured-text schedule posted as the request body.
// The Content-Type header selects the parser.
func (h *ScheduleHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	driverID, ok := h.driver(w, r)
	if !ok {
		return
	}

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}

	defer r.Body.Close()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "could not read body")
		return
	}

	mime := r.Header.Get("Content-Type")
	switch strings.TrimSpace(strings.SplitN(mime, ";", 2)[0]) {
	case "text/csv", "text/plain":
	default:
		writeError(w, r, http.StatusUnsupportedMediaType, "content type must be text/csv or text/plain")
		return
	}

	res, err := h.Ingest.IngestDocument(r.Context(), driverID, ingest.Document{
		Name:     "upload",
		MIMEType: mime,
		Data:     data,
	})
	if err != nil {
		var ie *domain.IngestionError
		if errors.As(err, &ie) {
			writeError(w, r, http.StatusUnprocessableEntity, ie.Reason)
			return
		}
		log.Printf("import failed: driver=%d err=%v", driverID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	out := dto.IngestResponse{
		Status: res.Status().String(),
		Total:  res.Total,
		Stored: res.Stored,
		Errors: make([]dto.RowErrorResponse, 0, len(res.Errors)),
	}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, dto.RowErrorResponse{Row: e.Row, Reason: e.Reason})
	}

	status := http.StatusOK
	if res.Status() == ingest.Failed {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, r, status, out)
}
