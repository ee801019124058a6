package ingest

import (
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/platform/keylock"
	"bus-schedule-bot/internal/platform/obs"
	"bus-schedule-bot/internal/ports"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type Status int

const (
	Failed Status = iota
	Partial
	Succeeded
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Partial:
		return "partial"
	default:
		return "failed"
	}
}

// Result summarizes one ingestion batch.
// Total counts every recognized row, stored or rejected.
type Result struct {
	Total  int
	Stored int
	Errors []domain.IngestionError
}

func (r Result) Status() Status {
	switch {
	case r.Stored == 0:
		return Failed
	case r.Stored < r.Total:
		return Partial
	default:
		return Succeeded
	}
}

// An uploaded file as delivered by the transport.
type Document struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Service turns documents into stored shifts.
// Writes for the same (driver, date) are serialized so two concurrent uploads
// never interleave their appends.
type Service struct {
	Store     ports.ScheduleStore
	Extractor ports.TextExtractor
	locks     *keylock.Mutex
}

func NewService(store ports.ScheduleStore, extractor ports.TextExtractor) *Service {
	return &Service{Store: store, Extractor: extractor, locks: keylock.New()}
}

// Ingest structured text ("Date: ..." / "Umlauf: ... Time: ... Routes: ...").
func (s *Service) IngestText(ctx context.Context, driverID int64, text string) (Result, error) {
	rows, errs := ParseText(text)
	return s.store(ctx, driverID, rows, errs)
}

// Ingest a CSV upload with header date,umlauf,start_time,end_time,routes.
func (s *Service) IngestCSV(ctx context.Context, driverID int64, data []byte) (Result, error) {
	rows, errs, err := ParseCSV(bytes.NewReader(data))
	if err != nil {
		return Result{}, err
	}
	return s.store(ctx, driverID, rows, errs)
}

// Ingest the first sheet of an .xlsx workbook laid out like the CSV format.
func (s *Service) IngestXLSX(ctx context.Context, driverID int64, data []byte) (Result, error) {
	rows, errs, err := ParseXLSX(bytes.NewReader(data))
	if err != nil {
		return Result{}, err
	}
	return s.store(ctx, driverID, rows, errs)
}

// IngestDocument routes a document to the CSV, spreadsheet or text adapter, or
// through the text extractor first (images, PDF).
func (s *Service) IngestDocument(ctx context.Context, driverID int64, doc Document) (res Result, err error) {
	defer obs.Time(ctx, "ingest.IngestDocument")(&err)

	if len(doc.Data) == 0 {
		return Result{}, &domain.IngestionError{Reason: "empty document"}
	}

	switch kindOf(doc) {
	case kindCSV:
		return s.IngestCSV(ctx, driverID, doc.Data)
	case kindXLSX:
		return s.IngestXLSX(ctx, driverID, doc.Data)
	case kindText:
		return s.IngestText(ctx, driverID, string(doc.Data))
	}

	if s.Extractor == nil {
		return Result{}, &domain.ExternalServiceError{Service: "text extraction", Err: errors.New("no extractor configured")}
	}

	text, err := s.Extractor.ExtractText(ctx, doc.Data, doc.MIMEType)
	if err != nil {
		var (
			ext *domain.ExternalServiceError
			ie  *domain.IngestionError
		)
		if !errors.As(err, &ext) && !errors.As(err, &ie) {
			err = &domain.ExternalServiceError{Service: "text extraction", Err: err}
		}
		return Result{}, err
	}

	return s.IngestText(ctx, driverID, text)
}

type docKind int

const (
	kindBinary docKind = iota
	kindCSV
	kindXLSX
	kindText
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func kindOf(doc Document) docKind {
	mime := strings.ToLower(strings.TrimSpace(doc.MIMEType))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	switch mime {
	case "text/csv", "application/csv", "text/comma-separated-values":
		return kindCSV
	case xlsxMIME:
		return kindXLSX
	case "text/plain":
		if strings.EqualFold(filepath.Ext(doc.Name), ".csv") {
			return kindCSV
		}
		return kindText
	}

	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".csv":
		return kindCSV
	case ".xlsx":
		return kindXLSX
	case ".txt":
		return kindText
	}
	return kindBinary
}

func (s *Service) store(ctx context.Context, driverID int64, rows []Row, errs []domain.IngestionError) (Result, error) {
	res := Result{Total: len(rows) + len(errs), Errors: errs}
	if len(rows) == 0 {
		if len(errs) == 0 {
			return res, &domain.IngestionError{Reason: "no schedule entries found"}
		}
		return res, nil
	}

	byDate := make(map[time.Time][]Row)
	dates := make([]time.Time, 0)
	for _, r := range rows {
		if _, ok := byDate[r.Date]; !ok {
			dates = append(dates, r.Date)
		}
		byDate[r.Date] = append(byDate[r.Date], r)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	for _, d := range dates {
		n, err := s.storeDay(ctx, driverID, d, byDate[d])
		res.Stored += n
		if err != nil {
			return res, fmt.Errorf("ingest: store %s: %w", d.Format(domain.DateLayout), err)
		}
	}

	log.Printf("op=ingest driver=%d total=%d stored=%d rejected=%d", driverID, res.Total, res.Stored, len(res.Errors))
	return res, nil
}

func (s *Service) storeDay(ctx context.Context, driverID int64, date time.Time, rows []Row) (int, error) {
	unlock := s.locks.Lock(fmt.Sprintf("%d|%s", driverID, date.Format(domain.DateLayout)))
	defer unlock()

	for i, r := range rows {
		if err := s.Store.RecordShift(ctx, driverID, date, r.Shift); err != nil {
			return i, err
		}
	}
	return len(rows), nil
}
