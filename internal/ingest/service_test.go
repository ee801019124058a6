package ingest

import (
	"bus-schedule-bot/internal/adapters/extraction"
	"bus-schedule-bot/internal/adapters/memory"
	"bus-schedule-bot/internal/domain"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

var day = time.Date(2025, 4, 17, 0, 0, 0, 0, time.UTC)

func TestIngestCSVPartial(t *testing.T) {
	ctx := context.Background()
	store := memory.NewScheduleStore()
	svc := NewService(store, nil)

	data := []byte(`date,umlauf,start_time,end_time,routes
2025-04-17,U1,08:00,12:00,"31,32"
2025-04-17,U2,8am,14:00,33
2025-04-17,U3,13:00,17:00,31
`)

	res, err := svc.IngestCSV(ctx, 1, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stored != 2 || res.Total != 3 || len(res.Errors) != 1 {
		t.Fatalf("result = %+v, want 2 of 3 stored and one row error", res)
	}
	if res.Status() != Partial {
		t.Fatalf("status = %v, want partial", res.Status())
	}

	shifts, _ := store.ShiftsFor(ctx, 1, day)
	if len(shifts) != 2 || shifts[0].Umlauf != "U1" || shifts[1].Umlauf != "U3" {
		t.Fatalf("stored shifts = %+v", shifts)
	}
}

func TestIngestTextRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewScheduleStore()
	svc := NewService(store, nil)

	res, err := svc.IngestText(ctx, 9, "Date: 2025-04-17\nUmlauf: U1 Time: 08:00-12:00 Routes: 31,32\n")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status() != Succeeded {
		t.Fatalf("status = %v, want succeeded", res.Status())
	}

	shifts, _ := store.ShiftsFor(ctx, 9, day)
	if len(shifts) != 1 {
		t.Fatalf("shifts = %d, want 1", len(shifts))
	}
	s := shifts[0]
	if s.Umlauf != "U1" || s.Start.String() != "08:00" || s.End.String() != "12:00" || strings.Join(s.RouteIDs, ",") != "31,32" {
		t.Fatalf("shift = %+v", s)
	}
}

func TestIngestTextNothingRecognized(t *testing.T) {
	svc := NewService(memory.NewScheduleStore(), nil)

	res, err := svc.IngestText(context.Background(), 1, "just a blurry photo")
	var ie *domain.IngestionError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want IngestionError", err)
	}
	if res.Status() != Failed {
		t.Fatalf("status = %v, want failed", res.Status())
	}
}

func TestIngestDocumentRouting(t *testing.T) {
	ctx := context.Background()
	ocr := &extraction.StaticExtractor{Text: "Date: 2025-04-17\nUmlauf: U7 Time: 05:00-09:00 Routes: 33\n"}
	store := memory.NewScheduleStore()
	svc := NewService(store, ocr)

	csvDoc := Document{Name: "plan.csv", MIMEType: "application/octet-stream", Data: []byte("date,umlauf,start_time,end_time,routes\n2025-04-17,U1,08:00,12:00,31\n")}
	if _, err := svc.IngestDocument(ctx, 1, csvDoc); err != nil {
		t.Fatal(err)
	}
	txtDoc := Document{Name: "plan.txt", MIMEType: "text/plain; charset=utf-8", Data: []byte("Date: 2025-04-17\nUmlauf: U2 Time: 13:00-17:00 Routes: 32\n")}
	if _, err := svc.IngestDocument(ctx, 1, txtDoc); err != nil {
		t.Fatal(err)
	}
	if ocr.Calls() != 0 {
		t.Fatalf("text documents must not go through OCR")
	}

	imgDoc := Document{Name: "scan.jpg", MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}
	if _, err := svc.IngestDocument(ctx, 1, imgDoc); err != nil {
		t.Fatal(err)
	}
	if ocr.Calls() != 1 {
		t.Fatalf("ocr calls = %d, want 1", ocr.Calls())
	}

	shifts, _ := store.ShiftsFor(ctx, 1, day)
	if len(shifts) != 3 {
		t.Fatalf("shifts = %d, want 3", len(shifts))
	}
}

func TestIngestDocumentExtractionFailure(t *testing.T) {
	svc := NewService(memory.NewScheduleStore(), &extraction.StaticExtractor{Err: errors.New("connection refused")})

	_, err := svc.IngestDocument(context.Background(), 1, Document{MIMEType: "application/pdf", Data: []byte("%PDF")})
	var ext *domain.ExternalServiceError
	if !errors.As(err, &ext) {
		t.Fatalf("err = %v, want ExternalServiceError", err)
	}
}

func TestIngestDocumentWithoutExtractor(t *testing.T) {
	svc := NewService(memory.NewScheduleStore(), nil)

	_, err := svc.IngestDocument(context.Background(), 1, Document{MIMEType: "image/png", Data: []byte("png")})
	var ext *domain.ExternalServiceError
	if !errors.As(err, &ext) {
		t.Fatalf("err = %v, want ExternalServiceError", err)
	}
}

// failingStore fails on the nth RecordShift call.
type failingStore struct {
	*memory.ScheduleStore
	failAt int
	calls  int
}

func (f *failingStore) RecordShift(ctx context.Context, driverID int64, date time.Time, s domain.Shift) error {
	f.calls++
	if f.calls == f.failAt {
		return errors.New("disk full")
	}
	return f.ScheduleStore.RecordShift(ctx, driverID, date, s)
}

func TestIngestStoreFailureSurfaces(t *testing.T) {
	store := &failingStore{ScheduleStore: memory.NewScheduleStore(), failAt: 2}
	svc := NewService(store, nil)

	res, err := svc.IngestText(context.Background(), 1,
		"Date: 2025-04-17\nUmlauf: U1 Time: 08:00-12:00 Routes: 31\nUmlauf: U2 Time: 13:00-17:00 Routes: 31\n")
	if err == nil {
		t.Fatalf("expected store error")
	}
	if res.Stored != 1 {
		t.Fatalf("stored = %d, want 1", res.Stored)
	}
}

func TestConcurrentUploadsDoNotInterleave(t *testing.T) {
	ctx := context.Background()
	store := memory.NewScheduleStore()
	svc := NewService(store, nil)

	batch := func(label string) string {
		var b strings.Builder
		b.WriteString("Date: 2025-04-17\n")
		for i := 0; i < 20; i++ {
			b.WriteString("Umlauf: " + label + " Time: 08:00-12:00 Routes: 31\n")
		}
		return b.String()
	}

	var wg sync.WaitGroup
	for _, label := range []string{"A", "B"} {
		wg.Add(1)
		go func(label string) {
			defer wg.Done()
			if _, err := svc.IngestText(ctx, 1, batch(label)); err != nil {
				t.Error(err)
			}
		}(label)
	}
	wg.Wait()

	shifts, _ := store.ShiftsFor(ctx, 1, day)
	if len(shifts) != 40 {
		t.Fatalf("shifts = %d, want 40", len(shifts))
	}
	// Each upload's shifts must form one contiguous run.
	switches := 0
	for i := 1; i < len(shifts); i++ {
		if shifts[i].Umlauf != shifts[i-1].Umlauf {
			switches++
		}
	}
	if switches != 1 {
		t.Fatalf("uploads interleaved: %d label switches, want 1", switches)
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		doc  Document
		want docKind
	}{
		{Document{Name: "a.csv", MIMEType: "application/octet-stream"}, kindCSV},
		{Document{Name: "a", MIMEType: "text/csv; charset=utf-8"}, kindCSV},
		{Document{Name: "week.XLSX", MIMEType: "application/octet-stream"}, kindXLSX},
		{Document{Name: "a", MIMEType: xlsxMIME}, kindXLSX},
		{Document{Name: "notes.txt", MIMEType: "text/plain"}, kindText},
		{Document{Name: "schedule.txt", MIMEType: ""}, kindText},
		{Document{Name: "scan.pdf", MIMEType: "application/pdf"}, kindBinary},
	}

	for _, tc := range cases {
		if got := kindOf(tc.doc); got != tc.want {
			t.Fatalf("kindOf(%s, %s) = %d, want %d", tc.doc.Name, tc.doc.MIMEType, got, tc.want)
		}
	}
}
