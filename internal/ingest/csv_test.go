package ingest

import (
	"bus-schedule-bot/internal/domain"
	"errors"
	"strings"
	"testing"
)

func TestParseCSVSkipsBadRow(t *testing.T) {
	in := `date,umlauf,start_time,end_time,routes
2025-04-17,U1,08:00,12:00,"31,32"
2025-04-17,U2,25:00,14:00,33
2025-04-18,U3,13:00,17:00,31
`
	rows, errs, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if len(errs) != 1 || errs[0].Row != 2 {
		t.Fatalf("errs = %+v, want one error on row 2", errs)
	}
	if strings.Join(rows[0].Shift.RouteIDs, ",") != "31,32" {
		t.Fatalf("quoted routes = %v", rows[0].Shift.RouteIDs)
	}
	if rows[1].Shift.Umlauf != "U3" || rows[1].Line != 3 {
		t.Fatalf("row 3 = %+v", rows[1])
	}
}

func TestParseCSVHeaderOrderAndMissingColumn(t *testing.T) {
	in := "Routes,Umlauf,Date,End_Time,Start_Time\n31,U1,2025-04-17,12:00,08:00\n32,U2,2025-04-17\n"

	rows, errs, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Shift.Start.String() != "08:00" {
		t.Fatalf("rows = %+v", rows)
	}
	if len(errs) != 1 || !strings.Contains(errs[0].Reason, "missing") {
		t.Fatalf("errs = %+v, want a missing-column row error", errs)
	}
}

func TestParseCSVUnreadable(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"missing header": "date,umlauf,start_time\n2025-04-17,U1,08:00\n",
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseCSV(strings.NewReader(in))
			var ie *domain.IngestionError
			if !errors.As(err, &ie) || ie.Row != 0 {
				t.Fatalf("err = %v, want document-level ingestion error", err)
			}
		})
	}
}

func TestParseCSVBlankLinesIgnored(t *testing.T) {
	in := "date,umlauf,start_time,end_time,routes\n\n2025-04-17,U1,08:00,12:00,31\n,,,,\n"

	rows, errs, err := ParseCSV(strings.NewReader(in))
	if err != nil || len(errs) != 0 {
		t.Fatalf("err = %v errs = %+v", err, errs)
	}
	if len(rows) != 1 || rows[0].Line != 1 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestParseCSVUnquotedRoutesRejected(t *testing.T) {
	in := "date,umlauf,start_time,end_time,routes\n" +
		"2025-04-17,U1,08:00,12:00,31,32\n" +
		"2025-04-17,U2,13:00,17:00,\"31,32\"\n"

	rows, errs, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 1 || errs[0].Row != 1 || !strings.Contains(errs[0].Reason, "quote the routes field") {
		t.Fatalf("errs = %+v, want a column-count error on row 1", errs)
	}
	if len(rows) != 1 || rows[0].Shift.Umlauf != "U2" || len(rows[0].Shift.RouteIDs) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
}
