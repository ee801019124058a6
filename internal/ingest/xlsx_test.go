package ingest

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func spreadsheet(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	data := spreadsheet(t,
		[]any{"Date", "Umlauf", "Start_Time", "End_Time", "Routes"},
		[]any{"2025-04-17", "U1", "08:00", "12:00", "31,32"},
		[]any{"2025-04-17", "U2", "8 Uhr", "12:00", "33"},
		[]any{45764, "U3", "13:00", "17:00", "31"},
	)

	rows, errs, err := ParseXLSX(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want 2", rows)
	}
	if len(errs) != 1 || errs[0].Row != 2 {
		t.Fatalf("errs = %+v, want one error on row 2", errs)
	}
	// 45764 is the spreadsheet serial for 2025-04-17.
	if got := rows[1].Date.Format("2006-01-02"); got != "2025-04-17" || rows[1].Line != 3 {
		t.Fatalf("serial date row = %s line %d", got, rows[1].Line)
	}
}

func TestParseXLSXMissingColumn(t *testing.T) {
	data := spreadsheet(t, []any{"date", "umlauf"}, []any{"2025-04-17", "U1"})

	if _, _, err := ParseXLSX(bytes.NewReader(data)); err == nil {
		t.Fatalf("expected document-level error")
	}
}

func TestParseXLSXNotASpreadsheet(t *testing.T) {
	if _, _, err := ParseXLSX(bytes.NewReader([]byte("date,umlauf\n"))); err == nil {
		t.Fatalf("expected error")
	}
}
