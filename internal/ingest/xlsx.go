package ingest

import (
	"bus-schedule-bot/internal/domain"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first worksheet of a spreadsheet laid out like the CSV
// format: one header row, then one shift per row. Row numbering and error
// semantics match ParseCSV.
func ParseXLSX(r io.Reader) ([]Row, []domain.IngestionError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, &domain.IngestionError{Reason: fmt.Sprintf("open spreadsheet: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, &domain.IngestionError{Reason: "spreadsheet has no sheets"}
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, &domain.IngestionError{Reason: fmt.Sprintf("read sheet %q: %v", sheets[0], err)}
	}
	if len(records) == 0 {
		return nil, nil, &domain.IngestionError{Reason: "empty file"}
	}

	index, err := headerIndex(records[0])
	if err != nil {
		return nil, nil, err
	}

	var (
		rows []Row
		errs []domain.IngestionError
	)
	rowNo := 0
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		rowNo++

		normalizeSerialDate(rec, index["date"])

		row, err := parseRecord(rec, index)
		if err != nil {
			errs = append(errs, domain.IngestionError{Row: rowNo, Reason: err.Error()})
			continue
		}
		row.Line = rowNo
		rows = append(rows, row)
	}

	return rows, errs, nil
}

// Spreadsheets often store dates as serial day numbers. Rewrite such a cell
// to YYYY-MM-DD in place; anything else is left for the date parser.
func normalizeSerialDate(rec []string, i int) {
	if i >= len(rec) {
		return
	}
	v := strings.TrimSpace(rec[i])
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil || serial < 1 {
		return
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return
	}
	rec[i] = t.Format(domain.DateLayout)
}
