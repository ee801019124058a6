package ingest

import (
	"bus-schedule-bot/internal/domain"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Header columns of the tabular upload format.
var csvColumns = []string{"date", "umlauf", "start_time", "end_time", "routes"}

// ParseCSV reads rows of date,umlauf,start_time,end_time,routes.
//
// Every data row stands alone. A row with a missing column or an unparseable
// value becomes a row error and the remaining rows are still parsed.
// The returned error is only set when the input as a whole is unreadable
// (empty, missing header columns, I/O failure).
func ParseCSV(r io.Reader) ([]Row, []domain.IngestionError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, &domain.IngestionError{Reason: "empty file"}
		}
		return nil, nil, &domain.IngestionError{Reason: fmt.Sprintf("read header: %v", err)}
	}

	index, err := headerIndex(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		rows []Row
		errs []domain.IngestionError
	)
	for rowNo := 1; ; rowNo++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				errs = append(errs, domain.IngestionError{Row: rowNo, Reason: pe.Err.Error()})
				continue
			}
			return rows, errs, &domain.IngestionError{Reason: fmt.Sprintf("read row %d: %v", rowNo, err)}
		}

		if isBlank(rec) {
			rowNo--
			continue
		}

		// An unquoted route list spills into extra fields.
		if len(rec) > len(header) {
			errs = append(errs, domain.IngestionError{
				Row:    rowNo,
				Reason: fmt.Sprintf("expected %d columns, got %d; quote the routes field", len(header), len(rec)),
			})
			continue
		}

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

// headerIndex maps column names to positions. Names are case-insensitive and
// may come in any order.
func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		index[h] = i
	}
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			return nil, &domain.IngestionError{Reason: fmt.Sprintf("missing column %q", col)}
		}
	}
	return index, nil
}

func parseRecord(rec []string, index map[string]int) (Row, error) {
	field := func(col string) (string, error) {
		i := index[col]
		if i >= len(rec) || strings.TrimSpace(rec[i]) == "" {
			return "", fmt.Errorf("missing %s", col)
		}
		return rec[i], nil
	}

	vals := make(map[string]string, len(csvColumns))
	for _, col := range csvColumns {
		v, err := field(col)
		if err != nil {
			return Row{}, err
		}
		vals[col] = v
	}

	date, err := domain.ParseDate(vals["date"])
	if err != nil {
		return Row{}, err
	}
	shift, err := domain.NewShift(vals["umlauf"], vals["start_time"], vals["end_time"], vals["routes"])
	if err != nil {
		return Row{}, err
	}

	return Row{Date: date, Shift: shift}, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
