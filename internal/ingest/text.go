package ingest

import (
	"bus-schedule-bot/internal/domain"
	"bufio"
	"regexp"
	"strings"
	"time"
)

var (
	dateLinePattern  = regexp.MustCompile(`\bDate:\s*(\d{4}-\d{2}-\d{2})`)
	shiftLinePattern = regexp.MustCompile(`(?i)Umlauf:\s*(\S+)\s+Time:\s*(\S+?)\s*-\s*(\S+)\s+Routes:\s*(.+?)\s*$`)
)

// A parsed shift together with the date it belongs to.
// Line is the 1-based source line or CSV data row.
type Row struct {
	Line  int
	Date  time.Time
	Shift domain.Shift
}

type scanState int

const (
	noDateContext scanState = iota
	haveDateContext
)

// textScanner is a two-state machine over the lines of extracted text.
//
//	noDateContext   --date line-->  haveDateContext
//	noDateContext   --shift line--> noDateContext   (line discarded, reported)
//	haveDateContext --date line-->  haveDateContext (date replaced)
//	haveDateContext --shift line--> haveDateContext (row emitted)
//	any             --bad date-->   noDateContext
//
// Lines matching neither pattern are OCR noise and are skipped silently.
type textScanner struct {
	state scanState
	date  time.Time
	rows  []Row
	errs  []domain.IngestionError
}

func (s *textScanner) feed(lineNo int, line string) {
	if m := dateLinePattern.FindStringSubmatch(line); m != nil {
		d, err := domain.ParseDate(m[1])
		if err != nil {
			s.state = noDateContext
			s.date = time.Time{}
			s.errs = append(s.errs, domain.IngestionError{Row: lineNo, Reason: err.Error()})
			return
		}
		s.state = haveDateContext
		s.date = d
		return
	}

	m := shiftLinePattern.FindStringSubmatch(line)
	if m == nil {
		return
	}

	switch s.state {
	case noDateContext:
		s.errs = append(s.errs, domain.IngestionError{Row: lineNo, Reason: "shift line before any date marker"})
	case haveDateContext:
		shift, err := domain.NewShift(m[1], m[2], m[3], m[4])
		if err != nil {
			s.errs = append(s.errs, domain.IngestionError{Row: lineNo, Reason: err.Error()})
			return
		}
		s.rows = append(s.rows, Row{Line: lineNo, Date: s.date, Shift: shift})
	}
}

// ParseText scans structured text in one forward pass.
// A "Date: YYYY-MM-DD" line sets the date for the
// "Umlauf: <label> Time: HH:MM-HH:MM Routes: <ids>" lines that follow it.
func ParseText(text string) ([]Row, []domain.IngestionError) {
	var s textScanner

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		s.feed(lineNo, sc.Text())
	}
	if err := sc.Err(); err != nil {
		s.errs = append(s.errs, domain.IngestionError{Row: lineNo + 1, Reason: err.Error()})
	}

	return s.rows, s.errs
}
