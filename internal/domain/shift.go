package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var clockPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Minutes since midnight, rendered as 24-hour HH:MM.
type TimeOfDay int

// Parse a strict 24-hour "HH:MM" value.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if !clockPattern.MatchString(s) {
		return 0, fmt.Errorf("parse time %q: want HH:MM", s)
	}

	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", s, err)
	}

	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Parse a calendar date in YYYY-MM-DD form. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

// Truncate an instant to its calendar date in loc, expressed as midnight UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Represents one duty (Umlauf) of a driver on one calendar date.
// An End before Start marks a shift that runs past midnight.
type Shift struct {
	Umlauf   string
	Start    TimeOfDay
	End      TimeOfDay
	RouteIDs []string
}

// Overnight reports whether the shift ends on the following day.
func (s Shift) Overnight() bool { return s.End < s.Start }

// Build a validated Shift from raw field values.
// The route list is split on commas; blank entries are dropped.
func NewShift(umlauf, start, end, routes string) (Shift, error) {
	umlauf = strings.TrimSpace(umlauf)
	if umlauf == "" {
		return Shift{}, fmt.Errorf("new shift: umlauf is empty")
	}

	st, err := ParseTimeOfDay(start)
	if err != nil {
		return Shift{}, fmt.Errorf("new shift: start: %w", err)
	}
	en, err := ParseTimeOfDay(end)
	if err != nil {
		return Shift{}, fmt.Errorf("new shift: end: %w", err)
	}

	ids := SplitRouteIDs(routes)
	if len(ids) == 0 {
		return Shift{}, fmt.Errorf("new shift: route list is empty")
	}

	return Shift{Umlauf: umlauf, Start: st, End: en, RouteIDs: ids}, nil
}

// Validate checks the invariants of a shift that was not built by NewShift.
func (s Shift) Validate() error {
	if strings.TrimSpace(s.Umlauf) == "" {
		return fmt.Errorf("shift: umlauf is empty")
	}
	if s.Start < 0 || s.Start >= 24*60 || s.End < 0 || s.End >= 24*60 {
		return fmt.Errorf("shift %s: time out of range", s.Umlauf)
	}
	if len(s.RouteIDs) == 0 {
		return fmt.Errorf("shift %s: route list is empty", s.Umlauf)
	}
	return nil
}

// Split a comma-joined route list, trimming whitespace around each id.
func SplitRouteIDs(s string) []string {
	parts := strings.Split(s, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ids = append(ids, p)
	}
	return ids
}
