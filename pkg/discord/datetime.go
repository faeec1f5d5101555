package discord

import (
	"strings"
	"time"

	"rosterbot/internal/domain"
	"rosterbot/pkg/tz"
)

const (
	dateLayout    = "02/01/2006"
	clockLayout   = "15:04"
	displayLayout = "Mon 02/01/2006 15:04"
)

// ParseEventDateTime parses date (DD/MM/YYYY) and time (HH:MM) in London time.
// It fails with domain.ErrInvalidDateTime on malformed input and with
// domain.ErrDateTimeInPast when the instant is not after now.
func ParseEventDateTime(dateStr, timeStr string, now time.Time) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)
	if dateStr == "" || timeStr == "" {
		return time.Time{}, domain.ErrInvalidDateTime
	}
	tDate, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDateTime
	}
	tTime, err := time.Parse(clockLayout, timeStr)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDateTime
	}
	dt := time.Date(tDate.Year(), tDate.Month(), tDate.Day(),
		tTime.Hour(), tTime.Minute(), 0, 0, tz.London)
	if !dt.After(now) {
		return time.Time{}, domain.ErrDateTimeInPast
	}
	return dt, nil
}

// ParseKickoff parses "DD/MM/YYYY HH:MM". An empty string is no kickoff.
func ParseKickoff(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	date, clock, ok := strings.Cut(s, " ")
	if !ok {
		return time.Time{}, domain.ErrInvalidDateTime
	}
	return ParseEventDateTime(date, clock, now)
}

func FormatEventDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(tz.London).Format(displayLayout)
}

// FormatClock renders the London wall-clock time of t ("20:30").
func FormatClock(t time.Time) string {
	return t.In(tz.London).Format(clockLayout)
}
