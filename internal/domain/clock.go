package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ClockTime is a time of day with minute precision, independent of any date.
type ClockTime struct {
	Hour   int
	Minute int
}

func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 {
		return ClockTime{}, ValidationError{Field: "hour", Msg: "must be between 0 and 23"}
	}
	if minute < 0 || minute > 59 {
		return ClockTime{}, ValidationError{Field: "minute", Msg: "must be between 0 and 59"}
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// ClockFromMinutes builds a clock time from minutes since midnight, wrapping at 24h.
func ClockFromMinutes(minutes int) ClockTime {
	minutes %= 24 * 60
	if minutes < 0 {
		minutes += 24 * 60
	}
	return ClockTime{Hour: minutes / 60, Minute: minutes % 60}
}

func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, ValidationError{Field: "time", Msg: "expected HH:MM", Err: err}
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) Before(other ClockTime) bool {
	return c.Minutes() < other.Minutes()
}

// On places the clock time on the calendar date of day, in day's location.
func (c ClockTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, day.Location())
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCalendarDate reads a journey date. Plain dates and ISO date-times are accepted; only the
// year, month and day as written are kept, placed at midnight in loc.
func ParseCalendarDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ValidationError{Field: "date", Msg: "is required"}
	}
	if loc == nil {
		loc = time.UTC
	}
	layouts := []string{DateLayout, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return CalendarDate(t, loc), nil
		}
	}
	return time.Time{}, ValidationError{Field: "date", Msg: "invalid date format"}
}

// CalendarDate keeps the date components of t as seen in t's own location and returns midnight of
// that date in loc.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
