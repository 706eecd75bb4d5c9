package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// TimeOfDay is a clock time without a date, stored as minutes since midnight.
// All booking times are local date + time-of-day; no timezone conversion is applied.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (24h) into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, ErrInvalidInput)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time of day %q out of range: %w", s, ErrInvalidInput)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// AddMinutes returns the time-of-day m minutes later.
func (t TimeOfDay) AddMinutes(m int) TimeOfDay {
	return t + TimeOfDay(m)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer so a TimeOfDay maps to a Postgres TIME column.
func (t TimeOfDay) Value() (driver.Value, error) {
	return fmt.Sprintf("%s:00", t.String()), nil
}

// Scan implements sql.Scanner for TIME columns (lib/pq returns them as bytes or string).
func (t *TimeOfDay) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeSlot is an immutable half-open interval [Start, End) of time-of-day.
// The overlap policy is boundary-exclusive everywhere: [09:00,10:00) and
// [10:00,11:00) do not overlap.
type TimeSlot struct {
	Start TimeOfDay `json:"start_time"`
	End   TimeOfDay `json:"end_time"`
}

// NewTimeSlot returns a TimeSlot, or ErrInvalidTimeRange unless start < end.
func NewTimeSlot(start, end TimeOfDay) (TimeSlot, error) {
	if start >= end {
		return TimeSlot{}, ErrInvalidTimeRange
	}
	return TimeSlot{Start: start, End: end}, nil
}

// Overlaps reports whether the two half-open intervals share any time. It is symmetric.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.Start < other.End && other.Start < s.End
}

// Contains reports whether s fully encloses other.
func (s TimeSlot) Contains(other TimeSlot) bool {
	return s.Start <= other.Start && s.End >= other.End
}

// DurationMinutes returns the slot length in minutes.
func (s TimeSlot) DurationMinutes() int {
	return int(s.End - s.Start)
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("[%s,%s)", s.Start, s.End)
}
