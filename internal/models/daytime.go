package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DayTime is a time of day stored as minutes since midnight. It serialises
// as "HH:MM" over JSON and as an integer column in the database.
type DayTime int

// ParseDayTime parses a "HH:MM" clock string. Both components must be
// fully numeric; trailing input is rejected.
func ParseDayTime(raw string) (DayTime, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", raw, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", raw, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q: out of clock range", raw)
	}
	return DayTime(hours*60 + minutes), nil
}

// String renders the time as zero-padded "HH:MM".
func (t DayTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Before reports whether t is strictly earlier than other.
func (t DayTime) Before(other DayTime) bool { return t < other }

// After reports whether t is strictly later than other.
func (t DayTime) After(other DayTime) bool { return t > other }

// MarshalJSON encodes the time as a "HH:MM" string.
func (t DayTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts "HH:MM" strings.
func (t *DayTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDayTime(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer storing minutes since midnight.
func (t DayTime) Value() (driver.Value, error) {
	return int64(t), nil
}

// Scan implements sql.Scanner.
func (t *DayTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*t = DayTime(v)
		return nil
	case []byte:
		parsed, err := ParseDayTime(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case string:
		parsed, err := ParseDayTime(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into DayTime", src)
	}
}

// Weekday names a schedulable day. Values are stored uppercase; Sunday is
// recognised for parsing but never schedulable.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

// SchedulableWeekdays lists the days periods may be placed on, in week order.
var SchedulableWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// NormalizeWeekday uppercases the raw day name. The result may still be
// unknown or Sunday; callers validate with Schedulable.
func NormalizeWeekday(raw string) Weekday {
	return Weekday(strings.ToUpper(strings.TrimSpace(raw)))
}

// Known reports whether the value names a real day of the week.
func (d Weekday) Known() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// Schedulable reports whether periods may be placed on this day.
func (d Weekday) Schedulable() bool {
	return d.Known() && d != Sunday
}

// Order returns the position of the day within the week, Monday first.
// Unknown days sort last.
func (d Weekday) Order() int {
	for i, day := range SchedulableWeekdays {
		if day == d {
			return i
		}
	}
	if d == Sunday {
		return len(SchedulableWeekdays)
	}
	return len(SchedulableWeekdays) + 1
}

// Teaching window bounds. Saturday closes early.
const (
	EarliestStart     = DayTime(6*60 + 45)  // 06:45
	LatestEnd         = DayTime(21*60 + 45) // 21:45
	SaturdayLatestEnd = DayTime(15*60 + 45) // 15:45
)

// DayBounds returns the legal start and end of the teaching window for a day.
func DayBounds(d Weekday) (DayTime, DayTime) {
	if d == Saturday {
		return EarliestStart, SaturdayLatestEnd
	}
	return EarliestStart, LatestEnd
}
