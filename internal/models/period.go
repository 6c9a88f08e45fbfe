package models

import "time"

// Period is a single weekly time block binding a subject to a room.
// Instances are immutable values; edits replace the stored row by id.
type Period struct {
	ID        string    `db:"id" json:"id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	Weekday   Weekday   `db:"weekday" json:"weekday"`
	StartTime DayTime   `db:"start_time" json:"start_time"`
	EndTime   DayTime   `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Overlaps reports whether two periods clash. Callers are expected to have
// already scoped both periods to the same room and day. The comparison is
// inclusive: periods that merely touch at an endpoint count as overlapping.
func (p Period) Overlaps(other Period) bool {
	return !p.EndTime.Before(other.StartTime) && !p.StartTime.After(other.EndTime)
}

// PeriodFilter describes query params for listing periods.
type PeriodFilter struct {
	RoomID    string
	SubjectID string
	Weekday   Weekday
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// PeriodConflict describes an existing period that blocks a candidate.
type PeriodConflict struct {
	PeriodID  string  `json:"period_id"`
	SubjectID string  `json:"subject_id"`
	RoomID    string  `json:"room_id"`
	Weekday   Weekday `json:"weekday"`
	StartTime DayTime `json:"start_time"`
	EndTime   DayTime `json:"end_time"`
}

// PeriodConflictError is returned when a candidate period collides with an
// existing one in the same room and day.
type PeriodConflictError struct {
	Message  string         `json:"message"`
	Conflict PeriodConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *PeriodConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// SeedFailure records a room/day combination skipped during bulk seeding.
type SeedFailure struct {
	RoomID  string  `json:"room_id"`
	Weekday Weekday `json:"weekday"`
	Reason  string  `json:"reason"`
}

// SeedResult summarises a bulk seeding run.
type SeedResult struct {
	Created []Period      `json:"created"`
	Skipped []SeedFailure `json:"skipped,omitempty"`
}
