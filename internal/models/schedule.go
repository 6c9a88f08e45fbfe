package models

import "time"

// Schedule groups the periods taught by one professor for one subject and
// group. It aggregates periods by id only; the canonical period rows stay
// owned by the period store.
type Schedule struct {
	ID          string    `db:"id" json:"id"`
	ProfessorID string    `db:"professor_id" json:"professor_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	GroupLabel  string    `db:"group_label" json:"group_label"`
	ClassType   string    `db:"class_type" json:"class_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	PeriodIDs []string `db:"-" json:"period_ids"`
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	ProfessorID string
	SubjectID   string
	GroupLabel  string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// ScheduleView is a schedule with its periods resolved for read surfaces.
type ScheduleView struct {
	Schedule Schedule `json:"schedule"`
	Periods  []Period `json:"periods"`
}
