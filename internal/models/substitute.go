package models

import "time"

// Substitute pairs an original teacher with a stand-in while the original
// serves as administrator. At most one substitute per original teacher may
// be currently active at any time.
type Substitute struct {
	ID                  string     `db:"id" json:"id"`
	OriginalTeacherID   string     `db:"original_teacher_id" json:"original_teacher_id"`
	SubstituteTeacherID string     `db:"substitute_teacher_id" json:"substitute_teacher_id"`
	StartDate           time.Time  `db:"start_date" json:"start_date"`
	EndDate             *time.Time `db:"end_date" json:"end_date,omitempty"`
	Active              bool       `db:"active" json:"active"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// CurrentlyActiveAt reports whether the substitution is in effect on the
// given day. Comparisons use calendar dates, not instants.
func (s Substitute) CurrentlyActiveAt(today time.Time) bool {
	if !s.Active {
		return false
	}
	day := truncateToDate(today)
	if day.Before(truncateToDate(s.StartDate)) {
		return false
	}
	if s.EndDate != nil && day.After(truncateToDate(*s.EndDate)) {
		return false
	}
	return true
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
