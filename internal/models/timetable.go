package models

// TimetableEntry is a period resolved against room and subject names for
// read and export surfaces.
type TimetableEntry struct {
	PeriodID    string  `json:"period_id"`
	RoomID      string  `json:"room_id"`
	RoomName    string  `json:"room_name"`
	SubjectID   string  `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	Weekday     Weekday `json:"weekday"`
	StartTime   DayTime `json:"start_time"`
	EndTime     DayTime `json:"end_time"`
}

// RoomTimetable is the weekly timetable of a single room, ordered by day
// then start time.
type RoomTimetable struct {
	Room    Room             `json:"room"`
	Entries []TimetableEntry `json:"entries"`
}
