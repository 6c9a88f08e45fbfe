package storage

import (
	"fmt"
	"path/filepath"
	"time"
)

// ScheduleFiles manages the per-professor schedule files kept alongside
// rendered exports. A professor acting as administrator has no personal
// teaching file; the role transition deletes and recreates it.
type ScheduleFiles struct {
	store *LocalStorage
}

// NewScheduleFiles returns a ScheduleFiles handle rooted in store.
func NewScheduleFiles(store *LocalStorage) *ScheduleFiles {
	return &ScheduleFiles{store: store}
}

func scheduleFilePath(professorID string) string {
	return filepath.Join("professors", fmt.Sprintf("%s.txt", professorID))
}

// Create writes an empty schedule file stamped with its creation time.
func (s *ScheduleFiles) Create(professorID string) error {
	content := fmt.Sprintf("schedule for %s\ncreated %s\n", professorID, time.Now().UTC().Format(time.RFC3339))
	if _, err := s.store.Save(scheduleFilePath(professorID), []byte(content)); err != nil {
		return fmt.Errorf("create schedule file: %w", err)
	}
	return nil
}

// Delete removes the professor's schedule file. Missing files are not an
// error.
func (s *ScheduleFiles) Delete(professorID string) error {
	if err := s.store.Delete(scheduleFilePath(professorID)); err != nil {
		return fmt.Errorf("delete schedule file: %w", err)
	}
	return nil
}
