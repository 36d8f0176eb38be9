package services

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/attendance-api/model"
	"gorm.io/gorm"
)

// ConflictService validates a timetable slot against existing slots on
// the same weekday before it is written. Any conflict aborts the insert;
// the full message list is returned so the caller can fix the request.
type ConflictService struct {
	db *gorm.DB
}

// NewConflictService creates a new conflict service
func NewConflictService(db *gorm.DB) *ConflictService {
	return &ConflictService{db: db}
}

// timesOverlap reports whether two [start, end] windows collide. The
// comparison is inclusive on both ends: a slot ending at 10:00 conflicts
// with one starting at 10:00. Times are zero-padded "HH:MM" strings, so
// string comparison is chronological comparison.
func timesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart <= bEnd && aEnd >= bStart
}

// CheckSlotConflicts evaluates the candidate against the overlapping
// subset of existing same-day slots. Three independent conflict classes
// are reported: teacher double-booked, room double-booked, and a
// section+semester cohort already in class.
func CheckSlotConflicts(existing []model.TimetableSlot, candidate model.TimetableSlot) []string {
	conflicts := []string{}

	for _, slot := range existing {
		if slot.ID == candidate.ID {
			continue
		}
		if !timesOverlap(slot.StartTime, slot.EndTime, candidate.StartTime, candidate.EndTime) {
			continue
		}

		if candidate.TeacherID != nil && slot.TeacherID != nil && *slot.TeacherID == *candidate.TeacherID {
			conflicts = append(conflicts, fmt.Sprintf(
				"Teacher is already scheduled from %s to %s", slot.StartTime, slot.EndTime))
		}

		if candidate.Room != "" && slot.Room == candidate.Room {
			conflicts = append(conflicts, fmt.Sprintf(
				"Room %s is already booked from %s to %s", slot.Room, slot.StartTime, slot.EndTime))
		}

		if candidate.Section != "" && candidate.Semester != 0 &&
			slot.Section == candidate.Section && slot.Semester == candidate.Semester {
			conflicts = append(conflicts, fmt.Sprintf(
				"Section %s (semester %d) already has a class from %s to %s",
				slot.Section, slot.Semester, slot.StartTime, slot.EndTime))
		}
	}

	return conflicts
}

// Check loads the candidate's same-day slots and runs the conflict rules.
func (s *ConflictService) Check(ctx context.Context, candidate model.TimetableSlot) ([]string, error) {
	var existing []model.TimetableSlot
	err := s.db.WithContext(ctx).
		Where("day_of_week = ?", candidate.DayOfWeek).
		Find(&existing).Error
	if err != nil {
		return nil, err
	}

	return CheckSlotConflicts(existing, candidate), nil
}
