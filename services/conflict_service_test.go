package services

import (
	"strings"
	"testing"

	"github.com/sahilchouksey/attendance-api/model"
)

func uintp(v uint) *uint { return &v }

func TestTimesOverlap(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"disjoint before", "09:00", "09:50", "10:00", "10:50", false},
		{"disjoint after", "11:00", "11:50", "10:00", "10:50", false},
		{"contained", "10:10", "10:40", "10:00", "10:50", true},
		{"partial overlap", "09:30", "10:30", "10:00", "10:50", true},
		{"identical", "10:00", "10:50", "10:00", "10:50", true},
		{"touching boundary conflicts", "09:00", "10:00", "10:00", "10:50", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := timesOverlap(c.aStart, c.aEnd, c.bStart, c.bEnd); got != c.want {
				t.Fatalf("timesOverlap(%s-%s, %s-%s) = %v, want %v",
					c.aStart, c.aEnd, c.bStart, c.bEnd, got, c.want)
			}
		})
	}
}

func TestCheckSlotConflictsTeacherDoubleBooked(t *testing.T) {
	existing := []model.TimetableSlot{
		{ID: 1, TeacherID: uintp(7), StartTime: "10:00", EndTime: "10:50", Room: "A101", Section: "A", Semester: 3},
	}
	candidate := model.TimetableSlot{
		TeacherID: uintp(7), StartTime: "10:30", EndTime: "11:20", Room: "B202", Section: "B", Semester: 5,
	}

	conflicts := CheckSlotConflicts(existing, candidate)
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts %v, want 1", len(conflicts), conflicts)
	}
	if !strings.Contains(conflicts[0], "Teacher is already scheduled") {
		t.Fatalf("unexpected message %q", conflicts[0])
	}
}

func TestCheckSlotConflictsRoomWithoutTeacher(t *testing.T) {
	existing := []model.TimetableSlot{
		{ID: 1, TeacherID: uintp(7), StartTime: "10:00", EndTime: "10:50", Room: "A101", Section: "A", Semester: 3},
	}
	candidate := model.TimetableSlot{
		TeacherID: uintp(8), StartTime: "10:00", EndTime: "10:50", Room: "A101", Section: "B", Semester: 5,
	}

	conflicts := CheckSlotConflicts(existing, candidate)
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts %v, want 1", len(conflicts), conflicts)
	}
	if !strings.Contains(conflicts[0], "Room A101") {
		t.Fatalf("unexpected message %q", conflicts[0])
	}
}

func TestCheckSlotConflictsSectionCohort(t *testing.T) {
	existing := []model.TimetableSlot{
		{ID: 1, TeacherID: uintp(7), StartTime: "10:00", EndTime: "10:50", Room: "A101", Section: "A", Semester: 3},
	}
	candidate := model.TimetableSlot{
		TeacherID: uintp(8), StartTime: "10:00", EndTime: "10:50", Room: "B202", Section: "A", Semester: 3,
	}

	conflicts := CheckSlotConflicts(existing, candidate)
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts %v, want 1", len(conflicts), conflicts)
	}
	if !strings.Contains(conflicts[0], "Section A (semester 3)") {
		t.Fatalf("unexpected message %q", conflicts[0])
	}
}

func TestCheckSlotConflictsAccumulates(t *testing.T) {
	existing := []model.TimetableSlot{
		{ID: 1, TeacherID: uintp(7), StartTime: "10:00", EndTime: "10:50", Room: "A101", Section: "A", Semester: 3},
	}
	// Same teacher, same room, same cohort: all three classes fire.
	candidate := model.TimetableSlot{
		TeacherID: uintp(7), StartTime: "10:00", EndTime: "10:50", Room: "A101", Section: "A", Semester: 3,
	}

	conflicts := CheckSlotConflicts(existing, candidate)
	if len(conflicts) != 3 {
		t.Fatalf("got %d conflicts %v, want 3", len(conflicts), conflicts)
	}
}

func TestCheckSlotConflictsSkipsSelfOnUpdate(t *testing.T) {
	existing := []model.TimetableSlot{
		{ID: 42, TeacherID: uintp(7), StartTime: "10:00", EndTime: "10:50", Room: "A101", Section: "A", Semester: 3},
	}
	candidate := model.TimetableSlot{
		ID: 42, TeacherID: uintp(7), StartTime: "10:00", EndTime: "11:50", Room: "A101", Section: "A", Semester: 3,
	}

	if conflicts := CheckSlotConflicts(existing, candidate); len(conflicts) != 0 {
		t.Fatalf("update against own row reported conflicts: %v", conflicts)
	}
}

func TestCheckSlotConflictsNilTeacherNeverCollides(t *testing.T) {
	existing := []model.TimetableSlot{
		{ID: 1, TeacherID: nil, StartTime: "10:00", EndTime: "10:50", Room: "A101", Section: "A", Semester: 3},
	}
	candidate := model.TimetableSlot{
		TeacherID: nil, StartTime: "10:00", EndTime: "10:50", Room: "B202", Section: "B", Semester: 5,
	}

	if conflicts := CheckSlotConflicts(existing, candidate); len(conflicts) != 0 {
		t.Fatalf("unassigned slots reported teacher conflict: %v", conflicts)
	}
}
