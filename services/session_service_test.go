package services

import (
	"errors"
	"testing"

	"github.com/sahilchouksey/attendance-api/model"
)

func TestDedupeMarksLastEntryWins(t *testing.T) {
	marks := []MarkInput{
		{StudentID: 1, Status: model.AttendancePresent},
		{StudentID: 2, Status: model.AttendanceAbsent},
		{StudentID: 1, Status: model.AttendanceLate, Notes: "came at 10:15"},
	}

	out := dedupeMarks(marks)
	if len(out) != 2 {
		t.Fatalf("got %d entries, want 2", len(out))
	}
	if out[0].StudentID != 2 {
		t.Errorf("out[0].StudentID = %d, want 2", out[0].StudentID)
	}
	if out[1].StudentID != 1 || out[1].Status != model.AttendanceLate {
		t.Errorf("out[1] = %+v, want student 1 late", out[1])
	}
	if out[1].Notes != "came at 10:15" {
		t.Errorf("notes from the later entry were dropped: %q", out[1].Notes)
	}
}

func TestDedupeMarksNoDuplicates(t *testing.T) {
	marks := []MarkInput{
		{StudentID: 1, Status: model.AttendancePresent},
		{StudentID: 2, Status: model.AttendanceAbsent},
		{StudentID: 3, Status: model.AttendanceLate},
	}

	out := dedupeMarks(marks)
	if len(out) != 3 {
		t.Fatalf("got %d entries, want 3", len(out))
	}
	for i := range marks {
		if out[i].StudentID != marks[i].StudentID {
			t.Fatalf("order changed: out[%d].StudentID = %d, want %d", i, out[i].StudentID, marks[i].StudentID)
		}
	}
}

func TestRequireOwner(t *testing.T) {
	session := &model.AttendanceSession{TeacherID: 7}

	if err := requireOwner(session, 7, false); err != nil {
		t.Errorf("owner rejected: %v", err)
	}
	if err := requireOwner(session, 8, false); !errors.Is(err, ErrNotSessionOwner) {
		t.Errorf("non-owner err = %v, want ErrNotSessionOwner", err)
	}
	if err := requireOwner(session, 0, true); err != nil {
		t.Errorf("admin rejected: %v", err)
	}
}
