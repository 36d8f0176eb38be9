package model

import "testing"

func TestSessionStatusCanTransition(t *testing.T) {
	cases := []struct {
		from, to SessionStatus
		want     bool
	}{
		{SessionScheduled, SessionActive, true},
		{SessionScheduled, SessionCompleted, true},
		{SessionScheduled, SessionCancelled, true},
		{SessionActive, SessionCompleted, true},
		{SessionActive, SessionCancelled, true},
		{SessionActive, SessionScheduled, false}, // no going back
		{SessionScheduled, SessionScheduled, false},
		{SessionActive, SessionActive, false},
		{SessionCompleted, SessionActive, false},
		{SessionCompleted, SessionCancelled, false},
		{SessionCancelled, SessionScheduled, false},
		{SessionCancelled, SessionActive, false},
		{SessionScheduled, SessionStatus("archived"), false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.want {
			t.Errorf("%s -> %s = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestSessionStatusAcceptsMarks(t *testing.T) {
	for _, s := range []SessionStatus{SessionScheduled, SessionActive} {
		if !s.AcceptsMarks() {
			t.Errorf("%s must accept marks", s)
		}
	}
	// a finalized sheet stays correctable: re-marking a completed session
	// overwrites the prior statuses
	if !SessionCompleted.AcceptsMarks() {
		t.Error("completed must accept marks so corrections remain possible")
	}
	if SessionCancelled.AcceptsMarks() {
		t.Error("cancelled must not accept marks")
	}
}

func TestSessionStatusTerminal(t *testing.T) {
	if SessionScheduled.Terminal() || SessionActive.Terminal() {
		t.Error("scheduled and active must not be terminal")
	}
	if !SessionCompleted.Terminal() || !SessionCancelled.Terminal() {
		t.Error("completed and cancelled must be terminal")
	}
}

func TestAttendanceStatusAttended(t *testing.T) {
	if !AttendancePresent.Attended() {
		t.Error("present must count as attended")
	}
	if !AttendanceLate.Attended() {
		t.Error("late must count as attended")
	}
	if AttendanceAbsent.Attended() {
		t.Error("absent must not count as attended")
	}
}

func TestAttendanceStatusValid(t *testing.T) {
	for _, s := range []AttendanceStatus{AttendancePresent, AttendanceAbsent, AttendanceLate} {
		if !s.Valid() {
			t.Errorf("%s reported invalid", s)
		}
	}
	if AttendanceStatus("excused").Valid() {
		t.Error("unknown status reported valid")
	}
}
