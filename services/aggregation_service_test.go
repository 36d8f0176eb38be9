package services

import (
	"testing"

	"github.com/sahilchouksey/attendance-api/model"
)

func pct(t *testing.T, attended, total int) int {
	t.Helper()
	p := Percentage(attended, total)
	if p == nil {
		t.Fatalf("Percentage(%d, %d) = nil, want value", attended, total)
	}
	return *p
}

func TestPercentageNoData(t *testing.T) {
	if p := Percentage(0, 0); p != nil {
		t.Fatalf("Percentage(0, 0) = %d, want nil", *p)
	}
}

func TestPercentageRounding(t *testing.T) {
	cases := []struct {
		attended, total, want int
	}{
		{3, 4, 75},
		{1, 3, 33},   // 33.33 rounds down
		{2, 3, 67},   // 66.67 rounds up
		{1, 2, 50},
		{5, 8, 63},   // 62.5 rounds half up
		{0, 10, 0},   // zero attendance with data is 0%, not nil
		{10, 10, 100},
	}
	for _, c := range cases {
		if got := pct(t, c.attended, c.total); got != c.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", c.attended, c.total, got, c.want)
		}
	}
}

func TestFoldOverallCountsLateAsAttended(t *testing.T) {
	rows := []RecordRow{
		{StudentID: 1, SubjectID: 10, Status: model.AttendancePresent},
		{StudentID: 1, SubjectID: 10, Status: model.AttendanceAbsent},
		{StudentID: 1, SubjectID: 11, Status: model.AttendanceLate},
		{StudentID: 1, SubjectID: 11, Status: model.AttendancePresent},
	}

	tally := foldOverall(rows)[1]
	if tally == nil {
		t.Fatal("no tally for student 1")
	}
	if tally.Attended != 3 || tally.Total != 4 {
		t.Fatalf("tally = %d/%d, want 3/4", tally.Attended, tally.Total)
	}
	if got := *tally.Percent(); got != 75 {
		t.Fatalf("percent = %d, want 75", got)
	}
}

func TestFoldBySubjectGroupsIndependently(t *testing.T) {
	rows := []RecordRow{
		{StudentID: 1, SubjectID: 10, Status: model.AttendancePresent},
		{StudentID: 1, SubjectID: 11, Status: model.AttendanceAbsent},
		{StudentID: 2, SubjectID: 10, Status: model.AttendanceAbsent},
	}

	bySubject := foldBySubject(rows)
	if got := bySubject[1][10].Attended; got != 1 {
		t.Errorf("student 1 subject 10 attended = %d, want 1", got)
	}
	if got := bySubject[1][11].Attended; got != 0 {
		t.Errorf("student 1 subject 11 attended = %d, want 0", got)
	}
	if got := bySubject[2][10].Total; got != 1 {
		t.Errorf("student 2 subject 10 total = %d, want 1", got)
	}
}

func intp(v int) *int { return &v }

func TestCollectDefaultersThresholdIsStrict(t *testing.T) {
	standings := []StudentStanding{
		{StudentID: 1, Percentage: intp(75)}, // exactly at threshold: not a defaulter
		{StudentID: 2, Percentage: intp(74)},
		{StudentID: 3, Percentage: intp(40)},
		{StudentID: 4, Percentage: nil}, // no data: excluded, not 0%
		{StudentID: 5, Percentage: intp(90)},
	}

	defaulters := collectDefaulters(standings, 75)
	if len(defaulters) != 2 {
		t.Fatalf("got %d defaulters, want 2", len(defaulters))
	}
	// worst first
	if defaulters[0].StudentID != 3 || defaulters[1].StudentID != 2 {
		t.Errorf("defaulter order = [%d, %d], want [3, 2]",
			defaulters[0].StudentID, defaulters[1].StudentID)
	}
}

func TestCollectDefaultersEmptyNeverNil(t *testing.T) {
	defaulters := collectDefaulters([]StudentStanding{{StudentID: 1, Percentage: intp(80)}}, 75)
	if defaulters == nil {
		t.Fatal("defaulters slice is nil, want empty")
	}
	if len(defaulters) != 0 {
		t.Fatalf("got %d defaulters, want 0", len(defaulters))
	}
}

func TestCohortAverageIgnoresStudentsWithoutData(t *testing.T) {
	standings := []StudentStanding{
		{Percentage: intp(80)},
		{Percentage: intp(61)},
		{Percentage: nil},
	}

	withData, avg := cohortAverage(standings)
	if withData != 2 {
		t.Errorf("withData = %d, want 2", withData)
	}
	if avg == nil || *avg != 71 { // 70.5 rounds half up
		t.Errorf("avg = %v, want 71", avg)
	}
}

func TestCohortAverageAllEmpty(t *testing.T) {
	withData, avg := cohortAverage([]StudentStanding{{Percentage: nil}})
	if withData != 0 || avg != nil {
		t.Errorf("got (%d, %v), want (0, nil)", withData, avg)
	}
}
