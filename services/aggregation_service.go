package services

import (
	"context"
	"math"
	"sort"

	"github.com/sahilchouksey/attendance-api/model"
	"gorm.io/gorm"
)

// DefaultDefaulterThreshold is the percentage below which a student is
// considered at risk.
const DefaultDefaulterThreshold = 75

// Percentage computes the rounded attendance percentage for a tally.
// Returns nil when total is zero: "no data" is never reported as 0%.
// Rounding is half-up, and all downstream threshold comparisons are made
// against the rounded value.
func Percentage(attended, total int) *int {
	if total <= 0 {
		return nil
	}
	p := int(math.Floor(float64(attended)*100/float64(total) + 0.5))
	return &p
}

// RecordRow is the flattened (student, subject, status) triple the
// aggregation scopes fold over. Rows from cancelled sessions are excluded
// at fetch time.
type RecordRow struct {
	StudentID uint
	SubjectID uint
	Status    model.AttendanceStatus
}

// Tally accumulates attended/total counts for one grouping key.
type Tally struct {
	Attended int `json:"attended"`
	Total    int `json:"total"`
}

// Percent returns the rounded percentage for the tally, nil when empty.
func (t Tally) Percent() *int {
	return Percentage(t.Attended, t.Total)
}

// StudentStanding is one student's overall attendance position.
type StudentStanding struct {
	StudentID  uint   `json:"student_id"`
	RollNumber string `json:"roll_number"`
	FullName   string `json:"full_name"`
	Semester   int    `json:"semester"`
	Section    string `json:"section,omitempty"`
	Attended   int    `json:"attended"`
	Total      int    `json:"total"`
	Percentage *int   `json:"percentage"` // nil = no records
}

// SubjectBreakdown is one student's standing in one subject.
type SubjectBreakdown struct {
	SubjectID   uint   `json:"subject_id"`
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	Attended    int    `json:"attended"`
	Total       int    `json:"total"`
	Percentage  *int   `json:"percentage"`
}

// CohortFilter selects the students a cohort-level scope covers.
// Semester 0, empty section and nil department mean "don't filter".
type CohortFilter struct {
	DepartmentID *uint
	Semester     int
	Section      string
}

// CohortHealth summarises a cohort's attendance.
type CohortHealth struct {
	TotalStudents    int  `json:"total_students"`
	StudentsWithData int  `json:"students_with_data"`
	AveragePercent   *int `json:"average_percent"` // nil when nobody has records
}

// DefaulterReport lists students below the threshold, worst first.
type DefaulterReport struct {
	Threshold      int               `json:"threshold"`
	TotalStudents  int               `json:"total_students"`
	DefaulterCount int               `json:"defaulter_count"`
	Defaulters     []StudentStanding `json:"defaulters"`
}

// MatrixRow is one student's row in the compiled matrix.
type MatrixRow struct {
	StudentID  uint          `json:"student_id"`
	RollNumber string        `json:"roll_number"`
	FullName   string        `json:"full_name"`
	Cells      map[uint]*int `json:"cells"` // subject_id -> percentage
	Overall    *int          `json:"overall"`
}

// CompiledMatrix is the pivoted report: one row per student, one column
// per subject, each cell a rounded percentage.
type CompiledMatrix struct {
	Subjects []model.Subject `json:"subjects"`
	Rows     []MatrixRow     `json:"rows"`
}

// AggregationService computes attendance percentages from the raw record
// set. It is a pure read path: results are recomputed per request, never
// persisted. All scopes batch-fetch their records in a single query and
// fold in memory.
type AggregationService struct {
	db *gorm.DB
}

// NewAggregationService creates a new aggregation service
func NewAggregationService(db *gorm.DB) *AggregationService {
	return &AggregationService{db: db}
}

// foldOverall groups rows by student.
func foldOverall(rows []RecordRow) map[uint]*Tally {
	out := make(map[uint]*Tally)
	for _, r := range rows {
		t := out[r.StudentID]
		if t == nil {
			t = &Tally{}
			out[r.StudentID] = t
		}
		t.Total++
		if r.Status.Attended() {
			t.Attended++
		}
	}
	return out
}

// foldBySubject groups rows by (student, subject).
func foldBySubject(rows []RecordRow) map[uint]map[uint]*Tally {
	out := make(map[uint]map[uint]*Tally)
	for _, r := range rows {
		bySubject := out[r.StudentID]
		if bySubject == nil {
			bySubject = make(map[uint]*Tally)
			out[r.StudentID] = bySubject
		}
		t := bySubject[r.SubjectID]
		if t == nil {
			t = &Tally{}
			bySubject[r.SubjectID] = t
		}
		t.Total++
		if r.Status.Attended() {
			t.Attended++
		}
	}
	return out
}

// collectDefaulters applies the threshold rule over per-student tallies.
// The comparison is strict (< threshold) on the rounded percentage, and
// students with no records are excluded, not treated as 0%.
func collectDefaulters(standings []StudentStanding, threshold int) []StudentStanding {
	defaulters := []StudentStanding{}
	for _, st := range standings {
		if st.Percentage != nil && *st.Percentage < threshold {
			defaulters = append(defaulters, st)
		}
	}
	sort.SliceStable(defaulters, func(i, j int) bool {
		return *defaulters[i].Percentage < *defaulters[j].Percentage
	})
	return defaulters
}

// cohortAverage averages per-student percentages, ignoring students with
// no data. The average itself is rounded half-up.
func cohortAverage(standings []StudentStanding) (withData int, avg *int) {
	sum, n := 0, 0
	for _, st := range standings {
		if st.Percentage != nil {
			sum += *st.Percentage
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	a := int(math.Floor(float64(sum)/float64(n) + 0.5))
	return n, &a
}

// fetchRows pulls the (student, subject, status) triples for a set of
// students in one query, excluding cancelled sessions.
func (s *AggregationService) fetchRows(ctx context.Context, studentIDs []uint) ([]RecordRow, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}

	var rows []RecordRow
	err := s.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Select("attendance_records.student_id AS student_id, attendance_sessions.subject_id AS subject_id, attendance_records.status AS status").
		Joins("JOIN attendance_sessions ON attendance_sessions.id = attendance_records.session_id").
		Where("attendance_records.student_id IN ?", studentIDs).
		Where("attendance_sessions.status <> ?", model.SessionCancelled).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AggregationService) cohortStudents(ctx context.Context, filter CohortFilter) ([]model.Student, error) {
	query := s.db.WithContext(ctx).Model(&model.Student{}).Preload("User")
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.Semester != 0 {
		query = query.Where("semester = ?", filter.Semester)
	}
	if filter.Section != "" {
		query = query.Where("section = ?", filter.Section)
	}

	var students []model.Student
	if err := query.Order("roll_number ASC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func standingsFor(students []model.Student, tallies map[uint]*Tally) []StudentStanding {
	standings := make([]StudentStanding, 0, len(students))
	for _, st := range students {
		standing := StudentStanding{
			StudentID:  st.ID,
			RollNumber: st.RollNumber,
			FullName:   st.User.FullName,
			Semester:   st.Semester,
			Section:    st.Section,
		}
		if t := tallies[st.ID]; t != nil {
			standing.Attended = t.Attended
			standing.Total = t.Total
			standing.Percentage = t.Percent()
		}
		standings = append(standings, standing)
	}
	return standings
}

// StudentOverall computes one student's overall tally.
func (s *AggregationService) StudentOverall(ctx context.Context, studentID uint) (Tally, error) {
	rows, err := s.fetchRows(ctx, []uint{studentID})
	if err != nil {
		return Tally{}, err
	}
	if t := foldOverall(rows)[studentID]; t != nil {
		return *t, nil
	}
	return Tally{}, nil
}

// StudentBySubject computes one student's per-subject breakdown.
func (s *AggregationService) StudentBySubject(ctx context.Context, studentID uint) ([]SubjectBreakdown, error) {
	rows, err := s.fetchRows(ctx, []uint{studentID})
	if err != nil {
		return nil, err
	}

	bySubject := foldBySubject(rows)[studentID]
	if len(bySubject) == 0 {
		return []SubjectBreakdown{}, nil
	}

	subjectIDs := make([]uint, 0, len(bySubject))
	for id := range bySubject {
		subjectIDs = append(subjectIDs, id)
	}

	var subjects []model.Subject
	if err := s.db.WithContext(ctx).Where("id IN ?", subjectIDs).Order("code ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}

	breakdown := make([]SubjectBreakdown, 0, len(subjects))
	for _, subj := range subjects {
		t := bySubject[subj.ID]
		breakdown = append(breakdown, SubjectBreakdown{
			SubjectID:   subj.ID,
			SubjectCode: subj.Code,
			SubjectName: subj.Name,
			Attended:    t.Attended,
			Total:       t.Total,
			Percentage:  t.Percent(),
		})
	}
	return breakdown, nil
}

// CohortStandings computes per-student overall standings for a cohort.
func (s *AggregationService) CohortStandings(ctx context.Context, filter CohortFilter) ([]StudentStanding, error) {
	students, err := s.cohortStudents(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}

	rows, err := s.fetchRows(ctx, ids)
	if err != nil {
		return nil, err
	}

	return standingsFor(students, foldOverall(rows)), nil
}

// Health computes the cohort's average attendance.
func (s *AggregationService) Health(ctx context.Context, filter CohortFilter) (*CohortHealth, error) {
	standings, err := s.CohortStandings(ctx, filter)
	if err != nil {
		return nil, err
	}

	withData, avg := cohortAverage(standings)
	return &CohortHealth{
		TotalStudents:    len(standings),
		StudentsWithData: withData,
		AveragePercent:   avg,
	}, nil
}

// Defaulters lists students whose rounded percentage is strictly below
// the threshold, worst first.
func (s *AggregationService) Defaulters(ctx context.Context, filter CohortFilter, threshold int) (*DefaulterReport, error) {
	if threshold <= 0 {
		threshold = DefaultDefaulterThreshold
	}

	standings, err := s.CohortStandings(ctx, filter)
	if err != nil {
		return nil, err
	}

	defaulters := collectDefaulters(standings, threshold)
	return &DefaulterReport{
		Threshold:      threshold,
		TotalStudents:  len(standings),
		DefaulterCount: len(defaulters),
		Defaulters:     defaulters,
	}, nil
}

// SubjectStandings computes per-student standings scoped to one subject.
// Covered students are those with at least one record in the subject.
func (s *AggregationService) SubjectStandings(ctx context.Context, subjectID uint) ([]StudentStanding, error) {
	var rows []RecordRow
	err := s.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Select("attendance_records.student_id AS student_id, attendance_sessions.subject_id AS subject_id, attendance_records.status AS status").
		Joins("JOIN attendance_sessions ON attendance_sessions.id = attendance_records.session_id").
		Where("attendance_sessions.subject_id = ?", subjectID).
		Where("attendance_sessions.status <> ?", model.SessionCancelled).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	tallies := foldOverall(rows)
	if len(tallies) == 0 {
		return []StudentStanding{}, nil
	}

	ids := make([]uint, 0, len(tallies))
	for id := range tallies {
		ids = append(ids, id)
	}

	var students []model.Student
	if err := s.db.WithContext(ctx).Preload("User").Where("id IN ?", ids).Order("roll_number ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	return standingsFor(students, tallies), nil
}

// Matrix compiles the pivoted report for a cohort: one row per student,
// one percentage column per subject in the scope's semester, plus the
// overall column. All records are fetched once and folded in memory.
func (s *AggregationService) Matrix(ctx context.Context, filter CohortFilter) (*CompiledMatrix, error) {
	students, err := s.cohortStudents(ctx, filter)
	if err != nil {
		return nil, err
	}

	subjectQuery := s.db.WithContext(ctx).Model(&model.Subject{})
	if filter.Semester != 0 {
		subjectQuery = subjectQuery.Where("semester = ?", filter.Semester)
	}
	if filter.DepartmentID != nil {
		subjectQuery = subjectQuery.Where("department_id = ?", *filter.DepartmentID)
	}

	var subjects []model.Subject
	if err := subjectQuery.Order("code ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}

	rows, err := s.fetchRows(ctx, ids)
	if err != nil {
		return nil, err
	}

	overall := foldOverall(rows)
	bySubject := foldBySubject(rows)

	matrixRows := make([]MatrixRow, 0, len(students))
	for _, st := range students {
		row := MatrixRow{
			StudentID:  st.ID,
			RollNumber: st.RollNumber,
			FullName:   st.User.FullName,
			Cells:      make(map[uint]*int, len(subjects)),
		}
		for _, subj := range subjects {
			if t := bySubject[st.ID][subj.ID]; t != nil {
				row.Cells[subj.ID] = t.Percent()
			} else {
				row.Cells[subj.ID] = nil
			}
		}
		if t := overall[st.ID]; t != nil {
			row.Overall = t.Percent()
		}
		matrixRows = append(matrixRows, row)
	}

	return &CompiledMatrix{Subjects: subjects, Rows: matrixRows}, nil
}
