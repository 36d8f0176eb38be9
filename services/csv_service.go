package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sahilchouksey/attendance-api/model"
	"github.com/sahilchouksey/attendance-api/utils/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrMissingHeader = errors.New("missing required CSV header")
	ErrEmptyCSV      = errors.New("CSV file has no header row")
)

// Import row numbering counts the header as row 1, so the first data row
// is "Row 2". Error messages follow that convention.

// StudentRow is one parsed data row of a student import file.
type StudentRow struct {
	RowNum         int
	Email          string
	FullName       string
	RollNumber     string
	Semester       int
	Section        string
	Batch          string
	DepartmentCode string
}

// SubjectRow is one parsed data row of a subject import file.
type SubjectRow struct {
	RowNum         int
	Code           string
	Name           string
	Semester       int
	Credits        int
	DepartmentCode string
}

// ImportResult reports best-effort batch semantics: per-row failures are
// collected, never aborting the batch.
type ImportResult struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

// CSVService translates tabular external data into entities and back.
type CSVService struct {
	db *gorm.DB
}

// NewCSVService creates a new CSV service
func NewCSVService(db *gorm.DB) *CSVService {
	return &CSVService{db: db}
}

// headerIndex maps normalized column names to their positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return idx
}

func cell(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ParseStudentRows reads a student import file. Required columns: email,
// full_name, roll_number. Optional: semester, section, batch,
// department_code. A missing required header fails the whole file; a
// missing required field fails only that row.
func ParseStudentRows(r io.Reader) ([]StudentRow, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, ErrEmptyCSV
	}

	idx := headerIndex(header)
	for _, required := range []string{"email", "full_name", "roll_number"} {
		if _, ok := idx[required]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingHeader, required)
		}
	}

	var rows []StudentRow
	var rowErrors []string
	rowNum := 1 // header
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: Malformed CSV row", rowNum))
			continue
		}

		row := StudentRow{
			RowNum:         rowNum,
			Email:          cell(record, idx, "email"),
			FullName:       cell(record, idx, "full_name"),
			RollNumber:     cell(record, idx, "roll_number"),
			Section:        cell(record, idx, "section"),
			Batch:          cell(record, idx, "batch"),
			DepartmentCode: cell(record, idx, "department_code"),
		}

		if row.Email == "" || row.FullName == "" || row.RollNumber == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: Missing required fields", rowNum))
			continue
		}

		if sem := cell(record, idx, "semester"); sem != "" {
			n, err := strconv.Atoi(sem)
			if err != nil || n < 1 || n > 8 {
				rowErrors = append(rowErrors, fmt.Sprintf("Row %d: Invalid semester %q", rowNum, sem))
				continue
			}
			row.Semester = n
		} else {
			row.Semester = 1
		}

		rows = append(rows, row)
	}

	return rows, rowErrors, nil
}

// ParseSubjectRows reads a subject import file. Required columns: code,
// name. Optional: semester, credits, department_code.
func ParseSubjectRows(r io.Reader) ([]SubjectRow, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, ErrEmptyCSV
	}

	idx := headerIndex(header)
	for _, required := range []string{"code", "name"} {
		if _, ok := idx[required]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingHeader, required)
		}
	}

	var rows []SubjectRow
	var rowErrors []string
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: Malformed CSV row", rowNum))
			continue
		}

		row := SubjectRow{
			RowNum:         rowNum,
			Code:           cell(record, idx, "code"),
			Name:           cell(record, idx, "name"),
			DepartmentCode: cell(record, idx, "department_code"),
		}

		if row.Code == "" || row.Name == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: Missing required fields", rowNum))
			continue
		}

		if sem := cell(record, idx, "semester"); sem != "" {
			n, err := strconv.Atoi(sem)
			if err != nil || n < 1 || n > 8 {
				rowErrors = append(rowErrors, fmt.Sprintf("Row %d: Invalid semester %q", rowNum, sem))
				continue
			}
			row.Semester = n
		}
		if cr := cell(record, idx, "credits"); cr != "" {
			n, err := strconv.Atoi(cr)
			if err != nil || n < 0 {
				rowErrors = append(rowErrors, fmt.Sprintf("Row %d: Invalid credits %q", rowNum, cr))
				continue
			}
			row.Credits = n
		}

		rows = append(rows, row)
	}

	return rows, rowErrors, nil
}

// departmentByCode resolves a department case-insensitively by code.
func (s *CSVService) departmentByCode(ctx context.Context, code string) (*model.Department, error) {
	var dept model.Department
	err := s.db.WithContext(ctx).Where("LOWER(code) = LOWER(?)", code).First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

// ImportStudents provisions accounts from a CSV upload. Each row creates
// a User (role student, initial password = roll number) plus the Student
// profile. Failed rows are reported individually; the batch never fails
// as a whole once the header parses.
func (s *CSVService) ImportStudents(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, rowErrors, err := ParseStudentRows(r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: rowErrors}
	if result.Errors == nil {
		result.Errors = []string{}
	}

	for _, row := range rows {
		var deptID *uint
		if row.DepartmentCode != "" {
			dept, err := s.departmentByCode(ctx, row.DepartmentCode)
			if err != nil {
				return nil, err
			}
			if dept == nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Unknown department %q", row.RowNum, row.DepartmentCode))
				continue
			}
			deptID = &dept.ID
		}

		var count int64
		if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", row.Email).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Email already registered", row.RowNum))
			continue
		}

		hash, err := auth.HashProvisionalPassword(row.RollNumber)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Failed to provision account", row.RowNum))
			continue
		}

		row := row
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			user := model.User{
				Email:        row.Email,
				PasswordHash: hash,
				FullName:     row.FullName,
				Role:         model.RoleStudent,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}

			student := model.Student{
				UserID:       user.ID,
				RollNumber:   row.RollNumber,
				Semester:     row.Semester,
				Section:      row.Section,
				Batch:        row.Batch,
				DepartmentID: deptID,
			}
			return tx.Create(&student).Error
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", row.RowNum, "Duplicate roll number or database error"))
			continue
		}

		result.Created++
	}

	return result, nil
}

// ImportSubjects upserts subjects keyed on code.
func (s *CSVService) ImportSubjects(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, rowErrors, err := ParseSubjectRows(r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: rowErrors}
	if result.Errors == nil {
		result.Errors = []string{}
	}

	for _, row := range rows {
		var deptID *uint
		if row.DepartmentCode != "" {
			dept, err := s.departmentByCode(ctx, row.DepartmentCode)
			if err != nil {
				return nil, err
			}
			if dept == nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Unknown department %q", row.RowNum, row.DepartmentCode))
				continue
			}
			deptID = &dept.ID
		}

		subject := model.Subject{
			Code:         row.Code,
			Name:         row.Name,
			Semester:     row.Semester,
			Credits:      row.Credits,
			DepartmentID: deptID,
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "semester", "credits", "department_id", "updated_at"}),
		}).Create(&subject).Error
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Database error", row.RowNum))
			continue
		}

		result.Created++
	}

	return result, nil
}

// percentCell renders a percentage cell; "no data" stays distinguishable
// from 0%.
func percentCell(p *int) string {
	if p == nil {
		return "N/A"
	}
	return strconv.Itoa(*p)
}

// BuildDefaultersCSV renders a defaulter report as CSV bytes.
func BuildDefaultersCSV(report *DefaulterReport) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{"roll_number", "name", "semester", "section", "attended", "total", "percentage"})
	for _, st := range report.Defaulters {
		_ = w.Write([]string{
			st.RollNumber,
			st.FullName,
			strconv.Itoa(st.Semester),
			st.Section,
			strconv.Itoa(st.Attended),
			strconv.Itoa(st.Total),
			percentCell(st.Percentage),
		})
	}
	w.Flush()
	return buf.Bytes()
}

// BuildMatrixCSV renders the compiled matrix: one row per student, one
// column per subject, plus the overall column.
func BuildMatrixCSV(matrix *CompiledMatrix) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"roll_number", "name"}
	for _, subj := range matrix.Subjects {
		header = append(header, subj.Code)
	}
	header = append(header, "overall")
	_ = w.Write(header)

	for _, row := range matrix.Rows {
		record := []string{row.RollNumber, row.FullName}
		for _, subj := range matrix.Subjects {
			record = append(record, percentCell(row.Cells[subj.ID]))
		}
		record = append(record, percentCell(row.Overall))
		_ = w.Write(record)
	}
	w.Flush()
	return buf.Bytes()
}

// BuildStandingsCSV renders per-student standings (subject and cohort
// reports share the shape).
func BuildStandingsCSV(standings []StudentStanding) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{"roll_number", "name", "semester", "section", "attended", "total", "percentage"})
	for _, st := range standings {
		_ = w.Write([]string{
			st.RollNumber,
			st.FullName,
			strconv.Itoa(st.Semester),
			st.Section,
			strconv.Itoa(st.Attended),
			strconv.Itoa(st.Total),
			percentCell(st.Percentage),
		})
	}
	w.Flush()
	return buf.Bytes()
}
