package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/sahilchouksey/attendance-api/model"
)

func TestParseStudentRows(t *testing.T) {
	input := strings.Join([]string{
		"email,full_name,roll_number,semester,section,department_code",
		"a@uni.edu,Alice A,CS001,3,A,cs",
		"b@uni.edu,Bob B,CS002,3,A,cs",
		"c@uni.edu,Carol C,,3,A,cs",
	}, "\n")

	rows, rowErrors, err := ParseStudentRows(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if len(rowErrors) != 1 {
		t.Fatalf("got %d row errors %v, want 1", len(rowErrors), rowErrors)
	}
	// header counts as row 1, so the failing third data row is row 4
	if rowErrors[0] != "Row 4: Missing required fields" {
		t.Fatalf("rowErrors[0] = %q", rowErrors[0])
	}
	if rows[0].Email != "a@uni.edu" || rows[0].Semester != 3 || rows[0].DepartmentCode != "cs" {
		t.Fatalf("rows[0] = %+v", rows[0])
	}
}

func TestParseStudentRowsSemesterDefaults(t *testing.T) {
	input := "email,full_name,roll_number\na@uni.edu,Alice A,CS001\n"

	rows, rowErrors, err := ParseStudentRows(strings.NewReader(input))
	if err != nil || len(rowErrors) != 0 {
		t.Fatalf("err = %v, rowErrors = %v", err, rowErrors)
	}
	if rows[0].Semester != 1 {
		t.Fatalf("semester = %d, want default 1", rows[0].Semester)
	}
}

func TestParseStudentRowsInvalidSemester(t *testing.T) {
	input := "email,full_name,roll_number,semester\na@uni.edu,Alice A,CS001,12\n"

	rows, rowErrors, err := ParseStudentRows(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(rows))
	}
	if len(rowErrors) != 1 || rowErrors[0] != `Row 2: Invalid semester "12"` {
		t.Fatalf("rowErrors = %v", rowErrors)
	}
}

func TestParseStudentRowsMissingHeader(t *testing.T) {
	input := "email,full_name\na@uni.edu,Alice A\n"

	_, _, err := ParseStudentRows(strings.NewReader(input))
	if !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("err = %v, want ErrMissingHeader", err)
	}
}

func TestParseStudentRowsEmptyFile(t *testing.T) {
	_, _, err := ParseStudentRows(strings.NewReader(""))
	if !errors.Is(err, ErrEmptyCSV) {
		t.Fatalf("err = %v, want ErrEmptyCSV", err)
	}
}

func TestParseStudentRowsHeaderCaseInsensitive(t *testing.T) {
	input := "Email, Full_Name ,ROLL_NUMBER\na@uni.edu,Alice A,CS001\n"

	rows, rowErrors, err := ParseStudentRows(strings.NewReader(input))
	if err != nil || len(rowErrors) != 0 {
		t.Fatalf("err = %v, rowErrors = %v", err, rowErrors)
	}
	if len(rows) != 1 || rows[0].RollNumber != "CS001" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestParseSubjectRows(t *testing.T) {
	input := strings.Join([]string{
		"code,name,semester,credits",
		"CS301,Operating Systems,3,4",
		",Orphan Subject,3,4",
		"CS302,Databases,3,x",
	}, "\n")

	rows, rowErrors, err := ParseSubjectRows(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Code != "CS301" || rows[0].Credits != 4 {
		t.Fatalf("rows[0] = %+v", rows[0])
	}
	if len(rowErrors) != 2 {
		t.Fatalf("rowErrors = %v, want 2 entries", rowErrors)
	}
	if rowErrors[0] != "Row 3: Missing required fields" {
		t.Errorf("rowErrors[0] = %q", rowErrors[0])
	}
	if rowErrors[1] != `Row 4: Invalid credits "x"` {
		t.Errorf("rowErrors[1] = %q", rowErrors[1])
	}
}

func TestPercentCell(t *testing.T) {
	if got := percentCell(nil); got != "N/A" {
		t.Errorf("percentCell(nil) = %q, want N/A", got)
	}
	v := 0
	if got := percentCell(&v); got != "0" {
		t.Errorf("percentCell(0) = %q, want 0", got)
	}
}

func TestBuildDefaultersCSV(t *testing.T) {
	report := &DefaulterReport{
		Threshold: 75,
		Defaulters: []StudentStanding{
			{RollNumber: "CS002", FullName: "Bob B", Semester: 3, Section: "A", Attended: 4, Total: 10, Percentage: intp(40)},
		},
	}

	lines := strings.Split(strings.TrimSpace(string(BuildDefaultersCSV(report))), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0] != "roll_number,name,semester,section,attended,total,percentage" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "CS002,Bob B,3,A,4,10,40" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestBuildMatrixCSV(t *testing.T) {
	matrix := &CompiledMatrix{
		Subjects: []model.Subject{
			{ID: 10, Code: "CS301"},
			{ID: 11, Code: "CS302"},
		},
		Rows: []MatrixRow{
			{
				RollNumber: "CS001",
				FullName:   "Alice A",
				Cells:      map[uint]*int{10: intp(80), 11: nil},
				Overall:    intp(80),
			},
		},
	}

	lines := strings.Split(strings.TrimSpace(string(BuildMatrixCSV(matrix))), "\n")
	if lines[0] != "roll_number,name,CS301,CS302,overall" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "CS001,Alice A,80,N/A,80" {
		t.Errorf("row = %q", lines[1])
	}
}
