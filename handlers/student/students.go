package student

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/model"
	"github.com/sahilchouksey/attendance-api/services"
	authutil "github.com/sahilchouksey/attendance-api/utils/auth"
	"github.com/sahilchouksey/attendance-api/utils/middleware"
	"github.com/sahilchouksey/attendance-api/utils/response"
	"github.com/sahilchouksey/attendance-api/utils/validation"
	"gorm.io/gorm"
)

// StudentHandler handles student profile and dashboard requests
type StudentHandler struct {
	db          *gorm.DB
	validator   *validation.Validator
	aggregation *services.AggregationService
	threshold   int
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(db *gorm.DB, aggregation *services.AggregationService, threshold int) *StudentHandler {
	return &StudentHandler{
		db:          db,
		validator:   validation.NewValidator(),
		aggregation: aggregation,
		threshold:   threshold,
	}
}

// CreateStudentRequest represents the request body for provisioning a student
type CreateStudentRequest struct {
	Email        string `json:"email" validate:"required,email"`
	FullName     string `json:"full_name" validate:"required,min=2"`
	RollNumber   string `json:"roll_number" validate:"required,min=1,max=50"`
	Semester     int    `json:"semester" validate:"required,min=1,max=8"`
	Section      string `json:"section" validate:"omitempty,max=10"`
	Batch        string `json:"batch" validate:"omitempty,max=10"`
	DepartmentID *uint  `json:"department_id" validate:"omitempty"`
}

// UpdateStudentRequest represents the request body for updating a student profile
type UpdateStudentRequest struct {
	Semester     *int    `json:"semester" validate:"omitempty,min=1,max=8"`
	Section      *string `json:"section" validate:"omitempty,max=10"`
	Batch        *string `json:"batch" validate:"omitempty,max=10"`
	DepartmentID *uint   `json:"department_id" validate:"omitempty"`
}

// ListStudents handles GET /api/v1/admin/students
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := c.Query("search", "")

	query := h.db.Model(&model.Student{}).Preload("User").Preload("Department")

	if deptID := c.Query("department_id"); deptID != "" {
		query = query.Where("department_id = ?", deptID)
	}
	if semester := c.Query("semester"); semester != "" {
		query = query.Where("semester = ?", semester)
	}
	if section := c.Query("section"); section != "" {
		query = query.Where("section = ?", section)
	}
	if batch := c.Query("batch"); batch != "" {
		query = query.Where("batch = ?", batch)
	}
	if search != "" {
		query = query.Joins("JOIN users ON users.id = students.user_id").
			Where("roll_number ILIKE ? OR users.full_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count students")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var students []model.Student
	if err := query.Order("roll_number ASC").Limit(limit).Offset(offset).Find(&students).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}

	return response.Paginated(c, students, pagination)
}

// GetStudent handles GET /api/v1/admin/students/:id
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	id := c.Params("id")

	var student model.Student
	if err := h.db.Preload("User").Preload("Department").First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	return response.Success(c, student)
}

// CreateStudent handles POST /api/v1/admin/students. The initial password
// is the roll number; students change it on first login.
func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var existing model.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	var existingStudent model.Student
	if err := h.db.Where("roll_number = ?", req.RollNumber).First(&existingStudent).Error; err == nil {
		return response.Conflict(c, "Student with this roll number already exists")
	}

	hash, err := authutil.HashProvisionalPassword(req.RollNumber)
	if err != nil {
		return response.InternalServerError(c, "Failed to provision account")
	}

	var student model.Student
	err = h.db.Transaction(func(tx *gorm.DB) error {
		user := model.User{
			Email:        req.Email,
			PasswordHash: hash,
			FullName:     req.FullName,
			Role:         model.RoleStudent,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		student = model.Student{
			UserID:       user.ID,
			RollNumber:   req.RollNumber,
			Semester:     req.Semester,
			Section:      req.Section,
			Batch:        req.Batch,
			DepartmentID: req.DepartmentID,
		}
		return tx.Create(&student).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create student")
	}

	return response.Created(c, student)
}

// UpdateStudent handles PUT /api/v1/admin/students/:id
func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var student model.Student
	if err := h.db.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	if req.Semester != nil {
		student.Semester = *req.Semester
	}
	if req.Section != nil {
		student.Section = *req.Section
	}
	if req.Batch != nil {
		student.Batch = *req.Batch
	}
	if req.DepartmentID != nil {
		student.DepartmentID = req.DepartmentID
	}

	if err := h.db.Save(&student).Error; err != nil {
		return response.InternalServerError(c, "Failed to update student")
	}

	return response.Success(c, student)
}

// DeleteStudent handles DELETE /api/v1/admin/students/:id
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	result := h.db.Delete(&model.Student{}, uint(id))
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete student")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Student not found")
	}

	return response.Success(c, fiber.Map{"message": "Student deleted"})
}

// selfProfile resolves the Student row of the authenticated user.
func (h *StudentHandler) selfProfile(c *fiber.Ctx) (*model.Student, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var student model.Student
	if err := h.db.Preload("User").Preload("Department").Where("user_id = ?", userID).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

// GetMyDashboard handles GET /api/v1/student/dashboard: the student's
// overall tally, per-subject breakdown, and below-threshold flag.
func (h *StudentHandler) GetMyDashboard(c *fiber.Ctx) error {
	student, err := h.selfProfile(c)
	if err != nil {
		return response.NotFound(c, "Student profile not found")
	}

	overall, err := h.aggregation.StudentOverall(c.Context(), student.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute attendance")
	}

	breakdown, err := h.aggregation.StudentBySubject(c.Context(), student.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute subject breakdown")
	}

	percent := overall.Percent()
	belowThreshold := percent != nil && *percent < h.threshold

	return response.Success(c, fiber.Map{
		"student":         student,
		"overall":         overall,
		"percentage":      percent,
		"threshold":       h.threshold,
		"below_threshold": belowThreshold,
		"subjects":        breakdown,
	})
}

// GetMyRecords handles GET /api/v1/student/records: the raw per-session
// record list for the student, newest session first.
func (h *StudentHandler) GetMyRecords(c *fiber.Ctx) error {
	student, err := h.selfProfile(c)
	if err != nil {
		return response.NotFound(c, "Student profile not found")
	}

	type recordRow struct {
		SessionID   uint                   `json:"session_id"`
		SubjectCode string                 `json:"subject_code"`
		SubjectName string                 `json:"subject_name"`
		Date        string                 `json:"date"`
		StartTime   string                 `json:"start_time"`
		Status      model.AttendanceStatus `json:"status"`
	}

	var rows []recordRow
	err = h.db.Model(&model.AttendanceRecord{}).
		Select("attendance_records.session_id AS session_id, subjects.code AS subject_code, subjects.name AS subject_name, attendance_sessions.date AS date, attendance_sessions.start_time AS start_time, attendance_records.status AS status").
		Joins("JOIN attendance_sessions ON attendance_sessions.id = attendance_records.session_id").
		Joins("JOIN subjects ON subjects.id = attendance_sessions.subject_id").
		Where("attendance_records.student_id = ?", student.ID).
		Where("attendance_sessions.status <> ?", model.SessionCancelled).
		Order("attendance_sessions.date DESC").
		Limit(200).
		Scan(&rows).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch records")
	}

	return response.Success(c, rows)
}
