package teacher

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/model"
	"github.com/sahilchouksey/attendance-api/services"
	"github.com/sahilchouksey/attendance-api/utils/middleware"
	"github.com/sahilchouksey/attendance-api/utils/response"
	"github.com/sahilchouksey/attendance-api/utils/validation"
	"gorm.io/gorm"
)

// TeacherHandler handles teacher profile requests
type TeacherHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	timetable *services.TimetableService
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(db *gorm.DB, timetable *services.TimetableService) *TeacherHandler {
	return &TeacherHandler{
		db:        db,
		validator: validation.NewValidator(),
		timetable: timetable,
	}
}

// UpdateTeacherRequest represents the request body for updating a teacher profile
type UpdateTeacherRequest struct {
	EmployeeID   string `json:"employee_id" validate:"omitempty,max=50"`
	DepartmentID *uint  `json:"department_id" validate:"omitempty"`
}

// ListTeachers handles GET /api/v1/admin/teachers
func (h *TeacherHandler) ListTeachers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := c.Query("search", "")

	query := h.db.Model(&model.Teacher{}).Preload("User").Preload("Department")

	if deptID := c.Query("department_id"); deptID != "" {
		query = query.Where("department_id = ?", deptID)
	}
	if search != "" {
		query = query.Joins("JOIN users ON users.id = teachers.user_id").
			Where("employee_id ILIKE ? OR users.full_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count teachers")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var teachers []model.Teacher
	if err := query.Order("employee_id ASC").Limit(limit).Offset(offset).Find(&teachers).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch teachers")
	}

	return response.Paginated(c, teachers, pagination)
}

// GetTeacher handles GET /api/v1/admin/teachers/:id
func (h *TeacherHandler) GetTeacher(c *fiber.Ctx) error {
	id := c.Params("id")

	var teacher model.Teacher
	if err := h.db.Preload("User").Preload("Department").First(&teacher, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	return response.Success(c, teacher)
}

// UpdateTeacher handles PUT /api/v1/admin/teachers/:id
func (h *TeacherHandler) UpdateTeacher(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var teacher model.Teacher
	if err := h.db.First(&teacher, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	if req.EmployeeID != "" {
		teacher.EmployeeID = req.EmployeeID
	}
	if req.DepartmentID != nil {
		teacher.DepartmentID = req.DepartmentID
	}

	if err := h.db.Save(&teacher).Error; err != nil {
		return response.InternalServerError(c, "Failed to update teacher")
	}

	return response.Success(c, teacher)
}

// SelfProfile resolves the Teacher row of the authenticated user. Used by
// the session and timetable routes to scope queries to the caller.
func (h *TeacherHandler) SelfProfile(c *fiber.Ctx) (*model.Teacher, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var teacher model.Teacher
	if err := h.db.Preload("User").Where("user_id = ?", userID).First(&teacher).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}

// GetMyProfile handles GET /api/v1/teacher/me
func (h *TeacherHandler) GetMyProfile(c *fiber.Ctx) error {
	teacher, err := h.SelfProfile(c)
	if err != nil {
		return response.NotFound(c, "Teacher profile not found")
	}
	return response.Success(c, teacher)
}

// GetMyTimetable handles GET /api/v1/teacher/timetable
func (h *TeacherHandler) GetMyTimetable(c *fiber.Ctx) error {
	teacher, err := h.SelfProfile(c)
	if err != nil {
		return response.NotFound(c, "Teacher profile not found")
	}

	slots, err := h.timetable.SlotsForTeacher(c.Context(), teacher.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch timetable")
	}

	return response.Success(c, slots)
}

// GetMyAllocations handles GET /api/v1/teacher/allocations
func (h *TeacherHandler) GetMyAllocations(c *fiber.Ctx) error {
	teacher, err := h.SelfProfile(c)
	if err != nil {
		return response.NotFound(c, "Teacher profile not found")
	}

	var allocations []model.TeacherSubjectAllocation
	if err := h.db.Preload("Subject").Where("teacher_id = ?", teacher.ID).Find(&allocations).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch allocations")
	}

	return response.Success(c, allocations)
}
