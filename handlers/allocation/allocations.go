package allocation

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/model"
	"github.com/sahilchouksey/attendance-api/utils/response"
	"github.com/sahilchouksey/attendance-api/utils/validation"
	"gorm.io/gorm"
)

// AllocationHandler handles teacher-subject allocation requests
type AllocationHandler struct {
	db           *gorm.DB
	validator    *validation.Validator
	academicYear string
}

// NewAllocationHandler creates a new allocation handler
func NewAllocationHandler(db *gorm.DB, academicYear string) *AllocationHandler {
	return &AllocationHandler{
		db:           db,
		validator:    validation.NewValidator(),
		academicYear: academicYear,
	}
}

// CreateAllocationRequest represents the request body for creating an allocation
type CreateAllocationRequest struct {
	TeacherID    uint   `json:"teacher_id" validate:"required"`
	SubjectID    uint   `json:"subject_id" validate:"required"`
	Section      string `json:"section" validate:"omitempty,max=10"`
	Batch        string `json:"batch" validate:"omitempty,max=10"`
	AcademicYear string `json:"academic_year" validate:"omitempty,max=20"`
}

// ListAllocations handles GET /api/v1/admin/allocations
func (h *AllocationHandler) ListAllocations(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	query := h.db.Model(&model.TeacherSubjectAllocation{}).
		Preload("Teacher.User").
		Preload("Subject")

	if teacherID := c.Query("teacher_id"); teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}
	if subjectID := c.Query("subject_id"); subjectID != "" {
		query = query.Where("subject_id = ?", subjectID)
	}
	if year := c.Query("academic_year"); year != "" {
		query = query.Where("academic_year = ?", year)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count allocations")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var allocations []model.TeacherSubjectAllocation
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&allocations).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch allocations")
	}

	return response.Paginated(c, allocations, pagination)
}

// CreateAllocation handles POST /api/v1/admin/allocations. A duplicate
// (teacher, subject, section, batch, year) tuple is a conflict, not an
// update.
func (h *AllocationHandler) CreateAllocation(c *fiber.Ctx) error {
	var req CreateAllocationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.AcademicYear == "" {
		req.AcademicYear = h.academicYear
	}
	if req.AcademicYear == "" {
		return response.BadRequest(c, "Academic year is required")
	}

	var teacher model.Teacher
	if err := h.db.First(&teacher, req.TeacherID).Error; err != nil {
		return response.BadRequest(c, "Teacher not found")
	}

	var subject model.Subject
	if err := h.db.First(&subject, req.SubjectID).Error; err != nil {
		return response.BadRequest(c, "Subject not found")
	}

	var count int64
	err := h.db.Model(&model.TeacherSubjectAllocation{}).
		Where("teacher_id = ? AND subject_id = ? AND section = ? AND batch = ? AND academic_year = ?",
			req.TeacherID, req.SubjectID, req.Section, req.Batch, req.AcademicYear).
		Count(&count).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to check existing allocations")
	}
	if count > 0 {
		return response.Conflict(c, "This allocation already exists")
	}

	allocation := model.TeacherSubjectAllocation{
		TeacherID:    req.TeacherID,
		SubjectID:    req.SubjectID,
		Section:      req.Section,
		Batch:        req.Batch,
		AcademicYear: req.AcademicYear,
	}
	if err := h.db.Create(&allocation).Error; err != nil {
		return response.Conflict(c, "This allocation already exists")
	}

	return response.Created(c, allocation)
}

// DeleteAllocation handles DELETE /api/v1/admin/allocations/:id
func (h *AllocationHandler) DeleteAllocation(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid allocation ID")
	}

	result := h.db.Delete(&model.TeacherSubjectAllocation{}, uint(id))
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete allocation")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Allocation not found")
	}

	return response.Success(c, fiber.Map{"message": "Allocation removed"})
}
