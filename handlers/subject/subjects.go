package subject

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/model"
	"github.com/sahilchouksey/attendance-api/utils/response"
	"github.com/sahilchouksey/attendance-api/utils/validation"
	"gorm.io/gorm"
)

// SubjectHandler handles subject-related requests
type SubjectHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(db *gorm.DB) *SubjectHandler {
	return &SubjectHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateSubjectRequest represents the request body for creating a subject
type CreateSubjectRequest struct {
	Code         string `json:"code" validate:"required,min=2,max=50"`
	Name         string `json:"name" validate:"required,min=2,max=255"`
	DepartmentID *uint  `json:"department_id" validate:"omitempty"`
	Semester     int    `json:"semester" validate:"omitempty,min=1,max=8"`
	Credits      int    `json:"credits" validate:"omitempty,min=0,max=20"`
}

// UpdateSubjectRequest represents the request body for updating a subject
type UpdateSubjectRequest struct {
	Name         string `json:"name" validate:"omitempty,min=2,max=255"`
	DepartmentID *uint  `json:"department_id" validate:"omitempty"`
	Semester     *int   `json:"semester" validate:"omitempty,min=1,max=8"`
	Credits      *int   `json:"credits" validate:"omitempty,min=0,max=20"`
}

// ListSubjects handles GET /api/v1/subjects
func (h *SubjectHandler) ListSubjects(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := c.Query("search", "")

	query := h.db.Model(&model.Subject{})

	if search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if semester := c.Query("semester"); semester != "" {
		query = query.Where("semester = ?", semester)
	}
	if deptID := c.Query("department_id"); deptID != "" {
		query = query.Where("department_id = ?", deptID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count subjects")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var subjects []model.Subject
	if err := query.Preload("Department").
		Order("code ASC").
		Limit(limit).
		Offset(offset).
		Find(&subjects).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch subjects")
	}

	return response.Paginated(c, subjects, pagination)
}

// GetSubject handles GET /api/v1/subjects/:id
func (h *SubjectHandler) GetSubject(c *fiber.Ctx) error {
	id := c.Params("id")

	var subject model.Subject
	if err := h.db.Preload("Department").First(&subject, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to fetch subject")
	}

	return response.Success(c, subject)
}

// CreateSubject handles POST /api/v1/admin/subjects
func (h *SubjectHandler) CreateSubject(c *fiber.Ctx) error {
	var req CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var existing model.Subject
	if err := h.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return response.Conflict(c, "Subject with this code already exists")
	}

	if req.DepartmentID != nil {
		var dept model.Department
		if err := h.db.First(&dept, *req.DepartmentID).Error; err != nil {
			return response.BadRequest(c, "Department not found")
		}
	}

	subject := model.Subject{
		Code:         req.Code,
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
		Semester:     req.Semester,
		Credits:      req.Credits,
	}
	if err := h.db.Create(&subject).Error; err != nil {
		return response.InternalServerError(c, "Failed to create subject")
	}

	return response.Created(c, subject)
}

// UpdateSubject handles PUT /api/v1/admin/subjects/:id
func (h *SubjectHandler) UpdateSubject(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var subject model.Subject
	if err := h.db.First(&subject, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to fetch subject")
	}

	if req.Name != "" {
		subject.Name = req.Name
	}
	if req.DepartmentID != nil {
		var dept model.Department
		if err := h.db.First(&dept, *req.DepartmentID).Error; err != nil {
			return response.BadRequest(c, "Department not found")
		}
		subject.DepartmentID = req.DepartmentID
	}
	if req.Semester != nil {
		subject.Semester = *req.Semester
	}
	if req.Credits != nil {
		subject.Credits = *req.Credits
	}

	if err := h.db.Save(&subject).Error; err != nil {
		return response.InternalServerError(c, "Failed to update subject")
	}

	return response.Success(c, subject)
}

// DeleteSubject handles DELETE /api/v1/admin/subjects/:id
func (h *SubjectHandler) DeleteSubject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	result := h.db.Delete(&model.Subject{}, uint(id))
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete subject")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Subject not found")
	}

	return response.Success(c, fiber.Map{"message": "Subject deleted"})
}
