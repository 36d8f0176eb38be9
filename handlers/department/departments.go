package department

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/model"
	"github.com/sahilchouksey/attendance-api/utils/response"
	"github.com/sahilchouksey/attendance-api/utils/validation"
	"gorm.io/gorm"
)

// DepartmentHandler handles department-related requests
type DepartmentHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewDepartmentHandler creates a new department handler
func NewDepartmentHandler(db *gorm.DB) *DepartmentHandler {
	return &DepartmentHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateDepartmentRequest represents the request body for creating a department
type CreateDepartmentRequest struct {
	Code        string `json:"code" validate:"required,min=2,max=20"`
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// UpdateDepartmentRequest represents the request body for updating a department
type UpdateDepartmentRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// ListDepartments handles GET /api/v1/departments
func (h *DepartmentHandler) ListDepartments(c *fiber.Ctx) error {
	var departments []model.Department
	if err := h.db.Order("code ASC").Find(&departments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch departments")
	}
	return response.Success(c, departments)
}

// GetDepartment handles GET /api/v1/departments/:id
func (h *DepartmentHandler) GetDepartment(c *fiber.Ctx) error {
	id := c.Params("id")

	var department model.Department
	if err := h.db.Preload("Subjects").First(&department, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Department not found")
		}
		return response.InternalServerError(c, "Failed to fetch department")
	}

	return response.Success(c, department)
}

// CreateDepartment handles POST /api/v1/admin/departments
func (h *DepartmentHandler) CreateDepartment(c *fiber.Ctx) error {
	var req CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var existing model.Department
	if err := h.db.Where("LOWER(code) = LOWER(?)", req.Code).First(&existing).Error; err == nil {
		return response.Conflict(c, "Department with this code already exists")
	}

	department := model.Department{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.db.Create(&department).Error; err != nil {
		return response.InternalServerError(c, "Failed to create department")
	}

	return response.Created(c, department)
}

// UpdateDepartment handles PUT /api/v1/admin/departments/:id
func (h *DepartmentHandler) UpdateDepartment(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var department model.Department
	if err := h.db.First(&department, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Department not found")
		}
		return response.InternalServerError(c, "Failed to fetch department")
	}

	if req.Name != "" {
		department.Name = req.Name
	}
	if req.Description != "" {
		department.Description = req.Description
	}

	if err := h.db.Save(&department).Error; err != nil {
		return response.InternalServerError(c, "Failed to update department")
	}

	return response.Success(c, department)
}

// DeleteDepartment handles DELETE /api/v1/admin/departments/:id
func (h *DepartmentHandler) DeleteDepartment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid department ID")
	}

	result := h.db.Delete(&model.Department{}, uint(id))
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete department")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Department not found")
	}

	return response.Success(c, fiber.Map{"message": "Department deleted"})
}
