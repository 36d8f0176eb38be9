package user

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/model"
	authutil "github.com/sahilchouksey/attendance-api/utils/auth"
	"github.com/sahilchouksey/attendance-api/utils/response"
	"github.com/sahilchouksey/attendance-api/utils/validation"
	"gorm.io/gorm"
)

// UserHandler handles admin user management
type UserHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateStaffRequest represents the request body for provisioning a staff account
type CreateStaffRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	FullName     string `json:"full_name" validate:"required,min=2"`
	Role         string `json:"role" validate:"required,oneof=teacher advisor admin"`
	EmployeeID   string `json:"employee_id" validate:"omitempty,max=50"`
	DepartmentID *uint  `json:"department_id" validate:"omitempty"`
}

// UpdateRoleRequest represents the request body for changing a user's role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin teacher advisor student"`
}

// ListUsers handles GET /api/v1/admin/users
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := c.Query("search", "")

	query := h.db.Model(&model.User{})

	if role := c.Query("role"); role != "" {
		if !model.ValidRole(role) {
			return response.BadRequest(c, "Invalid role filter")
		}
		query = query.Where("role = ?", role)
	}
	if search != "" {
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var users []model.User
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch users")
	}

	return response.Paginated(c, users, pagination)
}

// CreateStaff handles POST /api/v1/admin/users. Teacher and advisor
// accounts get a Teacher profile; advisors mark attendance for their own
// subjects too.
func (h *UserHandler) CreateStaff(c *fiber.Ctx) error {
	var req CreateStaffRequest
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

	needsProfile := req.Role == model.RoleTeacher || req.Role == model.RoleAdvisor
	if needsProfile && req.EmployeeID == "" {
		return response.BadRequest(c, "Employee ID is required for teaching staff")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	var user model.User
	err = h.db.Transaction(func(tx *gorm.DB) error {
		user = model.User{
			Email:        req.Email,
			PasswordHash: hashedPassword,
			FullName:     req.FullName,
			Role:         req.Role,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if needsProfile {
			teacher := model.Teacher{
				UserID:       user.ID,
				EmployeeID:   req.EmployeeID,
				DepartmentID: req.DepartmentID,
			}
			return tx.Create(&teacher).Error
		}
		return nil
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create account")
	}

	return response.Created(c, user)
}

// UpdateRole handles PATCH /api/v1/admin/users/:id/role. Changing a role
// bumps the token version so existing sessions pick up the change on
// next login.
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	if err := h.db.Model(&user).Updates(map[string]interface{}{
		"role":          req.Role,
		"token_version": user.TokenVersion + 1,
	}).Error; err != nil {
		return response.InternalServerError(c, "Failed to update role")
	}

	user.Role = req.Role
	return response.Success(c, user)
}

// GetUser handles GET /api/v1/admin/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id := c.Params("id")

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	return response.Success(c, user)
}
