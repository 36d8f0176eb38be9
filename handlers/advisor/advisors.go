package advisor

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/model"
	"github.com/sahilchouksey/attendance-api/services"
	"github.com/sahilchouksey/attendance-api/utils/middleware"
	"github.com/sahilchouksey/attendance-api/utils/response"
	"github.com/sahilchouksey/attendance-api/utils/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdvisorHandler handles class advisor requests
type AdvisorHandler struct {
	db          *gorm.DB
	validator   *validation.Validator
	aggregation *services.AggregationService
	threshold   int
}

// NewAdvisorHandler creates a new advisor handler
func NewAdvisorHandler(db *gorm.DB, aggregation *services.AggregationService, threshold int) *AdvisorHandler {
	return &AdvisorHandler{
		db:          db,
		validator:   validation.NewValidator(),
		aggregation: aggregation,
		threshold:   threshold,
	}
}

// AssignAdvisorRequest represents the request body for assigning an advisor
type AssignAdvisorRequest struct {
	UserID       uint   `json:"user_id" validate:"required"`
	DepartmentID *uint  `json:"department_id" validate:"omitempty"`
	Section      string `json:"section" validate:"omitempty,max=10"`
	Semester     int    `json:"semester" validate:"omitempty,min=1,max=8"`
	AcademicYear string `json:"academic_year" validate:"omitempty,max=20"`
}

// CreateNoteRequest represents the request body for an advisor note
type CreateNoteRequest struct {
	StudentID   uint   `json:"student_id" validate:"required"`
	Note        string `json:"note" validate:"required,min=1"`
	ActionTaken string `json:"action_taken" validate:"omitempty"`
}

// AssignAdvisor handles PUT /api/v1/admin/advisors. Assignment is an
// upsert keyed on the user: re-assigning moves the advisor to the new
// cohort. The user's role is promoted to advisor if needed.
func (h *AdvisorHandler) AssignAdvisor(c *fiber.Ctx) error {
	var req AssignAdvisorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var user model.User
	if err := h.db.First(&user, req.UserID).Error; err != nil {
		return response.BadRequest(c, "User not found")
	}
	if user.Role == model.RoleStudent {
		return response.BadRequest(c, "Students cannot be class advisors")
	}

	assignment := model.ClassAdvisor{
		UserID:       req.UserID,
		DepartmentID: req.DepartmentID,
		Section:      req.Section,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"department_id", "section", "semester", "academic_year", "updated_at",
			}),
		}).Create(&assignment).Error; err != nil {
			return err
		}

		if user.Role == model.RoleTeacher {
			return tx.Model(&user).Update("role", model.RoleAdvisor).Error
		}
		return nil
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to assign advisor")
	}

	return response.Success(c, assignment)
}

// ListAdvisors handles GET /api/v1/admin/advisors
func (h *AdvisorHandler) ListAdvisors(c *fiber.Ctx) error {
	var advisors []model.ClassAdvisor
	if err := h.db.Preload("User").Preload("Department").Find(&advisors).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch advisors")
	}
	return response.Success(c, advisors)
}

// RemoveAdvisor handles DELETE /api/v1/admin/advisors/:id
func (h *AdvisorHandler) RemoveAdvisor(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid advisor ID")
	}

	result := h.db.Delete(&model.ClassAdvisor{}, uint(id))
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to remove advisor")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Advisor assignment not found")
	}

	return response.Success(c, fiber.Map{"message": "Advisor assignment removed"})
}

// selfAssignment resolves the cohort of the authenticated advisor.
func (h *AdvisorHandler) selfAssignment(c *fiber.Ctx) (*model.ClassAdvisor, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var assignment model.ClassAdvisor
	if err := h.db.Preload("Department").Where("user_id = ?", userID).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func cohortFilter(a *model.ClassAdvisor) services.CohortFilter {
	return services.CohortFilter{
		DepartmentID: a.DepartmentID,
		Semester:     a.Semester,
		Section:      a.Section,
	}
}

// GetMyCohort handles GET /api/v1/advisor/cohort: per-student standings
// plus the cohort average.
func (h *AdvisorHandler) GetMyCohort(c *fiber.Ctx) error {
	assignment, err := h.selfAssignment(c)
	if err != nil {
		return response.NotFound(c, "No advisor assignment found")
	}

	standings, err := h.aggregation.CohortStandings(c.Context(), cohortFilter(assignment))
	if err != nil {
		return response.InternalServerError(c, "Failed to compute standings")
	}

	health, err := h.aggregation.Health(c.Context(), cohortFilter(assignment))
	if err != nil {
		return response.InternalServerError(c, "Failed to compute cohort health")
	}

	return response.Success(c, fiber.Map{
		"assignment": assignment,
		"health":     health,
		"students":   standings,
	})
}

// GetMyDefaulters handles GET /api/v1/advisor/defaulters
func (h *AdvisorHandler) GetMyDefaulters(c *fiber.Ctx) error {
	assignment, err := h.selfAssignment(c)
	if err != nil {
		return response.NotFound(c, "No advisor assignment found")
	}

	threshold := h.threshold
	if t := c.Query("threshold"); t != "" {
		parsed, err := strconv.Atoi(t)
		if err != nil || parsed < 1 || parsed > 100 {
			return response.BadRequest(c, "Threshold must be between 1 and 100")
		}
		threshold = parsed
	}

	report, err := h.aggregation.Defaulters(c.Context(), cohortFilter(assignment), threshold)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute defaulters")
	}

	return response.Success(c, report)
}

// GetStudentDetail handles GET /api/v1/advisor/students/:id: one
// student's per-subject breakdown plus the advisor's notes. The student
// must belong to the advisor's cohort.
func (h *AdvisorHandler) GetStudentDetail(c *fiber.Ctx) error {
	assignment, err := h.selfAssignment(c)
	if err != nil {
		return response.NotFound(c, "No advisor assignment found")
	}

	id := c.Params("id")

	var student model.Student
	if err := h.db.Preload("User").First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	if !h.inCohort(assignment, student) {
		return response.Forbidden(c, "Student is not in your cohort")
	}

	overall, err := h.aggregation.StudentOverall(c.Context(), student.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute attendance")
	}

	breakdown, err := h.aggregation.StudentBySubject(c.Context(), student.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute subject breakdown")
	}

	var notes []model.AdvisorNote
	if err := h.db.Preload("Advisor").Where("student_id = ?", student.ID).Order("created_at DESC").Find(&notes).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch notes")
	}

	return response.Success(c, fiber.Map{
		"student":    student,
		"overall":    overall,
		"percentage": overall.Percent(),
		"subjects":   breakdown,
		"notes":      notes,
	})
}

func (h *AdvisorHandler) inCohort(a *model.ClassAdvisor, student model.Student) bool {
	if a.DepartmentID != nil {
		if student.DepartmentID == nil || *student.DepartmentID != *a.DepartmentID {
			return false
		}
	}
	if a.Semester != 0 && student.Semester != a.Semester {
		return false
	}
	if a.Section != "" && student.Section != a.Section {
		return false
	}
	return true
}

// CreateNote handles POST /api/v1/advisor/notes
func (h *AdvisorHandler) CreateNote(c *fiber.Ctx) error {
	assignment, err := h.selfAssignment(c)
	if err != nil {
		return response.NotFound(c, "No advisor assignment found")
	}

	var req CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var student model.Student
	if err := h.db.First(&student, req.StudentID).Error; err != nil {
		return response.BadRequest(c, "Student not found")
	}
	if !h.inCohort(assignment, student) {
		return response.Forbidden(c, "Student is not in your cohort")
	}

	note := model.AdvisorNote{
		StudentID:     req.StudentID,
		AdvisorUserID: assignment.UserID,
		Note:          req.Note,
		ActionTaken:   req.ActionTaken,
	}
	if err := h.db.Create(&note).Error; err != nil {
		return response.InternalServerError(c, "Failed to create note")
	}

	return response.Created(c, note)
}
