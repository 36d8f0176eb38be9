package timetable

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/model"
	"github.com/sahilchouksey/attendance-api/services"
	"github.com/sahilchouksey/attendance-api/utils/response"
	"github.com/sahilchouksey/attendance-api/utils/validation"
	"gorm.io/gorm"
)

// TimetableHandler handles timetable slot requests
type TimetableHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	conflicts *services.ConflictService
	timetable *services.TimetableService
}

// NewTimetableHandler creates a new timetable handler
func NewTimetableHandler(db *gorm.DB, conflicts *services.ConflictService, timetable *services.TimetableService) *TimetableHandler {
	return &TimetableHandler{
		db:        db,
		validator: validation.NewValidator(),
		conflicts: conflicts,
		timetable: timetable,
	}
}

// SlotRequest represents the request body for creating or updating a slot
type SlotRequest struct {
	SubjectID uint   `json:"subject_id" validate:"required"`
	TeacherID *uint  `json:"teacher_id" validate:"omitempty"`
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,timeofday"`
	EndTime   string `json:"end_time" validate:"required,timeofday"`
	Room      string `json:"room" validate:"omitempty,max=50"`
	Section   string `json:"section" validate:"omitempty,max=10"`
	Semester  int    `json:"semester" validate:"omitempty,min=1,max=8"`
	Batch     string `json:"batch" validate:"omitempty,max=10"`
}

func (r SlotRequest) toSlot(id uint) model.TimetableSlot {
	return model.TimetableSlot{
		ID:        id,
		SubjectID: r.SubjectID,
		TeacherID: r.TeacherID,
		DayOfWeek: r.DayOfWeek,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Room:      r.Room,
		Section:   r.Section,
		Semester:  r.Semester,
		Batch:     r.Batch,
	}
}

// ListSlots handles GET /api/v1/timetable/slots
func (h *TimetableHandler) ListSlots(c *fiber.Ctx) error {
	query := h.db.Model(&model.TimetableSlot{}).Preload("Subject").Preload("Teacher.User")

	if day := c.Query("day_of_week"); day != "" {
		query = query.Where("day_of_week = ?", day)
	}
	if section := c.Query("section"); section != "" {
		query = query.Where("section = ?", section)
	}
	if semester := c.Query("semester"); semester != "" {
		query = query.Where("semester = ?", semester)
	}
	if teacherID := c.Query("teacher_id"); teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}

	var slots []model.TimetableSlot
	if err := query.Order("day_of_week ASC, start_time ASC").Find(&slots).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch slots")
	}

	return response.Success(c, slots)
}

// GetSlot handles GET /api/v1/timetable/slots/:id
func (h *TimetableHandler) GetSlot(c *fiber.Ctx) error {
	id := c.Params("id")

	var slot model.TimetableSlot
	if err := h.db.Preload("Subject").Preload("Teacher.User").First(&slot, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Slot not found")
		}
		return response.InternalServerError(c, "Failed to fetch slot")
	}

	return response.Success(c, slot)
}

// validateSlot runs the shared request checks and the conflict scan.
// Returns a non-nil fiber error response when the slot cannot be saved.
func (h *TimetableHandler) validateSlot(c *fiber.Ctx, req SlotRequest, slotID uint) error {
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.StartTime > req.EndTime {
		return response.BadRequest(c, "Start time must not be after end time")
	}

	var subject model.Subject
	if err := h.db.First(&subject, req.SubjectID).Error; err != nil {
		return response.BadRequest(c, "Subject not found")
	}

	if req.TeacherID != nil {
		var teacher model.Teacher
		if err := h.db.First(&teacher, *req.TeacherID).Error; err != nil {
			return response.BadRequest(c, "Teacher not found")
		}
	}

	reasons, err := h.conflicts.Check(c.Context(), req.toSlot(slotID))
	if err != nil {
		return response.InternalServerError(c, "Failed to check for conflicts")
	}
	if len(reasons) > 0 {
		return response.ConflictWithReasons(c, "Slot conflicts with the existing timetable", reasons)
	}

	return nil
}

// CreateSlot handles POST /api/v1/timetable/slots
func (h *TimetableHandler) CreateSlot(c *fiber.Ctx) error {
	var req SlotRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if resp := h.validateSlot(c, req, 0); resp != nil {
		return resp
	}

	slot := req.toSlot(0)
	if err := h.db.Create(&slot).Error; err != nil {
		return response.InternalServerError(c, "Failed to create slot")
	}

	return response.Created(c, slot)
}

// UpdateSlot handles PUT /api/v1/timetable/slots/:id
func (h *TimetableHandler) UpdateSlot(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid slot ID")
	}

	var existing model.TimetableSlot
	if err := h.db.First(&existing, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Slot not found")
		}
		return response.InternalServerError(c, "Failed to fetch slot")
	}

	var req SlotRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if resp := h.validateSlot(c, req, existing.ID); resp != nil {
		return resp
	}

	slot := req.toSlot(existing.ID)
	slot.CreatedAt = existing.CreatedAt
	if err := h.db.Save(&slot).Error; err != nil {
		return response.InternalServerError(c, "Failed to update slot")
	}

	return response.Success(c, slot)
}

// DeleteSlot handles DELETE /api/v1/timetable/slots/:id
func (h *TimetableHandler) DeleteSlot(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid slot ID")
	}

	result := h.db.Delete(&model.TimetableSlot{}, uint(id))
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete slot")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Slot not found")
	}

	return response.Success(c, fiber.Map{"message": "Slot deleted"})
}

// GetDaySchedule handles GET /api/v1/timetable/day/:day
func (h *TimetableHandler) GetDaySchedule(c *fiber.Ctx) error {
	day, err := strconv.Atoi(c.Params("day"))
	if err != nil || day < 0 || day > 6 {
		return response.BadRequest(c, "Day must be between 0 (Sunday) and 6 (Saturday)")
	}

	slots, err := h.timetable.SlotsForDay(c.Context(), day)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch schedule")
	}

	return response.Success(c, slots)
}
