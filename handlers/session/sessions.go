package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/attendance-api/model"
	"github.com/sahilchouksey/attendance-api/services"
	"github.com/sahilchouksey/attendance-api/utils/middleware"
	"github.com/sahilchouksey/attendance-api/utils/response"
	"github.com/sahilchouksey/attendance-api/utils/validation"
	"gorm.io/gorm"
)

// SessionHandler handles attendance session requests
type SessionHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	sessions  *services.SessionService
	roster    *services.RosterService
	timetable *services.TimetableService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(db *gorm.DB, sessions *services.SessionService, roster *services.RosterService, timetable *services.TimetableService) *SessionHandler {
	return &SessionHandler{
		db:        db,
		validator: validation.NewValidator(),
		sessions:  sessions,
		roster:    roster,
		timetable: timetable,
	}
}

// CreateSessionRequest represents the request body for creating a session
type CreateSessionRequest struct {
	SubjectID uint   `json:"subject_id" validate:"required"`
	TeacherID *uint  `json:"teacher_id" validate:"omitempty"` // admin only, defaults to the caller
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"omitempty,timeofday"`
	EndTime   string `json:"end_time" validate:"omitempty,timeofday"`
	Room      string `json:"room" validate:"omitempty,max=50"`
	Section   string `json:"section" validate:"omitempty,max=10"`
	Batch     string `json:"batch" validate:"omitempty,max=10"`
	Status    string `json:"status" validate:"omitempty,oneof=scheduled active"`
}

// MarkAttendanceRequest represents the request body for bulk marking
type MarkAttendanceRequest struct {
	Entries []services.MarkInput `json:"entries" validate:"required,min=1"`
}

// callerContext resolves the acting teacher and admin flag. Admins have
// no Teacher row and act on any session.
func (h *SessionHandler) callerContext(c *fiber.Ctx) (teacherID uint, isAdmin bool, err error) {
	user, ok := middleware.GetUser(c)
	if !ok {
		return 0, false, gorm.ErrRecordNotFound
	}
	if user.Role == model.RoleAdmin {
		return 0, true, nil
	}

	var teacher model.Teacher
	if err := h.db.Where("user_id = ?", user.ID).First(&teacher).Error; err != nil {
		return 0, false, err
	}
	return teacher.ID, false, nil
}

func (h *SessionHandler) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return response.NotFound(c, "Session not found")
	case errors.Is(err, services.ErrSubjectNotFound):
		return response.BadRequest(c, "Subject not found")
	case errors.Is(err, services.ErrNotSessionOwner):
		return response.Forbidden(c, "Session belongs to another teacher")
	case errors.Is(err, services.ErrSessionTerminal):
		return response.Conflict(c, "Session is already completed or cancelled")
	case errors.Is(err, services.ErrInvalidTransition):
		return response.Conflict(c, "Invalid session status transition")
	case errors.Is(err, services.ErrInvalidMarkStatus):
		return response.BadRequest(c, "Attendance status must be present, absent, or late")
	case errors.Is(err, services.ErrEmptyMarkSubmission):
		return response.BadRequest(c, "At least one attendance entry is required")
	default:
		return response.InternalServerError(c, "Failed to process session")
	}
}

// CreateSession handles POST /api/v1/teacher/sessions. The response
// carries an allocated flag: creating a session for an unallocated
// subject is permitted but surfaced.
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return response.BadRequest(c, "Date must be in YYYY-MM-DD format")
	}

	if req.StartTime != "" && req.EndTime != "" && req.StartTime > req.EndTime {
		return response.BadRequest(c, "Start time must not be after end time")
	}

	teacherID, isAdmin, err := h.callerContext(c)
	if err != nil {
		return response.Forbidden(c, "Teacher profile not found")
	}

	if isAdmin {
		if req.TeacherID == nil {
			return response.BadRequest(c, "Teacher ID is required when creating as admin")
		}
		teacherID = *req.TeacherID
	} else if req.TeacherID != nil && *req.TeacherID != teacherID {
		return response.Forbidden(c, "Cannot create sessions for another teacher")
	}

	session, allocated, err := h.sessions.Create(c.Context(), services.CreateSessionInput{
		SubjectID: req.SubjectID,
		TeacherID: teacherID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Room:      req.Room,
		Section:   req.Section,
		Batch:     req.Batch,
		Status:    model.SessionStatus(req.Status),
	})
	if err != nil {
		return h.serviceError(c, err)
	}

	return response.Created(c, fiber.Map{
		"session":   session,
		"allocated": allocated,
	})
}

// ListMySessions handles GET /api/v1/teacher/sessions
func (h *SessionHandler) ListMySessions(c *fiber.Ctx) error {
	teacherID, isAdmin, err := h.callerContext(c)
	if err != nil {
		return response.Forbidden(c, "Teacher profile not found")
	}
	if isAdmin {
		if tid := c.Query("teacher_id"); tid != "" {
			parsed, err := strconv.ParseUint(tid, 10, 32)
			if err != nil {
				return response.BadRequest(c, "Invalid teacher ID")
			}
			teacherID = uint(parsed)
		}
	}

	var date *time.Time
	if d := c.Query("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			return response.BadRequest(c, "Date must be in YYYY-MM-DD format")
		}
		date = &parsed
	}

	sessions, err := h.sessions.ListForTeacher(c.Context(), teacherID, date)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch sessions")
	}

	return response.Success(c, sessions)
}

// GetSession handles GET /api/v1/teacher/sessions/:id: the session, its
// stored records, and the timetable slot it correlates with, if any.
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid session ID")
	}

	session, err := h.sessions.Get(c.Context(), uint(id))
	if err != nil {
		return h.serviceError(c, err)
	}

	records, err := h.sessions.Records(c.Context(), session.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch records")
	}

	slot, err := h.timetable.CorrelateSession(c.Context(), session)
	if err != nil {
		slot = nil // correlation is best effort
	}

	return response.Success(c, fiber.Map{
		"session":        session,
		"records":        records,
		"timetable_slot": slot,
	})
}

// StartSession handles POST /api/v1/teacher/sessions/:id/start
func (h *SessionHandler) StartSession(c *fiber.Ctx) error {
	return h.transition(c, model.SessionActive)
}

// CancelSession handles POST /api/v1/teacher/sessions/:id/cancel.
// Cancelled sessions drop out of every percentage calculation.
func (h *SessionHandler) CancelSession(c *fiber.Ctx) error {
	return h.transition(c, model.SessionCancelled)
}

// CompleteSession handles POST /api/v1/teacher/sessions/:id/complete,
// for closing a session without marking anyone.
func (h *SessionHandler) CompleteSession(c *fiber.Ctx) error {
	return h.transition(c, model.SessionCompleted)
}

func (h *SessionHandler) transition(c *fiber.Ctx, next model.SessionStatus) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid session ID")
	}

	teacherID, isAdmin, err := h.callerContext(c)
	if err != nil {
		return response.Forbidden(c, "Teacher profile not found")
	}

	session, err := h.sessions.Transition(c.Context(), uint(id), next, teacherID, isAdmin)
	if err != nil {
		return h.serviceError(c, err)
	}

	return response.Success(c, session)
}

// GetRoster handles GET /api/v1/teacher/sessions/:id/roster. The
// response names the tier that produced the roster so imprecise scoping
// is visible to the caller.
func (h *SessionHandler) GetRoster(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid session ID")
	}

	session, err := h.sessions.Get(c.Context(), uint(id))
	if err != nil {
		return h.serviceError(c, err)
	}

	roster, err := h.roster.Resolve(c.Context(), session, &session.Subject)
	if err != nil {
		return response.InternalServerError(c, "Failed to resolve roster")
	}

	return response.Success(c, roster)
}

// MarkAttendance handles POST /api/v1/teacher/sessions/:id/attendance
func (h *SessionHandler) MarkAttendance(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid session ID")
	}

	var req MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	teacherID, isAdmin, err := h.callerContext(c)
	if err != nil {
		return response.Forbidden(c, "Teacher profile not found")
	}

	result, err := h.sessions.BulkMark(c.Context(), uint(id), req.Entries, teacherID, isAdmin)
	if err != nil {
		return h.serviceError(c, err)
	}

	return response.Success(c, result)
}
