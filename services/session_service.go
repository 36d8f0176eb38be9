package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sahilchouksey/attendance-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSubjectNotFound     = errors.New("subject not found")
	ErrSessionTerminal     = errors.New("session is in a terminal state")
	ErrInvalidTransition   = errors.New("invalid session status transition")
	ErrNotSessionOwner     = errors.New("session belongs to another teacher")
	ErrInvalidMarkStatus   = errors.New("invalid attendance status")
	ErrEmptyMarkSubmission = errors.New("no attendance entries submitted")
)

// CreateSessionInput carries the fields a teacher/admin supplies when
// creating a session. TeacherID defaults to the creating teacher.
type CreateSessionInput struct {
	SubjectID uint
	TeacherID uint
	Date      time.Time
	StartTime string
	EndTime   string
	Room      string
	Section   string
	Batch     string
	Status    model.SessionStatus // scheduled unless caller passes active
}

// MarkInput is one student's entry in a bulk mark submission.
type MarkInput struct {
	StudentID uint                   `json:"student_id"`
	Status    model.AttendanceStatus `json:"status"`
	Notes     string                 `json:"notes,omitempty"`
}

// MarkResult reports the outcome of a bulk mark. Marked may be smaller
// than RosterSize: submission finalizes the session regardless, and the
// caller can surface the gap.
type MarkResult struct {
	SessionID  uint                `json:"session_id"`
	Marked     int                 `json:"marked"`
	RosterSize int                 `json:"roster_size"`
	Status     model.SessionStatus `json:"status"`
}

// SessionService drives the attendance-session lifecycle:
// scheduled -> active -> completed, with cancelled reachable from any
// non-terminal state.
type SessionService struct {
	db     *gorm.DB
	roster *RosterService
}

// NewSessionService creates a new session service
func NewSessionService(db *gorm.DB, roster *RosterService) *SessionService {
	return &SessionService{db: db, roster: roster}
}

// dedupeMarks keeps the last entry per student, preserving submission
// order otherwise. A student listed twice in one payload ends up with a
// single record carrying the later status.
func dedupeMarks(marks []MarkInput) []MarkInput {
	last := make(map[uint]int, len(marks))
	for i, m := range marks {
		last[m.StudentID] = i
	}

	out := make([]MarkInput, 0, len(last))
	for i, m := range marks {
		if last[m.StudentID] == i {
			out = append(out, m)
		}
	}
	return out
}

// Create validates and inserts a new session. The returned bool reports
// whether the teacher holds an allocation for the subject; creation is
// not blocked without one, but the caller can surface it.
func (s *SessionService) Create(ctx context.Context, in CreateSessionInput) (*model.AttendanceSession, bool, error) {
	if in.Status == "" {
		in.Status = model.SessionScheduled
	}
	if in.Status != model.SessionScheduled && in.Status != model.SessionActive {
		return nil, false, ErrInvalidTransition
	}

	var subject model.Subject
	if err := s.db.WithContext(ctx).First(&subject, in.SubjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrSubjectNotFound
		}
		return nil, false, err
	}

	var allocations int64
	if err := s.db.WithContext(ctx).
		Model(&model.TeacherSubjectAllocation{}).
		Where("teacher_id = ? AND subject_id = ?", in.TeacherID, in.SubjectID).
		Count(&allocations).Error; err != nil {
		return nil, false, err
	}

	session := model.AttendanceSession{
		SubjectID: in.SubjectID,
		TeacherID: in.TeacherID,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Room:      in.Room,
		Section:   in.Section,
		Batch:     in.Batch,
		Status:    in.Status,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, false, err
	}

	return &session, allocations > 0, nil
}

// Get loads a session with its subject.
func (s *SessionService) Get(ctx context.Context, id uint) (*model.AttendanceSession, error) {
	var session model.AttendanceSession
	err := s.db.WithContext(ctx).Preload("Subject").First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// requireOwner rejects teachers acting on sessions they do not own.
// Admin callers pass isAdmin and skip the check.
func requireOwner(session *model.AttendanceSession, teacherID uint, isAdmin bool) error {
	if isAdmin {
		return nil
	}
	if session.TeacherID != teacherID {
		return ErrNotSessionOwner
	}
	return nil
}

// Transition moves a session to the next status, enforcing the lifecycle.
func (s *SessionService) Transition(ctx context.Context, id uint, next model.SessionStatus, teacherID uint, isAdmin bool) (*model.AttendanceSession, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(session, teacherID, isAdmin); err != nil {
		return nil, err
	}

	if session.Status.Terminal() {
		return nil, ErrSessionTerminal
	}
	if !session.Status.CanTransition(next) {
		return nil, ErrInvalidTransition
	}

	if err := s.db.WithContext(ctx).
		Model(session).
		Update("status", next).Error; err != nil {
		return nil, err
	}
	session.Status = next
	return session, nil
}

// BulkMark upserts one record per submitted student and finalizes the
// session. Records are keyed on (session_id, student_id): re-submission
// overwrites the previous status, duplicate rows are never created.
// Completed sessions still accept marks so teachers can correct them;
// only cancellation closes the sheet.
func (s *SessionService) BulkMark(ctx context.Context, sessionID uint, marks []MarkInput, teacherID uint, isAdmin bool) (*MarkResult, error) {
	if len(marks) == 0 {
		return nil, ErrEmptyMarkSubmission
	}

	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(session, teacherID, isAdmin); err != nil {
		return nil, err
	}
	if !session.Status.AcceptsMarks() {
		return nil, ErrSessionTerminal
	}

	marks = dedupeMarks(marks)
	now := time.Now()
	records := make([]model.AttendanceRecord, 0, len(marks))
	for _, m := range marks {
		if !m.Status.Valid() {
			return nil, ErrInvalidMarkStatus
		}
		records = append(records, model.AttendanceRecord{
			SessionID: sessionID,
			StudentID: m.StudentID,
			Status:    m.Status,
			Notes:     m.Notes,
			MarkedAt:  now,
		})
	}

	rosterSize := 0
	if roster, rerr := s.roster.Resolve(ctx, session, &session.Subject); rerr != nil {
		// RosterSize stays 0; without it the sheet-coverage hint in the
		// response is unavailable, but marking must not fail over it.
		log.Printf("Warning: failed to resolve roster for session %d: %v", sessionID, rerr)
	} else {
		rosterSize = len(roster.Students)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "notes", "marked_at", "updated_at",
			}),
		}).Create(&records).Error; err != nil {
			return err
		}

		// Submission finalizes the session even when not every roster
		// member was marked.
		return tx.Model(&model.AttendanceSession{}).
			Where("id = ?", sessionID).
			Update("status", model.SessionCompleted).Error
	})
	if err != nil {
		return nil, err
	}

	return &MarkResult{
		SessionID:  sessionID,
		Marked:     len(records),
		RosterSize: rosterSize,
		Status:     model.SessionCompleted,
	}, nil
}

// ListForTeacher returns a teacher's sessions, newest first, optionally
// filtered by date.
func (s *SessionService) ListForTeacher(ctx context.Context, teacherID uint, date *time.Time) ([]model.AttendanceSession, error) {
	query := s.db.WithContext(ctx).
		Preload("Subject").
		Where("teacher_id = ?", teacherID)
	if date != nil {
		query = query.Where("date = ?", date.Format("2006-01-02"))
	}

	var sessions []model.AttendanceSession
	if err := query.Order("date DESC, start_time DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Records returns the marks already stored for a session.
func (s *SessionService) Records(ctx context.Context, sessionID uint) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Student.User").
		Where("session_id = ?", sessionID).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
