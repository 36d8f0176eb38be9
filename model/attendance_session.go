package model

import (
	"time"

	"gorm.io/gorm"
)

// SessionStatus represents the lifecycle state of an attendance session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Valid returns true when the status is a supported value.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionActive, SessionCompleted, SessionCancelled:
		return true
	default:
		return false
	}
}

// Terminal returns true for states with no outgoing transitions.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// AcceptsMarks reports whether attendance records may be written against
// a session in this state. Completed sessions still accept marks so a
// teacher can correct a finalized sheet; only cancelled sessions are
// closed to writes.
func (s SessionStatus) AcceptsMarks() bool {
	return s != SessionCancelled
}

// CanTransition reports whether the lifecycle permits moving to next.
// scheduled -> active -> completed, with cancelled reachable from any
// non-terminal state. Self-transitions are rejected.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	if s.Terminal() || s == next {
		return false
	}
	switch next {
	case SessionActive:
		return s == SessionScheduled
	case SessionCompleted:
		return s == SessionScheduled || s == SessionActive
	case SessionCancelled:
		return true
	default:
		return false
	}
}

// AttendanceSession is one concrete class meeting on a specific date. It
// may be created ad hoc or materialized from a TimetableSlot; the link to
// the slot is a soft correlation (subject + start time on the session day),
// never a stored foreign key.
type AttendanceSession struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	SubjectID uint           `gorm:"not null;index" json:"subject_id"`
	TeacherID uint           `gorm:"not null;index" json:"teacher_id"`
	Date      time.Time      `gorm:"not null;index;type:date" json:"session_date"`
	StartTime string         `gorm:"type:varchar(5)" json:"start_time,omitempty"`
	EndTime   string         `gorm:"type:varchar(5)" json:"end_time,omitempty"`
	Room      string         `gorm:"type:varchar(50)" json:"room,omitempty"`
	Section   string         `gorm:"type:varchar(10)" json:"section,omitempty"`
	Batch     string         `gorm:"type:varchar(10)" json:"batch,omitempty"`
	Status    SessionStatus  `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`

	// Relationships
	Subject Subject            `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
	Teacher Teacher            `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
	Records []AttendanceRecord `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"records,omitempty"`
}

// TableName specifies the table name for AttendanceSession
func (AttendanceSession) TableName() string {
	return "attendance_sessions"
}
