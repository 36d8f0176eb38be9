package model

import (
	"time"

	"gorm.io/gorm"
)

// AttendanceStatus represents a single student's mark for a session.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	default:
		return false
	}
}

// Attended reports whether the status counts towards attendance
// percentages. Late arrivals count as attended.
func (s AttendanceStatus) Attended() bool {
	return s == AttendancePresent || s == AttendanceLate
}

// AttendanceRecord holds one student's mark for one session. The composite
// unique index on (session_id, student_id) makes marking an idempotent
// upsert: re-submission overwrites the previous status, never duplicates.
type AttendanceRecord struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
	SessionID uint             `gorm:"not null;uniqueIndex:idx_session_student" json:"session_id"`
	StudentID uint             `gorm:"not null;uniqueIndex:idx_session_student;index" json:"student_id"`
	Status    AttendanceStatus `gorm:"type:varchar(10);not null" json:"status"`
	Notes     string           `gorm:"type:text" json:"notes,omitempty"`
	MarkedAt  time.Time        `gorm:"not null" json:"marked_at"`

	// Relationships
	Session AttendanceSession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	Student Student           `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
}

// TableName specifies the table name for AttendanceRecord
func (AttendanceRecord) TableName() string {
	return "attendance_records"
}
