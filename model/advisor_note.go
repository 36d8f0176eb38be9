package model

import (
	"time"

	"gorm.io/gorm"
)

// AdvisorNote is a free-text intervention log entry an advisor keeps
// against a student. Append-only; never aggregated.
type AdvisorNote struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID     uint           `gorm:"not null;index" json:"student_id"`
	AdvisorUserID uint           `gorm:"not null;index" json:"advisor_user_id"`
	Note          string         `gorm:"type:text;not null" json:"note"`
	ActionTaken   string         `gorm:"type:text" json:"action_taken,omitempty"`

	// Relationships
	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Advisor User    `gorm:"foreignKey:AdvisorUserID;constraint:OnDelete:CASCADE" json:"advisor,omitempty"`
}

// TableName specifies the table name for AdvisorNote
func (AdvisorNote) TableName() string {
	return "advisor_notes"
}
