package model

import (
	"time"

	"gorm.io/gorm"
)

// ClassAdvisor maps a user to the cohort they advise. At most one active
// mapping exists per user; assignment is an upsert keyed on user_id.
type ClassAdvisor struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	UserID       uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	DepartmentID *uint          `gorm:"index" json:"department_id,omitempty"`
	Section      string         `gorm:"type:varchar(10)" json:"section,omitempty"`
	Semester     int            `gorm:"default:0" json:"semester"`
	AcademicYear string         `gorm:"type:varchar(20)" json:"academic_year,omitempty"`

	// Relationships
	User       User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL" json:"department,omitempty"`
}

// TableName specifies the table name for ClassAdvisor
func (ClassAdvisor) TableName() string {
	return "class_advisors"
}
