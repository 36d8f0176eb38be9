package model

import (
	"time"

	"gorm.io/gorm"
)

// Subject represents a course unit taught in a given semester
type Subject struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Code         string         `gorm:"uniqueIndex;not null;type:varchar(50)" json:"code"`
	Name         string         `gorm:"not null;type:varchar(255)" json:"name"`
	DepartmentID *uint          `gorm:"index" json:"department_id,omitempty"`
	Semester     int            `gorm:"default:0" json:"semester"` // 1..8, 0 = unassigned
	Credits      int            `gorm:"default:0" json:"credits"`

	// Relationships
	Department *Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL" json:"department,omitempty"`
}

// TableName specifies the table name for Subject
func (Subject) TableName() string {
	return "subjects"
}
