package model

import (
	"time"

	"gorm.io/gorm"
)

// Department represents an academic department (e.g. CSE, ECE)
type Department struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Code        string         `gorm:"uniqueIndex;not null;type:varchar(20)" json:"code"`
	Name        string         `gorm:"not null;type:varchar(255)" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Subjects []Subject `gorm:"foreignKey:DepartmentID" json:"subjects,omitempty"`
	Students []Student `gorm:"foreignKey:DepartmentID" json:"-"`
	Teachers []Teacher `gorm:"foreignKey:DepartmentID" json:"-"`
}

// TableName specifies the table name for Department
func (Department) TableName() string {
	return "departments"
}
