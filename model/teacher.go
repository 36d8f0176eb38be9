package model

import (
	"time"

	"gorm.io/gorm"
)

// Teacher is the staff profile attached 1:1 to a User row. It is created
// at account-provisioning time and never deleted independently of the User.
type Teacher struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	UserID       uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	EmployeeID   string         `gorm:"uniqueIndex;not null;type:varchar(50)" json:"employee_id"`
	DepartmentID *uint          `gorm:"index" json:"department_id,omitempty"`

	// Relationships
	User        User                       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Department  *Department                `gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL" json:"department,omitempty"`
	Allocations []TeacherSubjectAllocation `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Teacher
func (Teacher) TableName() string {
	return "teachers"
}
