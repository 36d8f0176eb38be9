package model

import (
	"time"

	"gorm.io/gorm"
)

// Student is the learner profile attached 1:1 to a User row.
//
// Section is the coarse class division ("A".."D"); Batch is the finer
// sub-group used for practicals ("B1".."B4"). Both may be empty, meaning
// the student is not (yet) assigned to one; the roster fallback in
// services.RosterService depends on that convention.
type Student struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	UserID       uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	RollNumber   string         `gorm:"uniqueIndex;not null;type:varchar(50)" json:"roll_number"`
	Semester     int            `gorm:"not null;default:1" json:"semester"`
	Section      string         `gorm:"type:varchar(10)" json:"section,omitempty"`
	Batch        string         `gorm:"type:varchar(10)" json:"batch,omitempty"`
	DepartmentID *uint          `gorm:"index" json:"department_id,omitempty"`

	// Relationships
	User       User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Department *Department   `gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL" json:"department,omitempty"`
	Notes      []AdvisorNote `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Student
func (Student) TableName() string {
	return "students"
}
