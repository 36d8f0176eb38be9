package model

import (
	"time"

	"gorm.io/gorm"
)

// TeacherSubjectAllocation records that a teacher may teach a subject to a
// section/batch for an academic year. The composite unique index rejects
// duplicate tuples; empty section/batch participate in the key as "".
type TeacherSubjectAllocation struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	TeacherID    uint           `gorm:"not null;uniqueIndex:idx_teacher_subject_alloc" json:"teacher_id"`
	SubjectID    uint           `gorm:"not null;uniqueIndex:idx_teacher_subject_alloc" json:"subject_id"`
	Section      string         `gorm:"type:varchar(10);uniqueIndex:idx_teacher_subject_alloc" json:"section,omitempty"`
	Batch        string         `gorm:"type:varchar(10);uniqueIndex:idx_teacher_subject_alloc" json:"batch,omitempty"`
	AcademicYear string         `gorm:"not null;type:varchar(20);uniqueIndex:idx_teacher_subject_alloc" json:"academic_year"`

	// Relationships
	Teacher Teacher `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
	Subject Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
}

// TableName specifies the table name for TeacherSubjectAllocation
func (TeacherSubjectAllocation) TableName() string {
	return "teacher_subject_allocations"
}
