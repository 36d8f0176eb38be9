package model

import (
	"time"

	"gorm.io/gorm"
)

// TimetableSlot is a recurring weekly template entry, not a concrete class
// meeting. Times are stored as zero-padded "HH:MM" strings so that
// lexicographic comparison matches chronological comparison.
type TimetableSlot struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	SubjectID uint           `gorm:"not null;index" json:"subject_id"`
	TeacherID *uint          `gorm:"index" json:"teacher_id,omitempty"`
	DayOfWeek int            `gorm:"not null;index" json:"day_of_week"` // 0 = Sunday .. 6 = Saturday
	StartTime string         `gorm:"not null;type:varchar(5)" json:"start_time"`
	EndTime   string         `gorm:"not null;type:varchar(5)" json:"end_time"`
	Room      string         `gorm:"type:varchar(50)" json:"room,omitempty"`
	Section   string         `gorm:"type:varchar(10)" json:"section,omitempty"`
	Semester  int            `gorm:"default:0" json:"semester"`
	Batch     string         `gorm:"type:varchar(10)" json:"batch,omitempty"`

	// Relationships
	Subject Subject  `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
	Teacher *Teacher `gorm:"foreignKey:TeacherID;constraint:OnDelete:SET NULL" json:"teacher,omitempty"`
}

// TableName specifies the table name for TimetableSlot
func (TimetableSlot) TableName() string {
	return "timetable_slots"
}
