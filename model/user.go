package model

import (
	"time"

	"gorm.io/gorm"
)

// Role values recognised across the API. Role is mutable: promoting a
// teacher to class advisor updates the same User row.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleAdvisor = "advisor"
	RoleStudent = "student"
)

// ValidRole returns true when role is one of the supported values.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTeacher, RoleAdvisor, RoleStudent:
		return true
	default:
		return false
	}
}

// User represents an authenticated principal in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	FullName     string         `gorm:"not null" json:"full_name"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // admin, teacher, advisor, student
	TokenVersion int            `gorm:"default:0" json:"-"`                             // Increment to invalidate all user tokens

	// Relationships
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Notifications  []UserNotification  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
