package models

import (
	"strings"
	"time"
)

// AccessLevel is the role a user holds. The set is closed.
type AccessLevel string

const (
	AccessMember                       AccessLevel = "Member"
	AccessBuddy                        AccessLevel = "Buddy"
	AccessCurriculumAdmin              AccessLevel = "Curriculum Admin"
	AccessProfessionalDevelopmentAdmin AccessLevel = "Professional Development Admin"
	AccessTechnicalAdmin               AccessLevel = "Technical Admin"
)

// AllAccessLevels lists every valid access level.
var AllAccessLevels = []AccessLevel{
	AccessMember,
	AccessBuddy,
	AccessCurriculumAdmin,
	AccessProfessionalDevelopmentAdmin,
	AccessTechnicalAdmin,
}

// AdminAccessLevels is the admin-role set.
var AdminAccessLevels = []AccessLevel{
	AccessCurriculumAdmin,
	AccessProfessionalDevelopmentAdmin,
	AccessTechnicalAdmin,
}

func (a AccessLevel) IsValid() bool {
	for _, level := range AllAccessLevels {
		if a == level {
			return true
		}
	}
	return false
}

func (a AccessLevel) IsAdmin() bool {
	for _, level := range AdminAccessLevels {
		if a == level {
			return true
		}
	}
	return false
}

type User struct {
	ID     string      `json:"id" gorm:"primaryKey;size:255"`
	Name   string      `json:"name" gorm:"not null;size:100"`
	Email  string      `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Access AccessLevel `json:"access" gorm:"not null;size:50;default:'Member';index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// UserSummary is the non-sensitive view of a user carried in responses and the user cookie.
type UserSummary struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Access AccessLevel `json:"access"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Access: u.Access,
	}
}

// NormalizeEmail lower-cases and trims an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
