package models

import (
	"time"
)

// Certificate is issued to a user for completing a path. Type mirrors the holder's track.
type Certificate struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	CertificateID  string      `json:"certificateId" gorm:"uniqueIndex;not null;size:64"`
	UserID         string      `json:"userId" gorm:"not null;size:255;index"`
	PathID         uint        `json:"pathId" gorm:"not null;index"`
	Type           AccessLevel `json:"certificateType" gorm:"not null;size:20"`
	Name           string      `json:"name" gorm:"not null;size:200"`
	IssueDate      time.Time   `json:"issueDate" gorm:"not null"`
	CertificateURL string      `json:"certificateUrl" gorm:"size:500"`
	IssuedBy       string      `json:"issuedBy" gorm:"size:255"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Path *Path `json:"path,omitempty" gorm:"foreignKey:PathID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// IsValidCertificateType reports whether t is a track a certificate can be issued for.
func IsValidCertificateType(t AccessLevel) bool {
	return t == AccessMember || t == AccessBuddy
}
