package auth

import (
	"slices"

	"github.com/gdgoc-itb/lms-service/internal/models"
)

// Operation names a privileged action guarded by role.
type Operation string

const (
	OpManageContent            Operation = "content:manage"
	OpGradeSubmissions         Operation = "submissions:grade"
	OpManageCertificates       Operation = "certificates:manage"
	OpManageCommunityEvents    Operation = "events:community:manage"
	OpManageProfessionalEvents Operation = "events:professional:manage"
	OpManageUsers              Operation = "users:manage"
	OpRegisterAdmin            Operation = "admins:register"
	OpViewDashboard            Operation = "dashboard:view"
)

var permissions = map[Operation][]models.AccessLevel{
	OpManageContent:            {models.AccessCurriculumAdmin},
	OpGradeSubmissions:         {models.AccessCurriculumAdmin},
	OpManageCertificates:       {models.AccessCurriculumAdmin},
	OpManageCommunityEvents:    {models.AccessTechnicalAdmin},
	OpManageProfessionalEvents: {models.AccessProfessionalDevelopmentAdmin},
	OpManageUsers:              {models.AccessTechnicalAdmin},
	OpRegisterAdmin:            models.AdminAccessLevels,
	OpViewDashboard:            models.AdminAccessLevels,
}

// Allowed returns the roles that may perform op. Unknown operations allow nobody.
func Allowed(op Operation) []models.AccessLevel {
	return permissions[op]
}

// Allows reports whether access may perform op.
func Allows(access models.AccessLevel, op Operation) bool {
	return slices.Contains(permissions[op], access)
}

// HasAccess reports whether access is one of levels.
func HasAccess(access models.AccessLevel, levels ...models.AccessLevel) bool {
	return slices.Contains(levels, access)
}

// EventOperation maps an event kind to the operation that manages it.
func EventOperation(kind models.EventKind) Operation {
	if kind == models.EventProfessional {
		return OpManageProfessionalEvents
	}
	return OpManageCommunityEvents
}
