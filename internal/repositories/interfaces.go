package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/gdgoc-itb/lms-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type ListFilters struct {
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "created_at", "order", "date"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

// ContentFilters narrows lectures and problem sets. BuddyOnly restricts to Buddy-gated rows.
type ContentFilters struct {
	ModuleID  *uint
	PathID    *uint
	BuddyOnly bool
	ListFilters
}

type EventFilters struct {
	Kind         models.EventKind
	OpenToBuddy  bool
	UpcomingOnly bool
	ListFilters
}

type SubmissionFilters struct {
	ProblemSetID *uint
	UserID       *string
	Graded       *bool
	ListFilters
}

type CertificateFilters struct {
	UserID *string
	PathID *uint
	ListFilters
}

// ===== LEARNING CONTENT =====

type PathRepository interface {
	Create(ctx context.Context, tx *gorm.DB, path *models.Path) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Path, error)
	GetByIDWithModules(ctx context.Context, tx *gorm.DB, id uint) (*models.Path, error)
	List(ctx context.Context, tx *gorm.DB, filters ListFilters) ([]*models.Path, int64, error)
	Update(ctx context.Context, tx *gorm.DB, path *models.Path) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type ModuleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, module *models.Module) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Module, error)
	ListByPath(ctx context.Context, tx *gorm.DB, pathID uint) ([]*models.Module, error)
	Update(ctx context.Context, tx *gorm.DB, module *models.Module) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type LectureRepository interface {
	Create(ctx context.Context, tx *gorm.DB, lecture *models.Lecture) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lecture, error)
	List(ctx context.Context, tx *gorm.DB, filters ContentFilters) ([]*models.Lecture, int64, error)
	Update(ctx context.Context, tx *gorm.DB, lecture *models.Lecture) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

// ===== PROBLEM SETS & SUBMISSIONS =====

type ProblemSetRepository interface {
	Create(ctx context.Context, tx *gorm.DB, ps *models.ProblemSet) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ProblemSet, error)
	// GetByIDUncached reads the row from the database. Writers and deadline checks use it.
	GetByIDUncached(ctx context.Context, tx *gorm.DB, id uint) (*models.ProblemSet, error)
	List(ctx context.Context, tx *gorm.DB, filters ContentFilters) ([]*models.ProblemSet, int64, error)
	Update(ctx context.Context, tx *gorm.DB, ps *models.ProblemSet) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

// SubmissionUpsert carries the values written by one submit call.
type SubmissionUpsert struct {
	UserID        string
	ProblemSetID  uint
	SubmissionURL string
	SubmittedAt   time.Time
	// ResetGrade clears grade and gradedAt on an existing row (automatic grading).
	ResetGrade bool
}

type SubmissionRepository interface {
	// Upsert writes the single submission row for (user, problem set) atomically and
	// reports whether the row was newly created.
	Upsert(ctx context.Context, tx *gorm.DB, in SubmissionUpsert) (created bool, err error)
	Get(ctx context.Context, tx *gorm.DB, userID string, problemSetID uint) (*models.ProblemSetSubmission, error)
	List(ctx context.Context, tx *gorm.DB, filters SubmissionFilters) ([]*models.ProblemSetSubmission, int64, error)
	UpdateGrade(ctx context.Context, tx *gorm.DB, userID string, problemSetID uint, grade int, gradedBy string, gradedAt time.Time) error
}

type ProgressRepository interface {
	// IncrementSubmitted bumps the submitted counter for (user, path), creating the row if needed.
	IncrementSubmitted(ctx context.Context, tx *gorm.DB, userID string, pathID uint, at time.Time) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.PathProgress, error)
}

// ===== EVENTS =====

type EventRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.Event) error
	GetByID(ctx context.Context, tx *gorm.DB, kind models.EventKind, id uint) (*models.Event, error)
	// GetByIDForUpdate locks the event row until tx ends.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, kind models.EventKind, id uint) (*models.Event, error)
	List(ctx context.Context, tx *gorm.DB, filters EventFilters) ([]*models.Event, int64, error)
	Update(ctx context.Context, tx *gorm.DB, event *models.Event) error
	Delete(ctx context.Context, tx *gorm.DB, kind models.EventKind, id uint) error

	GetAttendee(ctx context.Context, tx *gorm.DB, eventID uint, userID string) (*models.EventAttendee, error)
	AddAttendee(ctx context.Context, tx *gorm.DB, attendee *models.EventAttendee) error
	RemoveAttendee(ctx context.Context, tx *gorm.DB, eventID uint, userID string) error
	MarkAttended(ctx context.Context, tx *gorm.DB, eventID uint, userID string) error
	CountAttendees(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error)
	ListAttendees(ctx context.Context, tx *gorm.DB, eventID uint) ([]*models.EventAttendee, error)
}

// ===== CERTIFICATES =====

type CertificateRepository interface {
	Create(ctx context.Context, tx *gorm.DB, cert *models.Certificate) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Certificate, error)
	GetByCertificateID(ctx context.Context, tx *gorm.DB, certificateID string) (*models.Certificate, error)
	List(ctx context.Context, tx *gorm.DB, filters CertificateFilters) ([]*models.Certificate, int64, error)
	Update(ctx context.Context, tx *gorm.DB, cert *models.Certificate) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}
