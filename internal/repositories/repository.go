package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository groups every store the services depend on
type Repository interface {
	// Identity
	User() UserRepository

	// Learning content
	Path() PathRepository
	Module() ModuleRepository
	Lecture() LectureRepository

	// Problem sets
	ProblemSet() ProblemSetRepository
	Submission() SubmissionRepository
	Progress() ProgressRepository

	// Events & certificates
	Event() EventRepository
	Certificate() CertificateRepository

	// Admin overview
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// IsNotFoundError reports whether err means the record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique constraint violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey)
}
