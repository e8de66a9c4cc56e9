package repositories

import (
	"context"

	"github.com/gdgoc-itb/lms-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string // Search query for name or email
	Access *models.AccessLevel
	Limit  int
	Offset int
}

// UserRepository is the identity store. Emails are matched lower-cased.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByEmailAndAccess(ctx context.Context, email string, access models.AccessLevel) (*models.User, error)
	ExistsByEmailAndAccess(ctx context.Context, email string, levels ...models.AccessLevel) (bool, error)

	// Create fails with ErrDuplicate when the email is already registered under any access level.
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateAccess(ctx context.Context, id string, access models.AccessLevel) error

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
}
