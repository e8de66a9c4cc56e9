package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

// UserPostgreSQL is the identity store. It never caches: the access gate
// must see role changes on the very next request.
type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmailAndAccess(ctx context.Context, email string, access models.AccessLevel) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).
		Where("email = ? AND access = ?", models.NormalizeEmail(email), access).
		First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) ExistsByEmailAndAccess(ctx context.Context, email string, levels ...models.AccessLevel) (bool, error) {
	if len(levels) == 0 {
		return false, nil
	}
	var count int64
	err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ? AND access IN ?", models.NormalizeEmail(email), levels).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = models.NormalizeEmail(user.Email)
	return translateError(u.db.WithContext(ctx).Create(user).Error)
}

func (u *UserPostgreSQL) Update(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	return translateError(u.db.WithContext(ctx).Save(user).Error)
}

func (u *UserPostgreSQL) UpdateAccess(ctx context.Context, id string, access models.AccessLevel) error {
	result := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("access", access)
	return requireAffected(result)
}

func (u *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := u.db.WithContext(ctx).Model(&models.User{})
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", like, like)
	}
	if filters.Access != nil {
		query = query.Where("access = ?", *filters.Access)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(filters.Offset).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}
