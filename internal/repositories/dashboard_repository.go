package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/gdgoc-itb/lms-service/internal/models"
)

// DashboardRepository interface for admin overview counts
type DashboardRepository interface {
	CountUsersByAccess(ctx context.Context, tx *gorm.DB) (map[models.AccessLevel]int64, error)
	GetTotalPaths(ctx context.Context, tx *gorm.DB) (int64, error)
	GetTotalProblemSets(ctx context.Context, tx *gorm.DB) (int64, error)
	GetTotalSubmissions(ctx context.Context, tx *gorm.DB) (int64, error)

	// GetPendingManualGrading counts submissions on manually graded problem sets that have not been graded yet.
	GetPendingManualGrading(ctx context.Context, tx *gorm.DB) (int64, error)
	GetUpcomingEvents(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)

	// GetActiveUsers counts distinct users who submitted anything since the given time.
	GetActiveUsers(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
}
