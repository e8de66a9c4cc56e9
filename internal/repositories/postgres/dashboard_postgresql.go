package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== DASHBOARD STATS =====

func (r *dashboardRepository) CountUsersByAccess(ctx context.Context, tx *gorm.DB) (map[models.AccessLevel]int64, error) {
	db := r.getDB(tx)

	var rows []struct {
		Access models.AccessLevel
		Count  int64
	}

	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Select("access, COUNT(*) as count").
		Group("access").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count users by access: %w", err)
	}

	counts := make(map[models.AccessLevel]int64, len(models.AllAccessLevels))
	for _, level := range models.AllAccessLevels {
		counts[level] = 0
	}
	for _, row := range rows {
		counts[row.Access] = row.Count
	}

	return counts, nil
}

func (r *dashboardRepository) GetTotalPaths(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.Path{}).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to get total paths: %w", err)
	}

	return count, nil
}

func (r *dashboardRepository) GetTotalProblemSets(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.ProblemSet{}).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to get total problem sets: %w", err)
	}

	return count, nil
}

func (r *dashboardRepository) GetTotalSubmissions(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.ProblemSetSubmission{}).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to get total submissions: %w", err)
	}

	return count, nil
}

func (r *dashboardRepository) GetPendingManualGrading(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Table("problem_set_submissions").
		Joins("JOIN problem_sets ON problem_sets.id = problem_set_submissions.problem_set_id").
		Where("problem_sets.is_manual_grading = ? AND problem_set_submissions.graded_at IS NULL", true).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to get pending manual grading: %w", err)
	}

	return count, nil
}

func (r *dashboardRepository) GetUpcomingEvents(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	db := r.getDB(tx)
	var count int64

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if err := db.WithContext(ctx).
		Model(&models.Event{}).
		Where("date >= ?", startOfDay).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to get upcoming events: %w", err)
	}

	return count, nil
}

func (r *dashboardRepository) GetActiveUsers(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.ProblemSetSubmission{}).
		Where("submitted_at >= ?", since).
		Distinct("user_id").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to get active users: %w", err)
	}

	return count, nil
}
