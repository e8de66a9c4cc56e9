package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gdgoc-itb/lms-service/internal/cache"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

// ===== PROBLEM SETS =====

type ProblemSetPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewProblemSetPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ProblemSetRepository {
	return &ProblemSetPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (p *ProblemSetPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *ProblemSetPostgreSQL) Create(ctx context.Context, tx *gorm.DB, ps *models.ProblemSet) error {
	if err := p.getDB(tx).WithContext(ctx).Create(ps).Error; err != nil {
		return translateError(err)
	}
	cache.InvalidatePathCache(ctx, p.cacheManager, ps.PathID)
	return nil
}

func (p *ProblemSetPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ProblemSet, error) {
	var ps models.ProblemSet
	err := p.cacheManager.ProblemSet.CacheOrExecute(ctx, fmt.Sprintf("id:%d", id), &ps, cache.ProblemSetCacheConfig.TTL, func() (interface{}, error) {
		return p.GetByIDUncached(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

func (p *ProblemSetPostgreSQL) GetByIDUncached(ctx context.Context, tx *gorm.DB, id uint) (*models.ProblemSet, error) {
	var ps models.ProblemSet
	if err := p.getDB(tx).WithContext(ctx).First(&ps, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &ps, nil
}

func (p *ProblemSetPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ContentFilters) ([]*models.ProblemSet, int64, error) {
	var sets []*models.ProblemSet
	var total int64

	query := p.getDB(tx).WithContext(ctx).Model(&models.ProblemSet{})
	query = p.helpers.ApplyContentFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count problem sets: %w", err)
	}

	query = p.helpers.ApplyPaginationAndSort(query, filters.ListFilters, "order")
	if err := query.Find(&sets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list problem sets: %w", err)
	}

	return sets, total, nil
}

func (p *ProblemSetPostgreSQL) Update(ctx context.Context, tx *gorm.DB, ps *models.ProblemSet) error {
	if err := p.getDB(tx).WithContext(ctx).Omit("Submissions").Save(ps).Error; err != nil {
		return translateError(err)
	}
	cache.InvalidateProblemSetCache(ctx, p.cacheManager, ps.ID)
	cache.InvalidatePathCache(ctx, p.cacheManager, ps.PathID)
	return nil
}

// Delete removes the problem set; its submissions go with it through the cascade.
func (p *ProblemSetPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := requireAffected(p.getDB(tx).WithContext(ctx).Delete(&models.ProblemSet{}, id)); err != nil {
		return err
	}
	cache.InvalidateProblemSetCache(ctx, p.cacheManager, id)
	return nil
}

// ===== SUBMISSIONS =====

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s *SubmissionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// Upsert inserts the submission unless (user_id, problem_set_id) already exists, in
// which case the existing row is updated in place. Both statements are keyed on the
// unique index so concurrent submits converge on one row.
func (s *SubmissionPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, in repositories.SubmissionUpsert) (bool, error) {
	db := s.getDB(tx).WithContext(ctx)

	row := &models.ProblemSetSubmission{
		UserID:        in.UserID,
		ProblemSetID:  in.ProblemSetID,
		SubmissionURL: in.SubmissionURL,
		SubmittedAt:   in.SubmittedAt,
		Grade:         0,
	}

	inserted := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "problem_set_id"}},
		DoNothing: true,
	}).Create(row)
	if inserted.Error != nil {
		return false, fmt.Errorf("failed to insert submission: %w", translateError(inserted.Error))
	}
	if inserted.RowsAffected == 1 {
		return true, nil
	}

	updated := db.Model(&models.ProblemSetSubmission{}).
		Where("user_id = ? AND problem_set_id = ?", in.UserID, in.ProblemSetID).
		Updates(submissionUpdates(in))
	if err := requireAffected(updated); err != nil {
		return false, fmt.Errorf("failed to update submission: %w", err)
	}
	return false, nil
}

// submissionUpdates builds the column set a resubmission overwrites.
func submissionUpdates(in repositories.SubmissionUpsert) map[string]interface{} {
	updates := map[string]interface{}{
		"submission_url": in.SubmissionURL,
		"submitted_at":   in.SubmittedAt,
	}
	if in.ResetGrade {
		updates["grade"] = 0
		updates["graded_at"] = nil
		updates["graded_by"] = nil
	}
	return updates
}

func (s *SubmissionPostgreSQL) Get(ctx context.Context, tx *gorm.DB, userID string, problemSetID uint) (*models.ProblemSetSubmission, error) {
	var sub models.ProblemSetSubmission
	err := s.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND problem_set_id = ?", userID, problemSetID).
		First(&sub).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &sub, nil
}

func (s *SubmissionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.ProblemSetSubmission, int64, error) {
	var subs []*models.ProblemSetSubmission
	var total int64

	query := s.getDB(tx).WithContext(ctx).Model(&models.ProblemSetSubmission{})
	if filters.ProblemSetID != nil {
		query = query.Where("problem_set_id = ?", *filters.ProblemSetID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Graded != nil {
		if *filters.Graded {
			query = query.Where("graded_at IS NOT NULL")
		} else {
			query = query.Where("graded_at IS NULL")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	query = query.Order("submitted_at DESC")
	limit := filters.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if err := query.Limit(limit).Offset(filters.Offset).Preload("User").Find(&subs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	return subs, total, nil
}

func (s *SubmissionPostgreSQL) UpdateGrade(ctx context.Context, tx *gorm.DB, userID string, problemSetID uint, grade int, gradedBy string, gradedAt time.Time) error {
	result := s.getDB(tx).WithContext(ctx).
		Model(&models.ProblemSetSubmission{}).
		Where("user_id = ? AND problem_set_id = ?", userID, problemSetID).
		Updates(map[string]interface{}{
			"grade":     grade,
			"graded_at": gradedAt,
			"graded_by": gradedBy,
		})
	return requireAffected(result)
}

// ===== PROGRESS =====

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (p *ProgressPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *ProgressPostgreSQL) IncrementSubmitted(ctx context.Context, tx *gorm.DB, userID string, pathID uint, at time.Time) error {
	row := &models.PathProgress{
		UserID:               userID,
		PathID:               pathID,
		ProblemSetsSubmitted: 1,
		LastActivityAt:       at,
	}

	err := p.getDB(tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "path_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"problem_sets_submitted": gorm.Expr("path_progress.problem_sets_submitted + 1"),
			"last_activity_at":       at,
			"updated_at":             at,
		}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to record progress: %w", translateError(err))
	}
	return nil
}

func (p *ProgressPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.PathProgress, error) {
	var rows []*models.PathProgress
	if err := p.getDB(tx).WithContext(ctx).Where("user_id = ?", userID).Order("path_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return rows, nil
}
