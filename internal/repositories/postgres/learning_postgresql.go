package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gdgoc-itb/lms-service/internal/cache"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

// ===== PATHS =====

type PathPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewPathPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.PathRepository {
	return &PathPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (p *PathPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *PathPostgreSQL) Create(ctx context.Context, tx *gorm.DB, path *models.Path) error {
	if err := p.getDB(tx).WithContext(ctx).Create(path).Error; err != nil {
		return translateError(err)
	}
	cache.SafeInvalidatePattern(ctx, p.cacheManager.Path, "list:*")
	return nil
}

func (p *PathPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Path, error) {
	var path models.Path
	err := p.cacheManager.Path.CacheOrExecute(ctx, fmt.Sprintf("id:%d", id), &path, cache.PathCacheConfig.TTL, func() (interface{}, error) {
		var dbPath models.Path
		if err := p.getDB(tx).WithContext(ctx).First(&dbPath, id).Error; err != nil {
			return nil, translateError(err)
		}
		return &dbPath, nil
	})
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func (p *PathPostgreSQL) GetByIDWithModules(ctx context.Context, tx *gorm.DB, id uint) (*models.Path, error) {
	var path models.Path
	err := p.cacheManager.Path.CacheOrExecute(ctx, fmt.Sprintf("tree:%d", id), &path, cache.PathCacheConfig.TTL, func() (interface{}, error) {
		var dbPath models.Path
		err := p.getDB(tx).WithContext(ctx).
			Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order(`"order" ASC`) }).
			First(&dbPath, id).Error
		if err != nil {
			return nil, translateError(err)
		}
		return &dbPath, nil
	})
	if err != nil {
		return nil, err
	}
	return &path, nil
}

type pathPage struct {
	Paths []*models.Path `json:"paths"`
	Total int64          `json:"total"`
}

func (p *PathPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ListFilters) ([]*models.Path, int64, error) {
	key := fmt.Sprintf("list:%d:%d:%s:%s", filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)

	var page pathPage
	err := p.cacheManager.Path.CacheOrExecute(ctx, key, &page, cache.PathCacheConfig.TTL, func() (interface{}, error) {
		var result pathPage
		query := p.getDB(tx).WithContext(ctx).Model(&models.Path{})
		if err := query.Count(&result.Total).Error; err != nil {
			return nil, fmt.Errorf("failed to count paths: %w", err)
		}
		query = p.helpers.ApplyPaginationAndSort(query, filters, "created_at")
		if err := query.Find(&result.Paths).Error; err != nil {
			return nil, fmt.Errorf("failed to list paths: %w", err)
		}
		return &result, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Paths, page.Total, nil
}

func (p *PathPostgreSQL) Update(ctx context.Context, tx *gorm.DB, path *models.Path) error {
	if err := p.getDB(tx).WithContext(ctx).Save(path).Error; err != nil {
		return translateError(err)
	}
	cache.InvalidatePathCache(ctx, p.cacheManager, path.ID)
	return nil
}

func (p *PathPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := requireAffected(p.getDB(tx).WithContext(ctx).Delete(&models.Path{}, id)); err != nil {
		return err
	}
	cache.InvalidatePathCache(ctx, p.cacheManager, id)
	return nil
}

// ===== MODULES =====

type ModulePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewModulePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ModuleRepository {
	return &ModulePostgreSQL{db: db, cacheManager: cacheManager}
}

func (m *ModulePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return m.db
}

func (m *ModulePostgreSQL) Create(ctx context.Context, tx *gorm.DB, module *models.Module) error {
	if err := m.getDB(tx).WithContext(ctx).Create(module).Error; err != nil {
		return translateError(err)
	}
	cache.InvalidatePathCache(ctx, m.cacheManager, module.PathID)
	return nil
}

func (m *ModulePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Module, error) {
	var module models.Module
	err := m.getDB(tx).WithContext(ctx).
		Preload("Lectures", func(db *gorm.DB) *gorm.DB { return db.Order(`"order" ASC`) }).
		Preload("ProblemSets", func(db *gorm.DB) *gorm.DB { return db.Order(`"order" ASC`) }).
		First(&module, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &module, nil
}

func (m *ModulePostgreSQL) ListByPath(ctx context.Context, tx *gorm.DB, pathID uint) ([]*models.Module, error) {
	var modules []*models.Module
	err := m.getDB(tx).WithContext(ctx).
		Where("path_id = ?", pathID).
		Order(`"order" ASC`).
		Find(&modules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

func (m *ModulePostgreSQL) Update(ctx context.Context, tx *gorm.DB, module *models.Module) error {
	if err := m.getDB(tx).WithContext(ctx).Omit("Lectures", "ProblemSets").Save(module).Error; err != nil {
		return translateError(err)
	}
	cache.InvalidatePathCache(ctx, m.cacheManager, module.PathID)
	return nil
}

func (m *ModulePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var module models.Module
	db := m.getDB(tx).WithContext(ctx)
	if err := db.Select("id", "path_id").First(&module, id).Error; err != nil {
		return translateError(err)
	}
	if err := requireAffected(db.Delete(&models.Module{}, id)); err != nil {
		return err
	}
	cache.InvalidatePathCache(ctx, m.cacheManager, module.PathID)
	return nil
}

// ===== LECTURES =====

type LecturePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewLecturePostgreSQL(db *gorm.DB) repositories.LectureRepository {
	return &LecturePostgreSQL{db: db, helpers: NewSharedHelpers(db)}
}

func (l *LecturePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

func (l *LecturePostgreSQL) Create(ctx context.Context, tx *gorm.DB, lecture *models.Lecture) error {
	return translateError(l.getDB(tx).WithContext(ctx).Create(lecture).Error)
}

func (l *LecturePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lecture, error) {
	var lecture models.Lecture
	if err := l.getDB(tx).WithContext(ctx).First(&lecture, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &lecture, nil
}

func (l *LecturePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ContentFilters) ([]*models.Lecture, int64, error) {
	var lectures []*models.Lecture
	var total int64

	query := l.getDB(tx).WithContext(ctx).Model(&models.Lecture{})
	query = l.helpers.ApplyContentFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count lectures: %w", err)
	}

	query = l.helpers.ApplyPaginationAndSort(query, filters.ListFilters, "order")
	if err := query.Find(&lectures).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list lectures: %w", err)
	}

	return lectures, total, nil
}

func (l *LecturePostgreSQL) Update(ctx context.Context, tx *gorm.DB, lecture *models.Lecture) error {
	return translateError(l.getDB(tx).WithContext(ctx).Save(lecture).Error)
}

func (l *LecturePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return requireAffected(l.getDB(tx).WithContext(ctx).Delete(&models.Lecture{}, id))
}
