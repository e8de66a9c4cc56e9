package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SharedHelpers contains query building shared by the repositories
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyPaginationAndSort applies a whitelisted ORDER BY plus LIMIT/OFFSET
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, filters repositories.ListFilters, defaultSort string) *gorm.DB {
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"order":      true,
		"date":       true,
		"title":      true,
		"name":       true,
		"deadline":   true,
	}

	sortBy := filters.SortBy
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = defaultSort
	}

	sortOrder := "ASC"
	if filters.SortOrder == "desc" || filters.SortOrder == "DESC" {
		sortOrder = "DESC"
	}

	// "order" is a reserved word
	query = query.Order(`"` + sortBy + `" ` + sortOrder)

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	query = query.Limit(limit)

	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	return query
}

// ApplyContentFilters narrows lecture and problem set queries
func (h *SharedHelpers) ApplyContentFilters(query *gorm.DB, filters repositories.ContentFilters) *gorm.DB {
	if filters.ModuleID != nil {
		query = query.Where("module_id = ?", *filters.ModuleID)
	}
	if filters.PathID != nil {
		query = query.Where("path_id = ?", *filters.PathID)
	}
	if filters.BuddyOnly {
		query = query.Where("access_level = ?", models.AccessBuddy)
	}
	return query
}

// translateError maps gorm errors onto the repository sentinels
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicate
	default:
		return err
	}
}

// requireAffected turns an update that touched no rows into ErrNotFound
func requireAffected(result *gorm.DB) error {
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
