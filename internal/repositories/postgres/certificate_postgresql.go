package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gdgoc-itb/lms-service/internal/cache"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

type CertificatePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCertificatePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CertificateRepository {
	return &CertificatePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (c *CertificatePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CertificatePostgreSQL) Create(ctx context.Context, tx *gorm.DB, cert *models.Certificate) error {
	return translateError(c.getDB(tx).WithContext(ctx).Omit("User", "Path").Create(cert).Error)
}

func (c *CertificatePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Certificate, error) {
	var cert models.Certificate
	if err := c.getDB(tx).WithContext(ctx).Preload("Path").First(&cert, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &cert, nil
}

// GetByCertificateID backs the public verification page and is cached.
func (c *CertificatePostgreSQL) GetByCertificateID(ctx context.Context, tx *gorm.DB, certificateID string) (*models.Certificate, error) {
	var cert models.Certificate
	err := c.cacheManager.Certificate.CacheOrExecute(ctx, "verify:"+certificateID, &cert, cache.CertificateCacheConfig.TTL, func() (interface{}, error) {
		var dbCert models.Certificate
		err := c.getDB(tx).WithContext(ctx).
			Preload("User").
			Preload("Path").
			Where("certificate_id = ?", certificateID).
			First(&dbCert).Error
		if err != nil {
			return nil, translateError(err)
		}
		return &dbCert, nil
	})
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (c *CertificatePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CertificateFilters) ([]*models.Certificate, int64, error) {
	var certs []*models.Certificate
	var total int64

	query := c.getDB(tx).WithContext(ctx).Model(&models.Certificate{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.PathID != nil {
		query = query.Where("path_id = ?", *filters.PathID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count certificates: %w", err)
	}

	query = c.helpers.ApplyPaginationAndSort(query, filters.ListFilters, "created_at")
	if err := query.Preload("Path").Find(&certs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list certificates: %w", err)
	}

	return certs, total, nil
}

func (c *CertificatePostgreSQL) Update(ctx context.Context, tx *gorm.DB, cert *models.Certificate) error {
	if err := c.getDB(tx).WithContext(ctx).Omit("User", "Path").Save(cert).Error; err != nil {
		return translateError(err)
	}
	cache.InvalidateCertificateCache(ctx, c.cacheManager, cert.CertificateID)
	return nil
}

func (c *CertificatePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var cert models.Certificate
	db := c.getDB(tx).WithContext(ctx)
	if err := db.Select("id", "certificate_id").First(&cert, id).Error; err != nil {
		return translateError(err)
	}
	if err := requireAffected(db.Delete(&models.Certificate{}, id)); err != nil {
		return err
	}
	cache.InvalidateCertificateCache(ctx, c.cacheManager, cert.CertificateID)
	return nil
}
