package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/gdgoc-itb/lms-service/internal/cache"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	user        repositories.UserRepository
	path        repositories.PathRepository
	module      repositories.ModuleRepository
	lecture     repositories.LectureRepository
	problemSet  repositories.ProblemSetRepository
	submission  repositories.SubmissionRepository
	progress    repositories.ProgressRepository
	event       repositories.EventRepository
	certificate repositories.CertificateRepository
	dashboard   repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	return newRepository(config.DB, config.RedisClient, cache.NewCacheManager(config.RedisClient))
}

func newRepository(db *gorm.DB, redisClient *redis.Client, cacheManager *cache.CacheManager) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:           db,
		redisClient:  redisClient,
		cacheManager: cacheManager,

		// Users are never cached
		user: NewUserPostgreSQL(db),

		path:        NewPathPostgreSQL(db, cacheManager),
		module:      NewModulePostgreSQL(db, cacheManager),
		lecture:     NewLecturePostgreSQL(db),
		problemSet:  NewProblemSetPostgreSQL(db, cacheManager),
		submission:  NewSubmissionPostgreSQL(db),
		progress:    NewProgressPostgreSQL(db),
		event:       NewEventPostgreSQL(db),
		certificate: NewCertificatePostgreSQL(db, cacheManager),
		dashboard:   NewDashboardRepository(db),
	}
}

func (r *PostgreSQLRepository) User() repositories.UserRepository { return r.user }

func (r *PostgreSQLRepository) Path() repositories.PathRepository { return r.path }

func (r *PostgreSQLRepository) Module() repositories.ModuleRepository { return r.module }

func (r *PostgreSQLRepository) Lecture() repositories.LectureRepository { return r.lecture }

func (r *PostgreSQLRepository) ProblemSet() repositories.ProblemSetRepository { return r.problemSet }

func (r *PostgreSQLRepository) Submission() repositories.SubmissionRepository { return r.submission }

func (r *PostgreSQLRepository) Progress() repositories.ProgressRepository { return r.progress }

func (r *PostgreSQLRepository) Event() repositories.EventRepository { return r.event }

func (r *PostgreSQLRepository) Certificate() repositories.CertificateRepository { return r.certificate }

func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository { return r.dashboard }

// WithTransaction executes a function within a database transaction. Every
// sub-repository of the repository handed to fn is bound to the transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepository(tx, r.redisClient, r.cacheManager))
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize verifies connectivity and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown closes all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
