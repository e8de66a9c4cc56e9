package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gdgoc-itb/lms-service/internal/auth"
	"github.com/gdgoc-itb/lms-service/internal/events"
	"github.com/gdgoc-itb/lms-service/internal/metrics"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
	"github.com/gdgoc-itb/lms-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// PublishEvents toggles domain event publishing.
	PublishEvents bool
	// RecordMetrics toggles the Prometheus recorders inside services.
	RecordMetrics bool

	HealthCheckTimeout time.Duration
}

// ServiceDependencies are the collaborators shared by every service.
type ServiceDependencies struct {
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.Validator

	Whitelist WhitelistChecker
	Tokens    *auth.TokenService
	Verifier  auth.IdentityVerifier

	Publisher events.EventPublisher
	Metrics   *metrics.Metrics

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   ServiceDependencies
	config ServiceManagerConfig

	// Service instances
	authService        AuthService
	userService        UserService
	learningService    LearningService
	problemSetService  ProblemSetService
	submissionService  SubmissionService
	progressService    ProgressService
	eventService       EventService
	certificateService CertificateService
	dashboardService   DashboardService
	exportService      ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceDependencies, config ServiceManagerConfig) ServiceManager {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(deps ServiceDependencies) ServiceManager {
	return NewServiceManager(deps, ServiceManagerConfig{
		PublishEvents:      true,
		RecordMetrics:      true,
		HealthCheckTimeout: 5 * time.Second,
	})
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.deps.Logger.Info("Initializing service manager")

	if err := sm.initializeServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() error {
	d := sm.deps
	if d.Repo == nil {
		return fmt.Errorf("repository is required")
	}
	if d.Tokens == nil || d.Verifier == nil || d.Whitelist == nil {
		return fmt.Errorf("auth collaborators are required")
	}

	publisher := d.Publisher
	if !sm.config.PublishEvents {
		publisher = nil
	}
	m := d.Metrics
	if !sm.config.RecordMetrics {
		m = nil
	}

	sm.authService = NewAuthService(d.Repo, d.Logger, d.Validator, d.Whitelist, d.Tokens, d.Verifier, publisher, m)
	sm.userService = NewUserService(d.Repo, d.Logger, d.Validator)
	sm.learningService = NewLearningService(d.Repo, d.Logger, d.Validator)
	sm.progressService = NewProgressService(d.Repo, d.Logger, d.Clock)
	sm.problemSetService = NewProblemSetService(d.Repo, d.Logger, d.Validator, publisher, m, d.Clock)
	sm.submissionService = NewSubmissionService(d.Repo, d.Logger, sm.progressService, publisher, m, d.Clock)
	sm.eventService = NewEventService(d.Repo, d.Logger, d.Validator, publisher, m)
	sm.certificateService = NewCertificateService(d.Repo, d.Logger, d.Validator, publisher, m, d.Clock)
	sm.dashboardService = NewDashboardService(d.Repo, d.Logger, d.Clock)
	sm.exportService = NewExportService(d.Repo, d.Logger, d.Clock)

	d.Logger.Info("Services initialized",
		"publish_events", publisher != nil,
		"record_metrics", m != nil)
	return nil
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) Learning() LearningService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.learningService
}

func (sm *serviceManager) ProblemSet() ProblemSetService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.problemSetService
}

func (sm *serviceManager) Submission() SubmissionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.submissionService
}

func (sm *serviceManager) Progress() ProgressService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.progressService
}

func (sm *serviceManager) Event() EventService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.eventService
}

func (sm *serviceManager) Certificate() CertificateService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.certificateService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.dashboardService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.exportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if sm.config.HealthCheckTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sm.config.HealthCheckTimeout)
		defer cancel()
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown closes the event publisher. The repository is owned by its manager.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}
