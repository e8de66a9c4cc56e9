package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gdgoc-itb/lms-service/internal/auth"
	"github.com/gdgoc-itb/lms-service/internal/config"
	"github.com/gdgoc-itb/lms-service/internal/metrics"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/services"
	"github.com/gdgoc-itb/lms-service/internal/storage"
	"github.com/gdgoc-itb/lms-service/internal/utils"
)

type HandlerManager struct {
	serviceManager      services.ServiceManager
	metrics             *metrics.Metrics
	gate                *AccessGate
	authHandler         *AuthHandler
	userHandler         *UserHandler
	learningHandler     *LearningHandler
	problemSetHandler   *ProblemSetHandler
	communityHandler    *EventHandler
	professionalHandler *EventHandler
	certificateHandler  *CertificateHandler
	dashboardHandler    *DashboardHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	cfg *config.Config,
	fileStore storage.FileStore,
	m *metrics.Metrics,
	logger utils.Logger,
) *HandlerManager {
	uploader := NewUploader(fileStore, m, logger)

	return &HandlerManager{
		serviceManager:      serviceManager,
		metrics:             m,
		gate:                NewAccessGate(serviceManager.Auth(), logger),
		authHandler:         NewAuthHandler(serviceManager.Auth(), cfg.Cookie, logger),
		userHandler:         NewUserHandler(serviceManager.User(), serviceManager.Progress(), logger),
		learningHandler:     NewLearningHandler(serviceManager.Learning(), uploader, logger),
		problemSetHandler:   NewProblemSetHandler(serviceManager.ProblemSet(), serviceManager.Submission(), serviceManager.Export(), uploader, logger),
		communityHandler:    NewEventHandler(models.EventCommunity, serviceManager.Event(), serviceManager.Export(), uploader, logger),
		professionalHandler: NewEventHandler(models.EventProfessional, serviceManager.Event(), serviceManager.Export(), uploader, logger),
		certificateHandler:  NewCertificateHandler(serviceManager.Certificate(), logger),
		dashboardHandler:    NewDashboardHandler(serviceManager.Dashboard(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	protect := hm.gate.Authenticate()
	admins := hm.gate.RequireAccess(models.AdminAccessLevels...)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/google", hm.authHandler.GoogleLogin)
			authRoutes.POST("/register-buddy", hm.authHandler.RegisterBuddy)
			authRoutes.GET("/me", protect, hm.authHandler.Me)
			authRoutes.POST("/register-admin", protect, hm.gate.RequirePermission(auth.OpRegisterAdmin), hm.authHandler.RegisterAdmin)
			authRoutes.POST("/logout", hm.authHandler.Logout)
		}

		users := api.Group("/users", protect)
		{
			users.GET("/me/progress", hm.userHandler.MyProgress)
			users.GET("/me/certificates", hm.certificateHandler.ListMine)
			users.GET("", admins, hm.userHandler.ListUsers)
			users.PUT("/:id/access", hm.gate.RequirePermission(auth.OpManageUsers), hm.userHandler.UpdateAccess)
		}

		manageContent := hm.gate.RequirePermission(auth.OpManageContent)

		paths := api.Group("/paths", protect)
		{
			paths.GET("", hm.learningHandler.ListPaths)
			paths.GET("/:id", hm.learningHandler.GetPath)
			paths.GET("/:id/modules", hm.learningHandler.ListModules)
			paths.POST("", manageContent, hm.learningHandler.CreatePath)
			paths.PUT("/:id", manageContent, hm.learningHandler.UpdatePath)
			paths.DELETE("/:id", manageContent, hm.learningHandler.DeletePath)
		}

		modules := api.Group("/modules")
		{
			// Module listings are public; a session is attached when present.
			modules.GET("", hm.gate.OptionalAuthenticate(), hm.learningHandler.ListModules)
			modules.GET("/:id", protect, hm.learningHandler.GetModule)
			modules.GET("/:id/lectures", protect, hm.learningHandler.ListLectures)
			modules.GET("/:id/problem-sets", protect, hm.problemSetHandler.List)
			modules.POST("", protect, manageContent, hm.learningHandler.CreateModule)
			modules.PUT("/:id", protect, manageContent, hm.learningHandler.UpdateModule)
			modules.DELETE("/:id", protect, manageContent, hm.learningHandler.DeleteModule)
		}

		lectures := api.Group("/lectures", protect)
		{
			lectures.GET("", hm.learningHandler.ListLectures)
			lectures.GET("/:id", hm.learningHandler.GetLecture)
			lectures.POST("", manageContent, hm.learningHandler.CreateLecture)
			lectures.PUT("/:id", manageContent, hm.learningHandler.UpdateLecture)
			lectures.DELETE("/:id", manageContent, hm.learningHandler.DeleteLecture)
		}

		grade := hm.gate.RequirePermission(auth.OpGradeSubmissions)

		problemSets := api.Group("/problem-sets", protect)
		{
			problemSets.GET("", hm.problemSetHandler.List)
			problemSets.GET("/:id", hm.problemSetHandler.Get)
			problemSets.POST("", manageContent, hm.problemSetHandler.Create)
			problemSets.PUT("/:id", manageContent, hm.problemSetHandler.Update)
			problemSets.DELETE("/:id", manageContent, hm.problemSetHandler.Delete)

			problemSets.POST("/:id/submit", hm.problemSetHandler.Submit)
			problemSets.GET("/:id/submission", hm.problemSetHandler.MySubmission)

			problemSets.POST("/:id/grade/:userId", grade, hm.problemSetHandler.Grade)
			problemSets.GET("/:id/submissions", grade, hm.problemSetHandler.ListSubmissions)
			problemSets.GET("/:id/submissions/export", grade, hm.problemSetHandler.ExportSubmissions)
		}

		hm.eventRoutes(api.Group("/community-events", protect), hm.communityHandler, models.EventCommunity)
		hm.eventRoutes(api.Group("/professional-events", protect), hm.professionalHandler, models.EventProfessional)

		manageCertificates := hm.gate.RequirePermission(auth.OpManageCertificates)

		certificates := api.Group("/certificates")
		{
			certificates.GET("/verify/:certificateId", hm.certificateHandler.Verify)
			certificates.GET("", protect, manageCertificates, hm.certificateHandler.List)
			certificates.GET("/:id", protect, hm.certificateHandler.Get)
			certificates.POST("", protect, manageCertificates, hm.certificateHandler.Create)
			certificates.PUT("/:id", protect, manageCertificates, hm.certificateHandler.Update)
			certificates.DELETE("/:id", protect, manageCertificates, hm.certificateHandler.Delete)
		}

		dashboard := api.Group("/dashboard", protect, hm.gate.RequirePermission(auth.OpViewDashboard))
		{
			dashboard.GET("/stats", hm.dashboardHandler.GetDashboardStats)
		}
	}

	router.GET("/health", hm.health)
	if hm.metrics != nil {
		router.GET("/metrics", hm.metrics.Handler())
	}
}

func (hm *HandlerManager) eventRoutes(group *gin.RouterGroup, h *EventHandler, kind models.EventKind) {
	manage := hm.gate.RequirePermission(auth.EventOperation(kind))

	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("", manage, h.Create)
	group.PUT("/:id", manage, h.Update)
	group.DELETE("/:id", manage, h.Delete)

	group.POST("/:id/rsvp", h.RSVP)
	group.DELETE("/:id/rsvp", h.CancelRSVP)

	group.POST("/:id/attendance/:userId", manage, h.MarkAttendance)
	group.GET("/:id/attendees", manage, h.ListAttendees)
	group.GET("/:id/attendees/export", manage, h.ExportAttendance)
}

func (hm *HandlerManager) health(c *gin.Context) {
	body := gin.H{
		"status":    "healthy",
		"service":   "lms-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		body["status"] = "unhealthy"
		body["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	c.JSON(http.StatusOK, body)
}
