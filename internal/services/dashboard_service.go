package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

const activeUserWindow = 30 * 24 * time.Hour

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger, now func() time.Time) DashboardService {
	if now == nil {
		now = time.Now
	}
	return &dashboardService{
		repo:   repo,
		logger: logger,
		now:    now,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {
	s.logger.Info("Getting dashboard stats")
	now := s.now()
	dashboard := s.repo.Dashboard()

	usersByAccess, err := dashboard.CountUsersByAccess(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by access: %w", err)
	}

	totalPaths, err := dashboard.GetTotalPaths(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get total paths: %w", err)
	}

	totalProblemSets, err := dashboard.GetTotalProblemSets(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get total problem sets: %w", err)
	}

	totalSubmissions, err := dashboard.GetTotalSubmissions(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get total submissions: %w", err)
	}

	pending, err := dashboard.GetPendingManualGrading(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending manual grading: %w", err)
	}

	upcoming, err := dashboard.GetUpcomingEvents(ctx, nil, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming events: %w", err)
	}

	activeUsers, err := dashboard.GetActiveUsers(ctx, nil, now.Add(-activeUserWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to get active users: %w", err)
	}

	return &models.DashboardStats{
		UsersByAccess:      usersByAccess,
		TotalPaths:         totalPaths,
		TotalProblemSets:   totalProblemSets,
		TotalSubmissions:   totalSubmissions,
		PendingManualGrade: pending,
		PendingGradingRate: percentage(pending, totalSubmissions),
		UpcomingEvents:     upcoming,
		ActiveUsers:        activeUsers,
		GeneratedAt:        now,
	}, nil
}

func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return roundFloat(float64(part)/float64(total)*100, 1)
}

// Helper function to round float to specified decimal places
func roundFloat(val float64, precision int) float64 {
	ratio := 1.0
	for i := 0; i < precision; i++ {
		ratio *= 10
	}
	return float64(int(val*ratio+0.5)) / ratio
}
