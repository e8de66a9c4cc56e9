package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

type progressService struct {
	repo   repositories.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewProgressService(repo repositories.Repository, logger *slog.Logger, now func() time.Time) ProgressService {
	if now == nil {
		now = time.Now
	}
	return &progressService{
		repo:   repo,
		logger: logger,
		now:    now,
	}
}

func (s *progressService) RecordFirstSubmission(ctx context.Context, userID string, pathID uint) error {
	if err := s.repo.Progress().IncrementSubmitted(ctx, nil, userID, pathID, s.now()); err != nil {
		return fmt.Errorf("failed to increment path progress: %w", err)
	}
	s.logger.Debug("Path progress incremented", "user_id", userID, "path_id", pathID)
	return nil
}

func (s *progressService) MyProgress(ctx context.Context, userID string) ([]*models.PathProgress, error) {
	progress, err := s.repo.Progress().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list path progress: %w", err)
	}
	return progress, nil
}
