package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdgoc-itb/lms-service/internal/events"
	"github.com/gdgoc-itb/lms-service/internal/metrics"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
	"github.com/gdgoc-itb/lms-service/internal/storage"
)

type submissionService struct {
	repo     repositories.Repository
	logger   *slog.Logger
	progress ProgressService
	metrics  *metrics.Metrics
	events   notifier
	now      func() time.Time
}

func NewSubmissionService(
	repo repositories.Repository,
	logger *slog.Logger,
	progress ProgressService,
	publisher events.EventPublisher,
	m *metrics.Metrics,
	now func() time.Time,
) SubmissionService {
	if now == nil {
		now = time.Now
	}
	return &submissionService{
		repo:     repo,
		logger:   logger,
		progress: progress,
		metrics:  m,
		events:   notifier{publisher: publisher, metrics: m, logger: logger},
		now:      now,
	}
}

// Submit records the caller's current answer for a problem set. There is one row per
// (user, problem set); a resubmission overwrites it and only the first one counts
// towards path progress.
func (s *submissionService) Submit(ctx context.Context, problemSetID uint, user *models.User, req *SubmitRequest) (*SubmitResult, error) {
	ps, err := s.repo.ProblemSet().GetByIDUncached(ctx, nil, problemSetID)
	if err != nil {
		return nil, mapRepoError(err, ErrProblemSetNotFound, "get problem set")
	}

	if !models.VisibleTo(ps.AccessLevel, user.Access) {
		return nil, ErrContentMembersOnly
	}

	now := s.now()
	if ps.DeadlinePassed(now) {
		return nil, ErrDeadlinePassed
	}

	submissionURL, err := resolveSubmissionURL(ps.SubmissionType, req)
	if err != nil {
		return nil, err
	}

	submissions := s.repo.Submission()
	replacedURL := ""
	previous, err := submissions.Get(ctx, nil, user.ID, ps.ID)
	switch {
	case err == nil:
		if previous.SubmissionURL != submissionURL {
			replacedURL = previous.SubmissionURL
		}
	case !errors.Is(err, repositories.ErrNotFound):
		s.logger.Warn("Failed to read previous submission", "user_id", user.ID, "problem_set_id", ps.ID, "error", err)
	}

	created, err := submissions.Upsert(ctx, nil, repositories.SubmissionUpsert{
		UserID:        user.ID,
		ProblemSetID:  ps.ID,
		SubmissionURL: submissionURL,
		SubmittedAt:   now,
		ResetGrade:    !ps.IsManualGrading,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	if created {
		if err := s.progress.RecordFirstSubmission(ctx, user.ID, ps.PathID); err != nil {
			s.logger.Error("Failed to record path progress",
				"user_id", user.ID,
				"path_id", ps.PathID,
				"problem_set_id", ps.ID,
				"error", err)
		}
	}

	submission, err := submissions.Get(ctx, nil, user.ID, ps.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved submission: %w", err)
	}

	s.logger.Info("Problem set submitted",
		"user_id", user.ID,
		"problem_set_id", ps.ID,
		"type", ps.SubmissionType,
		"first_submit", created)
	s.metrics.ObserveSubmission(string(ps.SubmissionType), created)
	s.events.publish(ctx, events.TypeProblemSetSubmitted, events.SubmissionEvent{
		UserID:        user.ID,
		ProblemSetID:  ps.ID,
		PathID:        ps.PathID,
		SubmissionURL: submissionURL,
		FirstSubmit:   created,
		SubmittedAt:   now,
	})

	return &SubmitResult{Submission: submission, FirstSubmit: created, ReplacedURL: replacedURL}, nil
}

func resolveSubmissionURL(submissionType models.SubmissionType, req *SubmitRequest) (string, error) {
	if req == nil {
		req = &SubmitRequest{}
	}

	if submissionType == models.SubmissionLink {
		link := strings.TrimSpace(req.SubmissionLink)
		if link == "" {
			return "", ErrSubmissionLinkRequired
		}
		return link, nil
	}

	if req.File == nil || req.File.URL == "" {
		return "", ErrSubmissionFileRequired
	}
	if submissionType == models.SubmissionImage && req.File.Kind != storage.KindImage {
		return "", ErrSubmissionNotImage
	}
	return req.File.URL, nil
}
