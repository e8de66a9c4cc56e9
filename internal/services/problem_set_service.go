package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdgoc-itb/lms-service/internal/events"
	"github.com/gdgoc-itb/lms-service/internal/metrics"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
	"github.com/gdgoc-itb/lms-service/internal/validator"
)

type problemSetService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	events    notifier
	now       func() time.Time
}

func NewProblemSetService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher events.EventPublisher,
	m *metrics.Metrics,
	now func() time.Time,
) ProblemSetService {
	if now == nil {
		now = time.Now
	}
	return &problemSetService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		events:    notifier{publisher: publisher, metrics: m, logger: logger},
		now:       now,
	}
}

func (s *problemSetService) Create(ctx context.Context, req *ProblemSetRequest) (*models.ProblemSet, error) {
	ps := &models.ProblemSet{}
	if err := s.apply(ctx, ps, req); err != nil {
		return nil, err
	}

	if err := s.repo.ProblemSet().Create(ctx, nil, ps); err != nil {
		return nil, fmt.Errorf("failed to create problem set: %w", err)
	}

	s.logger.Info("Problem set created", "problem_set_id", ps.ID, "module_id", ps.ModuleID)
	return ps, nil
}

func (s *problemSetService) Get(ctx context.Context, id uint, viewer *models.User) (*models.ProblemSet, error) {
	ps, err := s.repo.ProblemSet().GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err, ErrProblemSetNotFound, "get problem set")
	}
	if !models.VisibleTo(ps.AccessLevel, viewerAccess(viewer)) {
		return nil, ErrContentMembersOnly
	}
	return ps, nil
}

func (s *problemSetService) List(ctx context.Context, req *ContentListRequest, viewer *models.User) (*ProblemSetListResponse, error) {
	filters := repositories.ContentFilters{
		ModuleID:    req.ModuleID,
		PathID:      req.PathID,
		BuddyOnly:   isBuddy(viewer),
		ListFilters: req.Filters(),
	}

	problemSets, total, err := s.repo.ProblemSet().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list problem sets: %w", err)
	}

	return &ProblemSetListResponse{
		ProblemSets: problemSets,
		Pagination:  req.Pagination(total),
	}, nil
}

func (s *problemSetService) Update(ctx context.Context, id uint, req *ProblemSetRequest) (*models.ProblemSet, error) {
	problemSets := s.repo.ProblemSet()

	ps, err := problemSets.GetByIDUncached(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err, ErrProblemSetNotFound, "get problem set")
	}
	if err := s.apply(ctx, ps, req); err != nil {
		return nil, err
	}

	if err := problemSets.Update(ctx, nil, ps); err != nil {
		return nil, mapRepoError(err, ErrProblemSetNotFound, "update problem set")
	}

	s.logger.Info("Problem set updated", "problem_set_id", ps.ID)
	return ps, nil
}

func (s *problemSetService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.ProblemSet().Delete(ctx, nil, id); err != nil {
		return mapRepoError(err, ErrProblemSetNotFound, "delete problem set")
	}
	s.logger.Info("Problem set deleted", "problem_set_id", id)
	return nil
}

// apply validates req and copies it onto ps. The path is always taken from the module.
func (s *problemSetService) apply(ctx context.Context, ps *models.ProblemSet, req *ProblemSetRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	maxGrade := models.DefaultMaxGrade
	if req.MaxGrade != nil {
		maxGrade = *req.MaxGrade
	}
	passingGrade := models.DefaultPassingGrade
	if req.PassingGrade != nil {
		passingGrade = *req.PassingGrade
	}
	if err := validationError(s.validator.ValidateGradeThresholds(maxGrade, passingGrade)); err != nil {
		return err
	}

	module, err := s.repo.Module().GetByID(ctx, nil, req.ModuleID)
	if err != nil {
		return mapRepoError(err, ErrModuleNotFound, "get module")
	}

	access := req.AccessLevel
	if access == "" {
		access = models.AccessMember
	}

	ps.ModuleID = module.ID
	ps.PathID = module.PathID
	ps.Title = strings.TrimSpace(req.Title)
	ps.Description = req.Description
	ps.VideoURL = req.VideoURL
	if req.Video != nil {
		ps.VideoURL = req.Video.URL
	}
	ps.SubmissionType = req.SubmissionType
	ps.AccessLevel = access
	ps.Deadline = req.Deadline
	ps.MaxGrade = maxGrade
	ps.PassingGrade = passingGrade
	ps.IsManualGrading = req.IsManualGrading
	ps.Order = req.Order
	return nil
}

// ===== GRADING =====

func (s *problemSetService) Grade(ctx context.Context, problemSetID uint, userID string, req *GradeRequest, grader *models.User) (*models.GradeResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ps, err := s.repo.ProblemSet().GetByIDUncached(ctx, nil, problemSetID)
	if err != nil {
		return nil, mapRepoError(err, ErrProblemSetNotFound, "get problem set")
	}

	grade := *req.Grade
	if errs := s.validator.ValidateGrade(grade, ps); len(errs) > 0 {
		return nil, withCause(ErrInvalidGrade, errs)
	}

	submissions := s.repo.Submission()
	if err := submissions.UpdateGrade(ctx, nil, userID, ps.ID, grade, grader.ID, s.now()); err != nil {
		return nil, mapRepoError(err, ErrSubmissionNotFound, "grade submission")
	}

	submission, err := submissions.Get(ctx, nil, userID, ps.ID)
	if err != nil {
		return nil, mapRepoError(err, ErrSubmissionNotFound, "get graded submission")
	}

	result := &models.GradeResult{
		Submission:   submission,
		MaxGrade:     ps.MaxGrade,
		PassingGrade: ps.PassingGrade,
		Passed:       grade >= ps.PassingGrade,
	}

	s.logger.Info("Submission graded",
		"problem_set_id", ps.ID,
		"user_id", userID,
		"grade", grade,
		"passed", result.Passed,
		"graded_by", grader.ID)
	s.events.publish(ctx, events.TypeProblemSetGraded, events.GradedEvent{
		UserID:       userID,
		ProblemSetID: ps.ID,
		Grade:        grade,
		Passed:       result.Passed,
		GradedBy:     grader.ID,
	})

	return result, nil
}

func (s *problemSetService) ListSubmissions(ctx context.Context, problemSetID uint, req *SubmissionListRequest) (*SubmissionListResponse, error) {
	if _, err := s.repo.ProblemSet().GetByID(ctx, nil, problemSetID); err != nil {
		return nil, mapRepoError(err, ErrProblemSetNotFound, "get problem set")
	}

	id := problemSetID
	submissions, total, err := s.repo.Submission().List(ctx, nil, repositories.SubmissionFilters{
		ProblemSetID: &id,
		Graded:       req.Graded,
		ListFilters:  req.Filters(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return &SubmissionListResponse{
		Submissions: submissions,
		Pagination:  req.Pagination(total),
	}, nil
}

func (s *problemSetService) MySubmission(ctx context.Context, problemSetID uint, userID string) (*models.ProblemSetSubmission, error) {
	submission, err := s.repo.Submission().Get(ctx, nil, userID, problemSetID)
	if err != nil {
		return nil, mapRepoError(err, ErrSubmissionNotFound, "get submission")
	}
	return submission, nil
}
