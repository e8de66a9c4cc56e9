package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
	"github.com/gdgoc-itb/lms-service/internal/validator"
)

type learningService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewLearningService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) LearningService {
	return &learningService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== PATHS =====

func (s *learningService) CreatePath(ctx context.Context, req *PathRequest) (*models.Path, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	path := &models.Path{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := s.repo.Path().Create(ctx, nil, path); err != nil {
		return nil, fmt.Errorf("failed to create path: %w", err)
	}

	s.logger.Info("Path created", "path_id", path.ID)
	return path, nil
}

func (s *learningService) GetPath(ctx context.Context, id uint) (*models.Path, error) {
	path, err := s.repo.Path().GetByIDWithModules(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err, ErrPathNotFound, "get path")
	}
	return path, nil
}

func (s *learningService) ListPaths(ctx context.Context, page PageRequest) (*PathListResponse, error) {
	paths, total, err := s.repo.Path().List(ctx, nil, page.Filters())
	if err != nil {
		return nil, fmt.Errorf("failed to list paths: %w", err)
	}
	return &PathListResponse{Paths: paths, Pagination: page.Pagination(total)}, nil
}

func (s *learningService) UpdatePath(ctx context.Context, id uint, req *PathRequest) (*models.Path, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	paths := s.repo.Path()
	path, err := paths.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err, ErrPathNotFound, "get path")
	}

	path.Name = strings.TrimSpace(req.Name)
	path.Description = req.Description
	if err := paths.Update(ctx, nil, path); err != nil {
		return nil, mapRepoError(err, ErrPathNotFound, "update path")
	}

	s.logger.Info("Path updated", "path_id", id)
	return path, nil
}

func (s *learningService) DeletePath(ctx context.Context, id uint) error {
	if err := s.repo.Path().Delete(ctx, nil, id); err != nil {
		return mapRepoError(err, ErrPathNotFound, "delete path")
	}
	s.logger.Info("Path deleted", "path_id", id)
	return nil
}

// ===== MODULES =====

func (s *learningService) CreateModule(ctx context.Context, req *ModuleRequest) (*models.Module, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Path().GetByID(ctx, nil, req.PathID); err != nil {
		return nil, mapRepoError(err, ErrPathNotFound, "get path")
	}

	module := &models.Module{}
	applyModule(module, req)
	if err := s.repo.Module().Create(ctx, nil, module); err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}

	s.logger.Info("Module created", "module_id", module.ID, "path_id", module.PathID)
	return module, nil
}

func (s *learningService) GetModule(ctx context.Context, id uint) (*models.Module, error) {
	module, err := s.repo.Module().GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err, ErrModuleNotFound, "get module")
	}
	return module, nil
}

func (s *learningService) ListModules(ctx context.Context, pathID uint) ([]*models.Module, error) {
	if _, err := s.repo.Path().GetByID(ctx, nil, pathID); err != nil {
		return nil, mapRepoError(err, ErrPathNotFound, "get path")
	}

	modules, err := s.repo.Module().ListByPath(ctx, nil, pathID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

func (s *learningService) UpdateModule(ctx context.Context, id uint, req *ModuleRequest) (*models.Module, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	modules := s.repo.Module()
	module, err := modules.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err, ErrModuleNotFound, "get module")
	}
	if req.PathID != module.PathID {
		if _, err := s.repo.Path().GetByID(ctx, nil, req.PathID); err != nil {
			return nil, mapRepoError(err, ErrPathNotFound, "get path")
		}
	}

	applyModule(module, req)
	if err := modules.Update(ctx, nil, module); err != nil {
		return nil, mapRepoError(err, ErrModuleNotFound, "update module")
	}

	s.logger.Info("Module updated", "module_id", id)
	return module, nil
}

func (s *learningService) DeleteModule(ctx context.Context, id uint) error {
	if err := s.repo.Module().Delete(ctx, nil, id); err != nil {
		return mapRepoError(err, ErrModuleNotFound, "delete module")
	}
	s.logger.Info("Module deleted", "module_id", id)
	return nil
}

func applyModule(module *models.Module, req *ModuleRequest) {
	module.PathID = req.PathID
	module.Name = strings.TrimSpace(req.Name)
	module.Description = req.Description
	module.VideoURL = req.VideoURL
	module.Order = req.Order
}

// ===== LECTURES =====

func (s *learningService) CreateLecture(ctx context.Context, req *LectureRequest) (*models.Lecture, error) {
	lecture := &models.Lecture{}
	if err := s.applyLecture(ctx, lecture, req); err != nil {
		return nil, err
	}

	if err := s.repo.Lecture().Create(ctx, nil, lecture); err != nil {
		return nil, fmt.Errorf("failed to create lecture: %w", err)
	}

	s.logger.Info("Lecture created", "lecture_id", lecture.ID, "module_id", lecture.ModuleID, "materials", len(lecture.Materials))
	return lecture, nil
}

func (s *learningService) GetLecture(ctx context.Context, id uint, viewer *models.User) (*models.Lecture, error) {
	lecture, err := s.repo.Lecture().GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err, ErrLectureNotFound, "get lecture")
	}
	if !models.VisibleTo(lecture.AccessLevel, viewerAccess(viewer)) {
		return nil, ErrContentMembersOnly
	}
	return lecture, nil
}

func (s *learningService) ListLectures(ctx context.Context, req *ContentListRequest, viewer *models.User) (*LectureListResponse, error) {
	lectures, total, err := s.repo.Lecture().List(ctx, nil, repositories.ContentFilters{
		ModuleID:    req.ModuleID,
		PathID:      req.PathID,
		BuddyOnly:   isBuddy(viewer),
		ListFilters: req.Filters(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lectures: %w", err)
	}
	return &LectureListResponse{Lectures: lectures, Pagination: req.Pagination(total)}, nil
}

// UpdateLecture replaces the lecture fields. New materials are appended to the existing ones.
func (s *learningService) UpdateLecture(ctx context.Context, id uint, req *LectureRequest) (*models.Lecture, error) {
	lectures := s.repo.Lecture()
	lecture, err := lectures.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err, ErrLectureNotFound, "get lecture")
	}
	if err := s.applyLecture(ctx, lecture, req); err != nil {
		return nil, err
	}

	if err := lectures.Update(ctx, nil, lecture); err != nil {
		return nil, mapRepoError(err, ErrLectureNotFound, "update lecture")
	}

	s.logger.Info("Lecture updated", "lecture_id", id)
	return lecture, nil
}

func (s *learningService) DeleteLecture(ctx context.Context, id uint) error {
	if err := s.repo.Lecture().Delete(ctx, nil, id); err != nil {
		return mapRepoError(err, ErrLectureNotFound, "delete lecture")
	}
	s.logger.Info("Lecture deleted", "lecture_id", id)
	return nil
}

func (s *learningService) applyLecture(ctx context.Context, lecture *models.Lecture, req *LectureRequest) error {
	if err := s.validator.Validate(req); err != nil {
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

	lecture.ModuleID = module.ID
	lecture.PathID = module.PathID
	lecture.Title = strings.TrimSpace(req.Title)
	lecture.Notes = req.Notes
	lecture.Slides = req.Slides
	lecture.SourceCode = req.SourceCode
	lecture.AccessLevel = access
	lecture.Order = req.Order
	for _, file := range req.Materials {
		title := file.Name
		if title == "" {
			title = file.PublicID
		}
		lecture.Materials = append(lecture.Materials, models.LectureMaterial{
			Title:    title,
			URL:      file.URL,
			PublicID: file.PublicID,
			Format:   file.Format,
		})
	}
	return nil
}
