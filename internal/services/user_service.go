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

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *userService) List(ctx context.Context, req *ListUsersRequest) (*UserListResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	page := req.Filters()
	filters := repositories.UserFilters{
		Query:  strings.TrimSpace(req.Query),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if req.Access != "" {
		access := req.Access
		filters.Access = &access
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResponse{
		Users:      users,
		Pagination: req.Pagination(total),
	}, nil
}

// UpdateAccess changes a user's role. The access gate re-reads the user on every
// request, so the change applies to existing sessions immediately.
func (s *userService) UpdateAccess(ctx context.Context, actor *models.User, userID string, req *UpdateAccessRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	users := s.repo.User()
	if err := users.UpdateAccess(ctx, userID, req.Access); err != nil {
		return nil, mapRepoError(err, ErrUserNotFound, "update user access")
	}

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err, ErrUserNotFound, "get user")
	}

	s.logger.Info("User access updated", "user_id", userID, "access", req.Access, "by", actor.ID)
	return user, nil
}
