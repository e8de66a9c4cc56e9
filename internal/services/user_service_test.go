package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/validator"
)

func TestUserService_List(t *testing.T) {
	repo := newFakeRepo()
	service := NewUserService(repo, testLogger(), validator.New())
	repo.users.seed(models.User{Name: "A", Email: "a@itb.ac.id", Access: models.AccessMember})
	repo.users.seed(models.User{Name: "B", Email: "b@gmail.com", Access: models.AccessBuddy})
	repo.users.seed(models.User{Name: "C", Email: "c@gmail.com", Access: models.AccessBuddy})

	resp, err := service.List(context.Background(), &ListUsersRequest{Access: models.AccessBuddy})
	require.NoError(t, err)
	assert.Len(t, resp.Users, 2)
	assert.Equal(t, int64(2), resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.Page)

	_, err = service.List(context.Background(), &ListUsersRequest{Access: "Guest"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestUserService_UpdateAccess(t *testing.T) {
	repo := newFakeRepo()
	service := NewUserService(repo, testLogger(), validator.New())
	actor := &models.User{ID: "ops", Access: models.AccessTechnicalAdmin}
	target := repo.users.seed(models.User{Name: "T", Email: "t@itb.ac.id", Access: models.AccessMember})

	updated, err := service.UpdateAccess(context.Background(), actor, target.ID, &UpdateAccessRequest{Access: models.AccessCurriculumAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.AccessCurriculumAdmin, updated.Access)

	_, err = service.UpdateAccess(context.Background(), actor, "missing", &UpdateAccessRequest{Access: models.AccessMember})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = service.UpdateAccess(context.Background(), actor, target.ID, &UpdateAccessRequest{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "access", verrs[0].Field)
}
