package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgoc-itb/lms-service/internal/events"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/storage"
	"github.com/gdgoc-itb/lms-service/internal/validator"
)

func intPtr(v int) *int {
	return &v
}

func newProblemSetFixture() (*fakeRepo, *events.MockEventPublisher, ProblemSetService) {
	logger := testLogger()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(logger)
	clock := func() time.Time { return submitNow }
	return repo, publisher, NewProblemSetService(repo, logger, validator.New(), publisher, nil, clock)
}

func TestProblemSetCreate_PathComesFromModule(t *testing.T) {
	repo, _, service := newProblemSetFixture()
	module := &models.Module{PathID: 4, Name: "Go basics"}
	require.NoError(t, repo.modules.Create(context.Background(), nil, module))

	ps, err := service.Create(context.Background(), &ProblemSetRequest{
		ModuleID:       module.ID,
		Title:          "  Build a CLI  ",
		SubmissionType: models.SubmissionLink,
		VideoURL:       "https://youtu.be/old",
		Video:          &storage.UploadedFile{URL: "https://cdn.example.com/explainer.mp4", Kind: storage.KindVideo},
	})

	require.NoError(t, err)
	assert.Equal(t, uint(4), ps.PathID)
	assert.Equal(t, "Build a CLI", ps.Title)
	assert.Equal(t, models.DefaultMaxGrade, ps.MaxGrade)
	assert.Equal(t, models.DefaultPassingGrade, ps.PassingGrade)
	assert.Equal(t, models.AccessMember, ps.AccessLevel)
	assert.Equal(t, "https://cdn.example.com/explainer.mp4", ps.VideoURL)
}

func TestProblemSetCreate_Rejections(t *testing.T) {
	repo, _, service := newProblemSetFixture()
	module := &models.Module{PathID: 1, Name: "M"}
	require.NoError(t, repo.modules.Create(context.Background(), nil, module))

	tests := []struct {
		name      string
		req       *ProblemSetRequest
		wantField string
		wantErr   error
	}{
		{
			name:      "unknown submission type",
			req:       &ProblemSetRequest{ModuleID: module.ID, Title: "T", SubmissionType: "Essay"},
			wantField: "submissionType",
		},
		{
			name:      "passing grade above max",
			req:       &ProblemSetRequest{ModuleID: module.ID, Title: "T", SubmissionType: models.SubmissionFile, MaxGrade: intPtr(50), PassingGrade: intPtr(60)},
			wantField: "passingGrade",
		},
		{
			name:      "admin level content",
			req:       &ProblemSetRequest{ModuleID: module.ID, Title: "T", SubmissionType: models.SubmissionFile, AccessLevel: models.AccessTechnicalAdmin},
			wantField: "accessLevel",
		},
		{
			name:    "missing module",
			req:     &ProblemSetRequest{ModuleID: 99, Title: "T", SubmissionType: models.SubmissionFile},
			wantErr: ErrModuleNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), tt.req)
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.wantField, verrs[0].Field)
		})
	}
}

func TestProblemSetGrade(t *testing.T) {
	repo, publisher, service := newProblemSetFixture()
	ctx := context.Background()
	grader := &models.User{ID: "grader", Access: models.AccessCurriculumAdmin}
	ps := repo.problemSets.seed(models.ProblemSet{PathID: 1, SubmissionType: models.SubmissionFile, IsManualGrading: true, MaxGrade: 80, PassingGrade: 50})
	_, err := repo.submissions.Upsert(ctx, nil, submissionUpsert("u1", ps.ID))
	require.NoError(t, err)

	t.Run("above max", func(t *testing.T) {
		_, err := service.Grade(ctx, ps.ID, "u1", &GradeRequest{Grade: intPtr(81)}, grader)
		assert.ErrorIs(t, err, ErrInvalidGrade)
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "grade", verrs[0].Field)
	})

	t.Run("negative", func(t *testing.T) {
		_, err := service.Grade(ctx, ps.ID, "u1", &GradeRequest{Grade: intPtr(-1)}, grader)
		assert.ErrorIs(t, err, ErrInvalidGrade)
	})

	t.Run("missing grade", func(t *testing.T) {
		_, err := service.Grade(ctx, ps.ID, "u1", &GradeRequest{}, grader)
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("below passing", func(t *testing.T) {
		result, err := service.Grade(ctx, ps.ID, "u1", &GradeRequest{Grade: intPtr(49)}, grader)
		require.NoError(t, err)
		assert.False(t, result.Passed)
	})

	t.Run("zero is a valid grade", func(t *testing.T) {
		result, err := service.Grade(ctx, ps.ID, "u1", &GradeRequest{Grade: intPtr(0)}, grader)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Submission.Grade)
		assert.NotNil(t, result.Submission.GradedAt)
	})

	t.Run("at passing", func(t *testing.T) {
		result, err := service.Grade(ctx, ps.ID, "u1", &GradeRequest{Grade: intPtr(50)}, grader)
		require.NoError(t, err)
		assert.True(t, result.Passed)
		assert.Equal(t, 80, result.MaxGrade)
		require.NotNil(t, result.Submission.GradedBy)
		assert.Equal(t, "grader", *result.Submission.GradedBy)
	})

	t.Run("no submission", func(t *testing.T) {
		_, err := service.Grade(ctx, ps.ID, "nobody", &GradeRequest{Grade: intPtr(70)}, grader)
		assert.ErrorIs(t, err, ErrSubmissionNotFound)
	})

	graded := publisher.EventsOfType(events.TypeProblemSetGraded)
	assert.Len(t, graded, 3)
}

func TestProblemSetGrade_ReadsStoredThresholds(t *testing.T) {
	repo, _, service := newProblemSetFixture()
	ctx := context.Background()
	grader := &models.User{ID: "grader", Access: models.AccessCurriculumAdmin}
	ps := repo.problemSets.seed(models.ProblemSet{PathID: 1, SubmissionType: models.SubmissionFile, MaxGrade: 80, PassingGrade: 50})
	stale := *ps
	stale.MaxGrade = 100
	repo.problemSets.cached[ps.ID] = &stale
	_, err := repo.submissions.Upsert(ctx, nil, submissionUpsert("u1", ps.ID))
	require.NoError(t, err)

	_, err = service.Grade(ctx, ps.ID, "u1", &GradeRequest{Grade: intPtr(90)}, grader)

	assert.ErrorIs(t, err, ErrInvalidGrade)
}

func TestProblemSetListSubmissions(t *testing.T) {
	repo, _, service := newProblemSetFixture()
	ctx := context.Background()
	ps := repo.problemSets.seed(models.ProblemSet{PathID: 1, SubmissionType: models.SubmissionLink})
	for _, user := range []string{"a", "b", "c"} {
		_, err := repo.submissions.Upsert(ctx, nil, submissionUpsert(user, ps.ID))
		require.NoError(t, err)
	}
	require.NoError(t, repo.submissions.UpdateGrade(ctx, nil, "b", ps.ID, 90, "grader", submitNow))

	graded := false
	resp, err := service.ListSubmissions(ctx, ps.ID, &SubmissionListRequest{Graded: &graded, PageRequest: PageRequest{Page: 1, Size: 1}})

	require.NoError(t, err)
	assert.Len(t, resp.Submissions, 1)
	assert.Equal(t, int64(2), resp.Pagination.Total)

	_, err = service.ListSubmissions(ctx, 404, &SubmissionListRequest{})
	assert.ErrorIs(t, err, ErrProblemSetNotFound)

	_, err = service.MySubmission(ctx, ps.ID, "zzz")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestProblemSetGet_BuddyVisibility(t *testing.T) {
	repo, _, service := newProblemSetFixture()
	ps := repo.problemSets.seed(models.ProblemSet{PathID: 1, SubmissionType: models.SubmissionLink})

	_, err := service.Get(context.Background(), ps.ID, buddyUser("b"))
	assert.ErrorIs(t, err, ErrContentMembersOnly)

	got, err := service.Get(context.Background(), ps.ID, memberUser("m"))
	require.NoError(t, err)
	assert.Equal(t, ps.ID, got.ID)

	resp, err := service.List(context.Background(), &ContentListRequest{}, buddyUser("b"))
	require.NoError(t, err)
	assert.Empty(t, resp.ProblemSets)
}
