package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgoc-itb/lms-service/internal/auth"
	"github.com/gdgoc-itb/lms-service/internal/config"
	"github.com/gdgoc-itb/lms-service/internal/events"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/validator"
)

type stubVerifier struct {
	identity *auth.Identity
	err      error
	calls    int
}

func (s *stubVerifier) Verify(ctx context.Context, raw string) (*auth.Identity, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

type authFixture struct {
	repo      *fakeRepo
	verifier  *stubVerifier
	tokens    *auth.TokenService
	publisher *events.MockEventPublisher
	service   AuthService
}

func newAuthFixture(identity *auth.Identity) *authFixture {
	logger := testLogger()
	repo := newFakeRepo()
	verifier := &stubVerifier{identity: identity}
	tokens := auth.NewTokenService(config.JWTConfig{Secret: "test-secret", Issuer: "lms-test", TTL: time.Hour})
	whitelist := auth.NewWhitelist(config.WhitelistConfig{
		Emails:  []string{"admin@gdgoc-itb.com"},
		Domains: []string{"itb.ac.id"},
	}, repo.users, logger)
	publisher := events.NewMockEventPublisher(logger)

	return &authFixture{
		repo:      repo,
		verifier:  verifier,
		tokens:    tokens,
		publisher: publisher,
		service:   NewAuthService(repo, logger, validator.New(), whitelist, tokens, verifier, publisher, nil),
	}
}

func (f *authFixture) accessOf(t *testing.T, token string) models.AccessLevel {
	t.Helper()
	claims, err := f.tokens.Verify(token)
	require.NoError(t, err)
	return claims.Access
}

func TestGoogleLogin_MissingToken(t *testing.T) {
	f := newAuthFixture(nil)

	_, err := f.service.GoogleLogin(context.Background(), &GoogleLoginRequest{IDToken: "  "})

	assert.ErrorIs(t, err, ErrIDTokenRequired)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Zero(t, f.verifier.calls)
}

func TestGoogleLogin_InvalidGoogleToken(t *testing.T) {
	f := newAuthFixture(nil)
	f.verifier.err = errors.New("bad audience")

	_, err := f.service.GoogleLogin(context.Background(), &GoogleLoginRequest{IDToken: "token"})

	assert.ErrorIs(t, err, ErrInvalidGoogleToken)
	assert.Equal(t, KindAuthentication, KindOf(err))
}

func TestGoogleLogin_NotWhitelistedWithoutBuddyRecord(t *testing.T) {
	for _, verified := range []bool{true, false} {
		f := newAuthFixture(&auth.Identity{Email: "someone@gmail.com", EmailVerified: verified, Name: "Someone"})

		_, err := f.service.GoogleLogin(context.Background(), &GoogleLoginRequest{IDToken: "token"})

		assert.ErrorIs(t, err, ErrBuddyRegistrationFirst)
		assert.Equal(t, KindAuthorization, KindOf(err))
		assert.Zero(t, f.repo.users.creates, "no user may be created")
	}
}

func TestGoogleLogin_WhitelistedButUnverifiedNewUser(t *testing.T) {
	f := newAuthFixture(&auth.Identity{Email: "13522001@std.itb.ac.id", EmailVerified: false})

	_, err := f.service.GoogleLogin(context.Background(), &GoogleLoginRequest{IDToken: "token"})

	// std.itb.ac.id is not the exact whitelisted domain
	assert.ErrorIs(t, err, ErrBuddyRegistrationFirst)

	f = newAuthFixture(&auth.Identity{Email: "lecturer@itb.ac.id", EmailVerified: false})
	_, err = f.service.GoogleLogin(context.Background(), &GoogleLoginRequest{IDToken: "token"})

	assert.ErrorIs(t, err, ErrEmailNotVerified)
	assert.Equal(t, KindAuthentication, KindOf(err))
	assert.Zero(t, f.repo.users.creates)
}

func TestGoogleLogin_CreatesMember(t *testing.T) {
	f := newAuthFixture(&auth.Identity{Email: "Lecturer@ITB.ac.id", EmailVerified: true, Name: "Lecturer"})

	result, err := f.service.GoogleLogin(context.Background(), &GoogleLoginRequest{IDToken: "token"})

	require.NoError(t, err)
	assert.Equal(t, "lecturer@itb.ac.id", result.User.Email)
	assert.Equal(t, models.AccessMember, result.User.Access)
	assert.Equal(t, models.AccessMember, f.accessOf(t, result.Token))
	assert.Equal(t, 1, f.repo.users.creates)
	assert.Len(t, f.publisher.EventsOfType(events.TypeUserRegistered), 1)

	// second login reuses the record
	again, err := f.service.GoogleLogin(context.Background(), &GoogleLoginRequest{IDToken: "token"})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, again.User.ID)
	assert.Equal(t, 1, f.repo.users.creates)
}

func TestGoogleLogin_RegisteredBuddy(t *testing.T) {
	f := newAuthFixture(&auth.Identity{Email: "buddy@gmail.com", EmailVerified: false})
	buddy := f.repo.users.seed(models.User{Name: "Buddy", Email: "buddy@gmail.com", Access: models.AccessBuddy})

	result, err := f.service.GoogleLogin(context.Background(), &GoogleLoginRequest{IDToken: "token"})

	require.NoError(t, err)
	assert.Equal(t, buddy.ID, result.User.ID)
	assert.Equal(t, models.AccessBuddy, f.accessOf(t, result.Token))
}

func TestGoogleLogin_StoredAccessWins(t *testing.T) {
	f := newAuthFixture(&auth.Identity{Email: "ops@itb.ac.id", EmailVerified: true})
	f.repo.users.seed(models.User{Name: "Ops", Email: "ops@itb.ac.id", Access: models.AccessTechnicalAdmin})

	result, err := f.service.GoogleLogin(context.Background(), &GoogleLoginRequest{IDToken: "token"})

	require.NoError(t, err)
	assert.Equal(t, models.AccessTechnicalAdmin, f.accessOf(t, result.Token))
}

func TestGoogleLogin_ConcurrentFirstLogin(t *testing.T) {
	f := newAuthFixture(&auth.Identity{Email: "new@itb.ac.id", EmailVerified: true})
	f.repo.users.racer = &models.User{ID: "racer", Name: "New", Email: "new@itb.ac.id", Access: models.AccessMember}

	result, err := f.service.GoogleLogin(context.Background(), &GoogleLoginRequest{IDToken: "token"})

	require.NoError(t, err)
	assert.Equal(t, "racer", result.User.ID)
}

func TestRegisterBuddy(t *testing.T) {
	f := newAuthFixture(nil)
	ctx := context.Background()

	result, err := f.service.RegisterBuddy(ctx, &RegisterBuddyRequest{Name: "Bud", Email: "Bud@Gmail.com"})
	require.NoError(t, err)
	assert.Equal(t, "bud@gmail.com", result.Email)

	stored, err := f.repo.users.GetByEmail(ctx, "bud@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, models.AccessBuddy, stored.Access)

	_, err = f.service.RegisterBuddy(ctx, &RegisterBuddyRequest{Name: "Bud", Email: "bud@gmail.com"})
	assert.ErrorIs(t, err, ErrBuddyAlreadyRegistered)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRegisterBuddy_Rejections(t *testing.T) {
	f := newAuthFixture(nil)
	ctx := context.Background()
	f.repo.users.seed(models.User{Name: "Member", Email: "member@gmail.com", Access: models.AccessMember})

	_, err := f.service.RegisterBuddy(ctx, &RegisterBuddyRequest{Name: "A", Email: "someone@itb.ac.id"})
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = f.service.RegisterBuddy(ctx, &RegisterBuddyRequest{Name: "A", Email: "member@gmail.com"})
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)

	_, err = f.service.RegisterBuddy(ctx, &RegisterBuddyRequest{Email: "x@gmail.com"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "name", verrs[0].Field)
}

func TestRegisterAdmin(t *testing.T) {
	f := newAuthFixture(nil)
	ctx := context.Background()
	caller := f.repo.users.seed(models.User{Name: "Root", Email: "root@itb.ac.id", Access: models.AccessTechnicalAdmin})
	member := f.repo.users.seed(models.User{Name: "Member", Email: "member@itb.ac.id", Access: models.AccessMember})

	_, err := f.service.RegisterAdmin(ctx, member, &RegisterAdminRequest{Name: "X", Email: "x@itb.ac.id", AdminType: models.AccessCurriculumAdmin})
	assert.ErrorIs(t, err, ErrAdminRequired)
	assert.Equal(t, KindAuthorization, KindOf(err))

	_, err = f.service.RegisterAdmin(ctx, caller, &RegisterAdminRequest{Name: "X", Email: "x@itb.ac.id", AdminType: models.AccessMember})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "adminType", verrs[0].Field)

	_, err = f.service.RegisterAdmin(ctx, caller, &RegisterAdminRequest{Name: "X", Email: "member@itb.ac.id", AdminType: models.AccessCurriculumAdmin})
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)

	result, err := f.service.RegisterAdmin(ctx, caller, &RegisterAdminRequest{Name: "Curator", Email: "Curator@itb.ac.id", AdminType: models.AccessCurriculumAdmin})
	require.NoError(t, err)
	assert.Equal(t, "curator@itb.ac.id", result.Admin.Email)
	assert.Equal(t, models.AccessCurriculumAdmin, f.accessOf(t, result.Token))

	registered := f.publisher.EventsOfType(events.TypeUserRegistered)
	require.Len(t, registered, 1)
	assert.Equal(t, caller.ID, registered[0].Data.(events.UserRegisteredEvent).By)
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(nil)
	ctx := context.Background()
	admin := f.repo.users.seed(models.User{Name: "Ops", Email: "ops@itb.ac.id", Access: models.AccessTechnicalAdmin})

	t.Run("no token", func(t *testing.T) {
		_, err := f.service.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := f.service.Authenticate(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrTokenFailed)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("role change applies to existing tokens", func(t *testing.T) {
		token, err := f.tokens.Issue(admin.ID, admin.Access)
		require.NoError(t, err)
		require.NoError(t, f.repo.users.UpdateAccess(ctx, admin.ID, models.AccessMember))

		user, err := f.service.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, models.AccessMember, user.Access)
	})

	t.Run("user gone", func(t *testing.T) {
		token, err := f.tokens.Issue("deleted-user", models.AccessMember)
		require.NoError(t, err)

		_, err = f.service.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUserGone)
		assert.Equal(t, KindAuthentication, KindOf(err))
	})
}

func TestRefresh(t *testing.T) {
	f := newAuthFixture(nil)
	user := &models.User{ID: "user-9", Name: "N", Email: "n@itb.ac.id", Access: models.AccessBuddy}

	result, err := f.service.Refresh(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, user.Summary(), result.User)
	assert.Equal(t, models.AccessBuddy, f.accessOf(t, result.Token))
}
