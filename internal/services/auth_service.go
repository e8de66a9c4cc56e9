package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gdgoc-itb/lms-service/internal/auth"
	"github.com/gdgoc-itb/lms-service/internal/events"
	"github.com/gdgoc-itb/lms-service/internal/metrics"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
	"github.com/gdgoc-itb/lms-service/internal/validator"
)

// WhitelistChecker resolves whether an email is a pre-approved Member.
type WhitelistChecker interface {
	IsWhitelisted(ctx context.Context, email string) bool
}

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	whitelist WhitelistChecker
	tokens    *auth.TokenService
	verifier  auth.IdentityVerifier
	metrics   *metrics.Metrics
	events    notifier
}

func NewAuthService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	whitelist WhitelistChecker,
	tokens *auth.TokenService,
	verifier auth.IdentityVerifier,
	publisher events.EventPublisher,
	m *metrics.Metrics,
) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		whitelist: whitelist,
		tokens:    tokens,
		verifier:  verifier,
		metrics:   m,
		events:    notifier{publisher: publisher, metrics: m, logger: logger},
	}
}

func (s *authService) GoogleLogin(ctx context.Context, req *GoogleLoginRequest) (*AuthResult, error) {
	if req == nil || strings.TrimSpace(req.IDToken) == "" {
		s.metrics.ObserveAuth("google", "missing_token")
		return nil, ErrIDTokenRequired
	}

	identity, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		s.logger.Warn("Google token verification failed", "error", err)
		s.metrics.ObserveAuth("google", "invalid_token")
		return nil, withCause(ErrInvalidGoogleToken, err)
	}

	email := models.NormalizeEmail(identity.Email)
	if email == "" {
		s.metrics.ObserveAuth("google", "invalid_token")
		return nil, ErrInvalidGoogleToken
	}

	if !s.whitelist.IsWhitelisted(ctx, email) {
		registered, err := s.repo.User().ExistsByEmailAndAccess(ctx, email, models.AccessBuddy)
		if err != nil {
			return nil, fmt.Errorf("failed to check buddy registration: %w", err)
		}
		if !registered {
			s.logger.Info("Login rejected, email not whitelisted", "email", email)
			s.metrics.ObserveAuth("google", "not_whitelisted")
			return nil, ErrBuddyRegistrationFirst
		}
	}

	user, err := s.findOrCreateMember(ctx, identity, email)
	if err != nil {
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID, "access", user.Access)
	s.metrics.ObserveAuth("google", "success")
	return result, nil
}

// findOrCreateMember returns the stored user for email. Whatever access the stored
// record holds wins; only a brand new user is created, and always as a Member.
func (s *authService) findOrCreateMember(ctx context.Context, identity *auth.Identity, email string) (*models.User, error) {
	users := s.repo.User()

	user, err := users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !identity.EmailVerified {
		s.metrics.ObserveAuth("google", "email_unverified")
		return nil, ErrEmailNotVerified
	}

	user = &models.User{
		Name:   displayName(identity.Name, email),
		Email:  email,
		Access: models.AccessMember,
	}
	if err := users.Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			// A concurrent first login created the row.
			existing, getErr := users.GetByEmail(ctx, email)
			if getErr != nil {
				return nil, fmt.Errorf("failed to get user after duplicate create: %w", getErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("Member created from Google login", "user_id", user.ID, "email", email)
	s.events.publish(ctx, events.TypeUserRegistered, events.UserRegisteredEvent{
		UserID: user.ID,
		Email:  user.Email,
		Access: user.Access,
	})
	return user, nil
}

func (s *authService) RegisterBuddy(ctx context.Context, req *RegisterBuddyRequest) (*BuddyRegistration, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	email := models.NormalizeEmail(req.Email)
	if s.whitelist.IsWhitelisted(ctx, email) {
		return nil, ErrAlreadyMember
	}

	users := s.repo.User()
	exists, err := users.ExistsByEmailAndAccess(ctx, email, models.AccessBuddy)
	if err != nil {
		return nil, fmt.Errorf("failed to check buddy registration: %w", err)
	}
	if exists {
		return nil, ErrBuddyAlreadyRegistered
	}

	buddy := &models.User{
		Name:   strings.TrimSpace(req.Name),
		Email:  email,
		Access: models.AccessBuddy,
	}
	if err := users.Create(ctx, buddy); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create buddy: %w", err)
	}

	s.logger.Info("Buddy registered", "user_id", buddy.ID, "email", email)
	s.metrics.ObserveAuth("register_buddy", "success")
	s.events.publish(ctx, events.TypeUserRegistered, events.UserRegisteredEvent{
		UserID: buddy.ID,
		Email:  buddy.Email,
		Access: buddy.Access,
	})

	return &BuddyRegistration{Email: buddy.Email}, nil
}

func (s *authService) Refresh(ctx context.Context, user *models.User) (*AuthResult, error) {
	if user == nil {
		return nil, ErrUserGone
	}
	return s.issue(user)
}

func (s *authService) RegisterAdmin(ctx context.Context, caller *models.User, req *RegisterAdminRequest) (*AdminRegistration, error) {
	if caller == nil || !auth.Allows(caller.Access, auth.OpRegisterAdmin) {
		return nil, ErrAdminRequired
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	admin := &models.User{
		Name:   strings.TrimSpace(req.Name),
		Email:  models.NormalizeEmail(req.Email),
		Access: req.AdminType,
	}
	if err := s.repo.User().Create(ctx, admin); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	token, err := s.tokens.Issue(admin.ID, admin.Access)
	if err != nil {
		return nil, fmt.Errorf("failed to issue admin token: %w", err)
	}

	s.logger.Info("Admin registered", "user_id", admin.ID, "access", admin.Access, "by", caller.ID)
	s.events.publish(ctx, events.TypeUserRegistered, events.UserRegisteredEvent{
		UserID: admin.ID,
		Email:  admin.Email,
		Access: admin.Access,
		By:     caller.ID,
	})

	return &AdminRegistration{Admin: admin.Summary(), Token: token}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, withCause(ErrTokenFailed, err)
	}

	user, err := s.repo.User().GetByID(ctx, claims.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("failed to resolve token user: %w", err)
	}
	return user, nil
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Access)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{User: user.Summary(), Token: token}, nil
}

func displayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
