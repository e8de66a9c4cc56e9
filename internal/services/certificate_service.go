package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/gdgoc-itb/lms-service/internal/events"
	"github.com/gdgoc-itb/lms-service/internal/metrics"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
	"github.com/gdgoc-itb/lms-service/internal/validator"
)

const (
	certificatePrefix      = "GDGOC-ITB"
	certificateIDAttempts  = 5
	certificateSerialMin   = 100000
	certificateSerialRange = 900000
)

type certificateService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	metrics   *metrics.Metrics
	events    notifier
	now       func() time.Time
	newID     func(certType models.AccessLevel, issued time.Time) (string, error)
}

func NewCertificateService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher events.EventPublisher,
	m *metrics.Metrics,
	now func() time.Time,
) CertificateService {
	if now == nil {
		now = time.Now
	}
	return &certificateService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		metrics:   m,
		events:    notifier{publisher: publisher, metrics: m, logger: logger},
		now:       now,
		newID:     GenerateCertificateID,
	}
}

// GenerateCertificateID returns GDGOC-ITB-<type initial>-<6 random digits>-<year>.
func GenerateCertificateID(certType models.AccessLevel, issued time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(certificateSerialRange))
	if err != nil {
		return "", fmt.Errorf("failed to generate certificate serial: %w", err)
	}
	initial := "X"
	if certType != "" {
		initial = strings.ToUpper(string(certType)[:1])
	}
	return fmt.Sprintf("%s-%s-%d-%d", certificatePrefix, initial, n.Int64()+certificateSerialMin, issued.Year()), nil
}

func (s *certificateService) Create(ctx context.Context, req *CertificateRequest, issuer *models.User) (*models.Certificate, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.User().GetByID(ctx, req.UserID); err != nil {
		return nil, mapRepoError(err, ErrUserNotFound, "get certificate holder")
	}
	if _, err := s.repo.Path().GetByID(ctx, nil, req.PathID); err != nil {
		return nil, mapRepoError(err, ErrPathNotFound, "get path")
	}

	issueDate := s.now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	cert := &models.Certificate{
		UserID:         req.UserID,
		PathID:         req.PathID,
		Type:           req.Type,
		Name:           strings.TrimSpace(req.Name),
		IssueDate:      issueDate,
		CertificateURL: req.CertificateURL,
	}
	if issuer != nil {
		cert.IssuedBy = issuer.ID
	}

	if err := s.createWithUniqueID(ctx, cert); err != nil {
		return nil, err
	}

	s.logger.Info("Certificate issued", "certificate_id", cert.CertificateID, "user_id", cert.UserID, "path_id", cert.PathID)
	s.metrics.ObserveCertificateIssued()
	s.events.publish(ctx, events.TypeCertificateIssued, events.CertificateIssuedEvent{
		CertificateID: cert.CertificateID,
		UserID:        cert.UserID,
		PathID:        cert.PathID,
	})
	return cert, nil
}

// createWithUniqueID draws random certificate IDs until one is not taken.
func (s *certificateService) createWithUniqueID(ctx context.Context, cert *models.Certificate) error {
	for attempt := 1; attempt <= certificateIDAttempts; attempt++ {
		id, err := s.newID(cert.Type, cert.IssueDate)
		if err != nil {
			return err
		}
		cert.CertificateID = id

		err = s.repo.Certificate().Create(ctx, nil, cert)
		if err == nil {
			return nil
		}
		if !repositories.IsDuplicateError(err) {
			return fmt.Errorf("failed to create certificate: %w", err)
		}
		s.logger.Warn("Certificate ID collision", "certificate_id", id, "attempt", attempt)
	}
	return ErrCertificateIDExhausted
}

// Get returns a certificate to its holder or to an admin.
func (s *certificateService) Get(ctx context.Context, id uint, viewer *models.User) (*models.Certificate, error) {
	cert, err := s.repo.Certificate().GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err, ErrCertificateNotFound, "get certificate")
	}
	if viewer == nil || (cert.UserID != viewer.ID && !viewer.Access.IsAdmin()) {
		return nil, ErrForbidden
	}
	return cert, nil
}

func (s *certificateService) Verify(ctx context.Context, certificateID string) (*models.Certificate, error) {
	certificateID = strings.ToUpper(strings.TrimSpace(certificateID))
	if certificateID == "" {
		return nil, ErrCertificateNotFound
	}

	cert, err := s.repo.Certificate().GetByCertificateID(ctx, nil, certificateID)
	if err != nil {
		return nil, mapRepoError(err, ErrCertificateNotFound, "verify certificate")
	}
	return cert, nil
}

func (s *certificateService) ListMine(ctx context.Context, userID string, page PageRequest) (*CertificateListResponse, error) {
	return s.List(ctx, &CertificateListRequest{UserID: &userID, PageRequest: page})
}

func (s *certificateService) List(ctx context.Context, req *CertificateListRequest) (*CertificateListResponse, error) {
	certs, total, err := s.repo.Certificate().List(ctx, nil, repositories.CertificateFilters{
		UserID:      req.UserID,
		PathID:      req.PathID,
		ListFilters: req.Filters(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return &CertificateListResponse{Certificates: certs, Pagination: req.Pagination(total)}, nil
}

func (s *certificateService) Update(ctx context.Context, id uint, req *UpdateCertificateRequest) (*models.Certificate, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	store := s.repo.Certificate()
	cert, err := store.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoError(err, ErrCertificateNotFound, "get certificate")
	}

	if req.Name != nil {
		cert.Name = strings.TrimSpace(*req.Name)
	}
	if req.IssueDate != nil {
		cert.IssueDate = *req.IssueDate
	}
	if req.CertificateURL != nil {
		cert.CertificateURL = *req.CertificateURL
	}

	if err := store.Update(ctx, nil, cert); err != nil {
		return nil, mapRepoError(err, ErrCertificateNotFound, "update certificate")
	}

	s.logger.Info("Certificate updated", "certificate_id", cert.CertificateID)
	return cert, nil
}

func (s *certificateService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Certificate().Delete(ctx, nil, id); err != nil {
		return mapRepoError(err, ErrCertificateNotFound, "delete certificate")
	}
	s.logger.Info("Certificate deleted", "id", id)
	return nil
}
