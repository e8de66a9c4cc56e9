package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/services"
	"github.com/gdgoc-itb/lms-service/internal/storage"
	"github.com/gdgoc-itb/lms-service/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// stubAuthService resolves tokens from an in-memory table and records what it saw.
type stubAuthService struct {
	mu    sync.Mutex
	users map[string]*models.User
	seen  []string

	loginResult *services.AuthResult
	loginErr    error
}

func newStubAuthService() *stubAuthService {
	return &stubAuthService{users: map[string]*models.User{}}
}

func (s *stubAuthService) GoogleLogin(ctx context.Context, req *services.GoogleLoginRequest) (*services.AuthResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginResult, nil
}

func (s *stubAuthService) RegisterBuddy(ctx context.Context, req *services.RegisterBuddyRequest) (*services.BuddyRegistration, error) {
	return &services.BuddyRegistration{Email: req.Email}, nil
}

func (s *stubAuthService) Refresh(ctx context.Context, user *models.User) (*services.AuthResult, error) {
	return &services.AuthResult{User: user.Summary(), Token: "refreshed-" + user.ID}, nil
}

func (s *stubAuthService) RegisterAdmin(ctx context.Context, caller *models.User, req *services.RegisterAdminRequest) (*services.AdminRegistration, error) {
	return &services.AdminRegistration{
		Admin: models.UserSummary{ID: "new-admin", Name: req.Name, Email: req.Email, Access: req.AdminType},
		Token: "admin-token",
	}, nil
}

func (s *stubAuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, token)

	if token == "" {
		return nil, services.ErrNoToken
	}
	user, ok := s.users[token]
	if !ok {
		return nil, services.ErrTokenFailed
	}
	// Copy so callers observe the stored access at the time of the request.
	resolved := *user
	return &resolved, nil
}

func (s *stubAuthService) seenTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen...)
}

const fakeStoreBaseURL = "https://cdn.test/"

// fakeFileStore keeps uploads in memory. failOn maps a filename to the error its upload returns.
type fakeFileStore struct {
	mu       sync.Mutex
	uploaded []*storage.UploadedFile
	deleted  []string
	failOn   map[string]error
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{failOn: map[string]error{}}
}

func (f *fakeFileStore) Upload(ctx context.Context, folder, filename string, content io.Reader, allowed ...storage.FileKind) (*storage.UploadedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failOn[filename]; err != nil {
		return nil, err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}

	kind := storage.KindDocument
	if len(allowed) > 0 {
		kind = allowed[0]
	}
	file := &storage.UploadedFile{
		Name:     filename,
		URL:      fakeStoreBaseURL + folder + "/" + filename,
		PublicID: folder + "/" + filename,
		Kind:     kind,
		Size:     int64(len(data)),
	}
	f.uploaded = append(f.uploaded, file)
	return file, nil
}

func (f *fakeFileStore) Delete(ctx context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

func (f *fakeFileStore) PublicIDFor(url string) (string, bool) {
	id, ok := strings.CutPrefix(url, fakeStoreBaseURL)
	return id, ok && id != ""
}

type formFile struct {
	field, name, content string
}

// multipartRequest builds a multipart POST with the given files and plain fields.
func multipartRequest(t *testing.T, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
