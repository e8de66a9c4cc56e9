package services

import (
	"context"
	"time"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
	"github.com/gdgoc-itb/lms-service/internal/storage"
)

// ===== PAGINATION =====

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest is the page/size pair accepted by list endpoints.
type PageRequest struct {
	Page int `form:"page" json:"page"`
	Size int `form:"size" json:"size"`
}

func (p PageRequest) normalized() (page, size int) {
	page, size = p.Page, p.Size
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// Filters converts the page into repository limit/offset.
func (p PageRequest) Filters() repositories.ListFilters {
	page, size := p.normalized()
	return repositories.ListFilters{Limit: size, Offset: (page - 1) * size}
}

// Pagination builds the response envelope for total rows.
func (p PageRequest) Pagination(total int64) models.Pagination {
	page, size := p.normalized()
	return models.Pagination{Page: page, Size: size, Total: total}
}

// ===== AUTH DTOs =====

type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}

type RegisterBuddyRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type RegisterAdminRequest struct {
	Name      string             `json:"name" validate:"required,max=100"`
	Email     string             `json:"email" validate:"required,email"`
	AdminType models.AccessLevel `json:"adminType" validate:"required,admin_access"`
}

// AuthResult is a resolved user plus a freshly issued session token.
type AuthResult struct {
	User  models.UserSummary `json:"user"`
	Token string             `json:"token"`
}

type BuddyRegistration struct {
	Email string `json:"email"`
}

type AdminRegistration struct {
	Admin models.UserSummary `json:"admin"`
	Token string             `json:"token"`
}

// ===== USER DTOs =====

type ListUsersRequest struct {
	Query  string             `form:"q"`
	Access models.AccessLevel `form:"access" validate:"omitempty,access_level"`
	PageRequest
}

type UpdateAccessRequest struct {
	Access models.AccessLevel `json:"access" validate:"required,access_level"`
}

type UserListResponse struct {
	Users      []*models.User    `json:"users"`
	Pagination models.Pagination `json:"pagination"`
}

// ===== LEARNING DTOs =====

type PathRequest struct {
	Name        string `json:"pathName" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

type ModuleRequest struct {
	PathID      uint   `json:"pathId" validate:"required"`
	Name        string `json:"moduleName" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	VideoURL    string `json:"video" validate:"omitempty,url,max=500"`
	Order       int    `json:"order" validate:"gte=0"`
}

type LectureRequest struct {
	ModuleID    uint               `json:"moduleId" form:"moduleId" validate:"required"`
	Title       string             `json:"title" form:"title" validate:"required,max=200"`
	Notes       string             `json:"notes" form:"notes"`
	Slides      string             `json:"slides" form:"slides" validate:"omitempty,url,max=500"`
	SourceCode  string             `json:"sourceCode" form:"sourceCode" validate:"omitempty,url,max=500"`
	AccessLevel models.AccessLevel `json:"accessLevel" form:"accessLevel" validate:"omitempty,content_access"`
	Order       int                `json:"order" form:"order" validate:"gte=0"`

	// Materials are files already stored by the upload middleware.
	Materials []*storage.UploadedFile `json:"-" form:"-"`
}

type ContentListRequest struct {
	ModuleID *uint `form:"moduleId"`
	PathID   *uint `form:"pathId"`
	PageRequest
}

type PathListResponse struct {
	Paths      []*models.Path    `json:"paths"`
	Pagination models.Pagination `json:"pagination"`
}

type LectureListResponse struct {
	Lectures   []*models.Lecture `json:"lectures"`
	Pagination models.Pagination `json:"pagination"`
}

// ===== PROBLEM SET DTOs =====

type ProblemSetRequest struct {
	ModuleID        uint                  `json:"moduleId" form:"moduleId" validate:"required"`
	Title           string                `json:"problemSetTitle" form:"problemSetTitle" validate:"required,max=200"`
	Description     string                `json:"description" form:"description"`
	VideoURL        string                `json:"video" form:"video" validate:"omitempty,url,max=500"`
	SubmissionType  models.SubmissionType `json:"submissionType" form:"submissionType" validate:"required,submission_type"`
	AccessLevel     models.AccessLevel    `json:"accessLevel" form:"accessLevel" validate:"omitempty,content_access"`
	Deadline        *time.Time            `json:"deadline" form:"deadline"`
	MaxGrade        *int                  `json:"maxGrade" form:"maxGrade"`
	PassingGrade    *int                  `json:"passingGrade" form:"passingGrade"`
	IsManualGrading bool                  `json:"isManualGrading" form:"isManualGrading"`
	Order           int                   `json:"order" form:"order" validate:"gte=0"`

	// Video is an explainer already stored by the upload middleware; it wins over VideoURL.
	Video *storage.UploadedFile `json:"-" form:"-"`
}

type ProblemSetListResponse struct {
	ProblemSets []*models.ProblemSet `json:"problemSets"`
	Pagination  models.Pagination    `json:"pagination"`
}

// SubmitRequest carries either a link or a stored upload, depending on the problem set type.
type SubmitRequest struct {
	SubmissionLink string                `json:"submissionLink" form:"submissionLink"`
	File           *storage.UploadedFile `json:"-" form:"-"`
}

type SubmitResult struct {
	Submission  *models.ProblemSetSubmission `json:"submission"`
	FirstSubmit bool                         `json:"firstSubmit"`
	// ReplacedURL is the answer this submission overwrote, when it differs.
	ReplacedURL string `json:"-"`
}

type GradeRequest struct {
	Grade *int `json:"grade" validate:"required"`
}

type SubmissionListRequest struct {
	Graded *bool `form:"graded"`
	PageRequest
}

type SubmissionListResponse struct {
	Submissions []*models.ProblemSetSubmission `json:"submissions"`
	Pagination  models.Pagination              `json:"pagination"`
}

// ===== EVENT DTOs =====

type EventTimeRequest struct {
	Start string `json:"start" validate:"required,clock"`
	End   string `json:"end" validate:"required,clock"`
}

type EventRequest struct {
	Title       string             `json:"title" validate:"required,max=200"`
	Subtitle    string             `json:"subtitle" validate:"max=200"`
	Category    string             `json:"category" validate:"max=50"`
	Description string             `json:"description"`
	Location    string             `json:"location" validate:"max=255"`
	Date        time.Time          `json:"date" validate:"required"`
	Time        EventTimeRequest   `json:"time"`
	ImageURL    string             `json:"imageUrl" validate:"omitempty,url,max=500"`
	AccessLevel models.EventAccess `json:"accessLevel" validate:"omitempty,event_access"`
	Capacity    *int               `json:"capacity" validate:"omitempty,gte=1"`

	// Image is a cover already stored by the upload middleware; it wins over ImageURL.
	Image *storage.UploadedFile `json:"-"`
}

type EventListRequest struct {
	UpcomingOnly bool `form:"upcoming"`
	PageRequest
}

type EventListResponse struct {
	Events     []*models.Event   `json:"events"`
	Pagination models.Pagination `json:"pagination"`
}

// ===== CERTIFICATE DTOs =====

type CertificateRequest struct {
	UserID         string             `json:"userId" validate:"required"`
	PathID         uint               `json:"pathId" validate:"required"`
	Type           models.AccessLevel `json:"certificateType" validate:"required,oneof=Member Buddy"`
	Name           string             `json:"name" validate:"required,max=200"`
	IssueDate      *time.Time         `json:"issueDate"`
	CertificateURL string             `json:"certificateUrl" validate:"omitempty,url,max=500"`
}

type UpdateCertificateRequest struct {
	Name           *string    `json:"name" validate:"omitempty,min=1,max=200"`
	IssueDate      *time.Time `json:"issueDate"`
	CertificateURL *string    `json:"certificateUrl" validate:"omitempty,url,max=500"`
}

type CertificateListRequest struct {
	UserID *string `form:"userId"`
	PathID *uint   `form:"pathId"`
	PageRequest
}

type CertificateListResponse struct {
	Certificates []*models.Certificate `json:"certificates"`
	Pagination   models.Pagination     `json:"pagination"`
}

// ===== EXPORT DTOs =====

const SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportFile is a generated workbook ready to stream.
type ExportFile struct {
	Filename string
	Data     []byte
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	GoogleLogin(ctx context.Context, req *GoogleLoginRequest) (*AuthResult, error)
	RegisterBuddy(ctx context.Context, req *RegisterBuddyRequest) (*BuddyRegistration, error)
	// Refresh re-issues a token for an already resolved user without touching the store.
	Refresh(ctx context.Context, user *models.User) (*AuthResult, error)
	RegisterAdmin(ctx context.Context, caller *models.User, req *RegisterAdminRequest) (*AdminRegistration, error)
	// Authenticate verifies a session token and re-reads its user from the store.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type UserService interface {
	List(ctx context.Context, req *ListUsersRequest) (*UserListResponse, error)
	UpdateAccess(ctx context.Context, actor *models.User, userID string, req *UpdateAccessRequest) (*models.User, error)
}

type LearningService interface {
	CreatePath(ctx context.Context, req *PathRequest) (*models.Path, error)
	GetPath(ctx context.Context, id uint) (*models.Path, error)
	ListPaths(ctx context.Context, page PageRequest) (*PathListResponse, error)
	UpdatePath(ctx context.Context, id uint, req *PathRequest) (*models.Path, error)
	DeletePath(ctx context.Context, id uint) error

	CreateModule(ctx context.Context, req *ModuleRequest) (*models.Module, error)
	GetModule(ctx context.Context, id uint) (*models.Module, error)
	ListModules(ctx context.Context, pathID uint) ([]*models.Module, error)
	UpdateModule(ctx context.Context, id uint, req *ModuleRequest) (*models.Module, error)
	DeleteModule(ctx context.Context, id uint) error

	CreateLecture(ctx context.Context, req *LectureRequest) (*models.Lecture, error)
	GetLecture(ctx context.Context, id uint, viewer *models.User) (*models.Lecture, error)
	ListLectures(ctx context.Context, req *ContentListRequest, viewer *models.User) (*LectureListResponse, error)
	UpdateLecture(ctx context.Context, id uint, req *LectureRequest) (*models.Lecture, error)
	DeleteLecture(ctx context.Context, id uint) error
}

type ProblemSetService interface {
	Create(ctx context.Context, req *ProblemSetRequest) (*models.ProblemSet, error)
	Get(ctx context.Context, id uint, viewer *models.User) (*models.ProblemSet, error)
	List(ctx context.Context, req *ContentListRequest, viewer *models.User) (*ProblemSetListResponse, error)
	Update(ctx context.Context, id uint, req *ProblemSetRequest) (*models.ProblemSet, error)
	Delete(ctx context.Context, id uint) error

	Grade(ctx context.Context, problemSetID uint, userID string, req *GradeRequest, grader *models.User) (*models.GradeResult, error)
	ListSubmissions(ctx context.Context, problemSetID uint, req *SubmissionListRequest) (*SubmissionListResponse, error)
	MySubmission(ctx context.Context, problemSetID uint, userID string) (*models.ProblemSetSubmission, error)
}

type SubmissionService interface {
	Submit(ctx context.Context, problemSetID uint, user *models.User, req *SubmitRequest) (*SubmitResult, error)
}

type ProgressService interface {
	RecordFirstSubmission(ctx context.Context, userID string, pathID uint) error
	MyProgress(ctx context.Context, userID string) ([]*models.PathProgress, error)
}

type EventService interface {
	Create(ctx context.Context, kind models.EventKind, req *EventRequest) (*models.Event, error)
	Get(ctx context.Context, kind models.EventKind, id uint, viewer *models.User) (*models.Event, error)
	List(ctx context.Context, kind models.EventKind, req *EventListRequest, viewer *models.User) (*EventListResponse, error)
	Update(ctx context.Context, kind models.EventKind, id uint, req *EventRequest) (*models.Event, error)
	Delete(ctx context.Context, kind models.EventKind, id uint) error

	RSVP(ctx context.Context, kind models.EventKind, id uint, user *models.User) (*models.EventAttendee, error)
	CancelRSVP(ctx context.Context, kind models.EventKind, id uint, user *models.User) error
	MarkAttendance(ctx context.Context, kind models.EventKind, id uint, userID string) error
	ListAttendees(ctx context.Context, kind models.EventKind, id uint) ([]*models.EventAttendee, error)
}

type CertificateService interface {
	Create(ctx context.Context, req *CertificateRequest, issuer *models.User) (*models.Certificate, error)
	Get(ctx context.Context, id uint, viewer *models.User) (*models.Certificate, error)
	Verify(ctx context.Context, certificateID string) (*models.Certificate, error)
	ListMine(ctx context.Context, userID string, page PageRequest) (*CertificateListResponse, error)
	List(ctx context.Context, req *CertificateListRequest) (*CertificateListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateCertificateRequest) (*models.Certificate, error)
	Delete(ctx context.Context, id uint) error
}

type DashboardService interface {
	GetStats(ctx context.Context) (*models.DashboardStats, error)
}

type ExportService interface {
	ExportSubmissions(ctx context.Context, problemSetID uint) (*ExportFile, error)
	ExportAttendance(ctx context.Context, kind models.EventKind, eventID uint) (*ExportFile, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Learning() LearningService
	ProblemSet() ProblemSetService
	Submission() SubmissionService
	Progress() ProgressService
	Event() EventService
	Certificate() CertificateService
	Dashboard() DashboardService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
