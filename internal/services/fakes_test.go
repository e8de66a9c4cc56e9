package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepo is an in-memory repositories.Repository.
type fakeRepo struct {
	txMu sync.Mutex

	users        *fakeUserRepo
	paths        *fakePathRepo
	modules      *fakeModuleRepo
	lectures     *fakeLectureRepo
	problemSets  *fakeProblemSetRepo
	submissions  *fakeSubmissionRepo
	progress     *fakeProgressRepo
	events       *fakeEventRepo
	certificates *fakeCertificateRepo
	dashboard    *fakeDashboardRepo

	pingErr error
	pings   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:        &fakeUserRepo{byID: map[string]*models.User{}},
		paths:        &fakePathRepo{byID: map[uint]*models.Path{}},
		modules:      &fakeModuleRepo{byID: map[uint]*models.Module{}},
		lectures:     &fakeLectureRepo{byID: map[uint]*models.Lecture{}},
		problemSets:  &fakeProblemSetRepo{byID: map[uint]*models.ProblemSet{}, cached: map[uint]*models.ProblemSet{}},
		submissions:  &fakeSubmissionRepo{rows: map[submissionKey]*models.ProblemSetSubmission{}},
		progress:     &fakeProgressRepo{counts: map[progressKey]int{}},
		events:       &fakeEventRepo{byID: map[uint]*models.Event{}, attendees: map[uint]map[string]*models.EventAttendee{}},
		certificates: &fakeCertificateRepo{byID: map[uint]*models.Certificate{}},
		dashboard:    &fakeDashboardRepo{},
	}
}

func (r *fakeRepo) User() repositories.UserRepository               { return r.users }
func (r *fakeRepo) Path() repositories.PathRepository               { return r.paths }
func (r *fakeRepo) Module() repositories.ModuleRepository           { return r.modules }
func (r *fakeRepo) Lecture() repositories.LectureRepository         { return r.lectures }
func (r *fakeRepo) ProblemSet() repositories.ProblemSetRepository   { return r.problemSets }
func (r *fakeRepo) Submission() repositories.SubmissionRepository   { return r.submissions }
func (r *fakeRepo) Progress() repositories.ProgressRepository       { return r.progress }
func (r *fakeRepo) Event() repositories.EventRepository             { return r.events }
func (r *fakeRepo) Certificate() repositories.CertificateRepository { return r.certificates }
func (r *fakeRepo) Dashboard() repositories.DashboardRepository     { return r.dashboard }

// WithTransaction serializes transactions, standing in for row locks.
func (r *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(r)
}

func (r *fakeRepo) Ping(ctx context.Context) error {
	r.pings++
	return r.pingErr
}

func (r *fakeRepo) Close() error { return nil }

// ===== USERS =====

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	nextID  int
	creates int

	existsErr error
	getErr    error
	// racer is stored and reported as a duplicate on the next Create.
	racer *models.User
}

func (f *fakeUserRepo) seed(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		f.nextID++
		u.ID = fmt.Sprintf("user-%d", f.nextID)
	}
	u.Email = models.NormalizeEmail(u.Email)
	f.byID[u.ID] = &u
	cp := u
	return &cp
}

func (f *fakeUserRepo) findByEmail(email string) *models.User {
	email = models.NormalizeEmail(email)
	for _, u := range f.byID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.findByEmail(email)
	if u == nil {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmailAndAccess(ctx context.Context, email string, access models.AccessLevel) (*models.User, error) {
	u, err := f.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u.Access != access {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) ExistsByEmailAndAccess(ctx context.Context, email string, levels ...models.AccessLevel) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	u := f.findByEmail(email)
	if u == nil {
		return false, nil
	}
	for _, level := range levels {
		if u.Access == level {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.racer != nil {
		racer := *f.racer
		f.byID[racer.ID] = &racer
		f.racer = nil
		return repositories.ErrDuplicate
	}
	if f.findByEmail(user.Email) != nil {
		return repositories.ErrDuplicate
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.Email = models.NormalizeEmail(user.Email)
	cp := *user
	f.byID[user.ID] = &cp
	f.creates++
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdateAccess(ctx context.Context, id string, access models.AccessLevel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Access = access
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, u := range f.byID {
		if filters.Access != nil && u.Access != *filters.Access {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ===== LEARNING =====

type fakePathRepo struct {
	byID   map[uint]*models.Path
	nextID uint
}

func (f *fakePathRepo) Create(ctx context.Context, tx *gorm.DB, path *models.Path) error {
	f.nextID++
	path.ID = f.nextID
	cp := *path
	f.byID[path.ID] = &cp
	return nil
}

func (f *fakePathRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Path, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePathRepo) GetByIDWithModules(ctx context.Context, tx *gorm.DB, id uint) (*models.Path, error) {
	return f.GetByID(ctx, tx, id)
}

func (f *fakePathRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ListFilters) ([]*models.Path, int64, error) {
	var out []*models.Path
	for _, p := range f.byID {
		cp := *p
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakePathRepo) Update(ctx context.Context, tx *gorm.DB, path *models.Path) error {
	if _, ok := f.byID[path.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *path
	f.byID[path.ID] = &cp
	return nil
}

func (f *fakePathRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeModuleRepo struct {
	byID   map[uint]*models.Module
	nextID uint
}

func (f *fakeModuleRepo) Create(ctx context.Context, tx *gorm.DB, module *models.Module) error {
	f.nextID++
	module.ID = f.nextID
	cp := *module
	f.byID[module.ID] = &cp
	return nil
}

func (f *fakeModuleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Module, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeModuleRepo) ListByPath(ctx context.Context, tx *gorm.DB, pathID uint) ([]*models.Module, error) {
	var out []*models.Module
	for _, m := range f.byID {
		if m.PathID == pathID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeModuleRepo) Update(ctx context.Context, tx *gorm.DB, module *models.Module) error {
	if _, ok := f.byID[module.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *module
	f.byID[module.ID] = &cp
	return nil
}

func (f *fakeModuleRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeLectureRepo struct {
	byID       map[uint]*models.Lecture
	nextID     uint
	lastFilter repositories.ContentFilters
}

func (f *fakeLectureRepo) Create(ctx context.Context, tx *gorm.DB, lecture *models.Lecture) error {
	f.nextID++
	lecture.ID = f.nextID
	cp := *lecture
	f.byID[lecture.ID] = &cp
	return nil
}

func (f *fakeLectureRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lecture, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLectureRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ContentFilters) ([]*models.Lecture, int64, error) {
	f.lastFilter = filters
	var out []*models.Lecture
	for _, l := range f.byID {
		if filters.BuddyOnly && l.AccessLevel != models.AccessBuddy {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakeLectureRepo) Update(ctx context.Context, tx *gorm.DB, lecture *models.Lecture) error {
	if _, ok := f.byID[lecture.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *lecture
	f.byID[lecture.ID] = &cp
	return nil
}

func (f *fakeLectureRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// ===== PROBLEM SETS =====

type fakeProblemSetRepo struct {
	byID   map[uint]*models.ProblemSet
	cached map[uint]*models.ProblemSet // what a read-through cache would still hand out
	nextID uint
}

func (f *fakeProblemSetRepo) seed(ps models.ProblemSet) *models.ProblemSet {
	if ps.ID == 0 {
		f.nextID++
		ps.ID = f.nextID
	}
	if ps.MaxGrade == 0 {
		ps.MaxGrade = models.DefaultMaxGrade
	}
	if ps.PassingGrade == 0 {
		ps.PassingGrade = models.DefaultPassingGrade
	}
	if ps.AccessLevel == "" {
		ps.AccessLevel = models.AccessMember
	}
	f.byID[ps.ID] = &ps
	cp := ps
	return &cp
}

func (f *fakeProblemSetRepo) Create(ctx context.Context, tx *gorm.DB, ps *models.ProblemSet) error {
	f.nextID++
	ps.ID = f.nextID
	cp := *ps
	f.byID[ps.ID] = &cp
	return nil
}

func (f *fakeProblemSetRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ProblemSet, error) {
	if ps, ok := f.cached[id]; ok {
		cp := *ps
		return &cp, nil
	}
	return f.GetByIDUncached(ctx, tx, id)
}

func (f *fakeProblemSetRepo) GetByIDUncached(ctx context.Context, tx *gorm.DB, id uint) (*models.ProblemSet, error) {
	ps, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *ps
	return &cp, nil
}

func (f *fakeProblemSetRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ContentFilters) ([]*models.ProblemSet, int64, error) {
	var out []*models.ProblemSet
	for _, ps := range f.byID {
		if filters.ModuleID != nil && ps.ModuleID != *filters.ModuleID {
			continue
		}
		if filters.BuddyOnly && ps.AccessLevel != models.AccessBuddy {
			continue
		}
		cp := *ps
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProblemSetRepo) Update(ctx context.Context, tx *gorm.DB, ps *models.ProblemSet) error {
	if _, ok := f.byID[ps.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *ps
	f.byID[ps.ID] = &cp
	return nil
}

func (f *fakeProblemSetRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type submissionKey struct {
	userID       string
	problemSetID uint
}

type fakeSubmissionRepo struct {
	mu      sync.Mutex
	rows    map[submissionKey]*models.ProblemSetSubmission
	nextID  uint
	upserts int
}

func (f *fakeSubmissionRepo) Upsert(ctx context.Context, tx *gorm.DB, in repositories.SubmissionUpsert) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++

	key := submissionKey{in.UserID, in.ProblemSetID}
	if row, ok := f.rows[key]; ok {
		row.SubmissionURL = in.SubmissionURL
		row.SubmittedAt = in.SubmittedAt
		if in.ResetGrade {
			row.Grade = 0
			row.GradedAt = nil
			row.GradedBy = nil
		}
		return false, nil
	}

	f.nextID++
	f.rows[key] = &models.ProblemSetSubmission{
		ID:            f.nextID,
		UserID:        in.UserID,
		ProblemSetID:  in.ProblemSetID,
		SubmissionURL: in.SubmissionURL,
		SubmittedAt:   in.SubmittedAt,
	}
	return true, nil
}

func (f *fakeSubmissionRepo) Get(ctx context.Context, tx *gorm.DB, userID string, problemSetID uint) (*models.ProblemSetSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[submissionKey{userID, problemSetID}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeSubmissionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.ProblemSetSubmission, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*models.ProblemSetSubmission
	for _, row := range f.rows {
		if filters.ProblemSetID != nil && row.ProblemSetID != *filters.ProblemSetID {
			continue
		}
		if filters.Graded != nil && (row.GradedAt != nil) != *filters.Graded {
			continue
		}
		cp := *row
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	start := filters.Offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if filters.Limit > 0 && start+filters.Limit < end {
		end = start + filters.Limit
	}
	return all[start:end], total, nil
}

func (f *fakeSubmissionRepo) UpdateGrade(ctx context.Context, tx *gorm.DB, userID string, problemSetID uint, grade int, gradedBy string, gradedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[submissionKey{userID, problemSetID}]
	if !ok {
		return repositories.ErrNotFound
	}
	row.Grade = grade
	row.GradedAt = &gradedAt
	row.GradedBy = &gradedBy
	return nil
}

func submissionUpsert(userID string, problemSetID uint) repositories.SubmissionUpsert {
	return repositories.SubmissionUpsert{
		UserID:        userID,
		ProblemSetID:  problemSetID,
		SubmissionURL: "https://x.dev/" + userID,
		SubmittedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

type progressKey struct {
	userID string
	pathID uint
}

type fakeProgressRepo struct {
	mu     sync.Mutex
	counts map[progressKey]int
	err    error
}

func (f *fakeProgressRepo) IncrementSubmitted(ctx context.Context, tx *gorm.DB, userID string, pathID uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.counts[progressKey{userID, pathID}]++
	return nil
}

func (f *fakeProgressRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.PathProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PathProgress
	for key, count := range f.counts {
		if key.userID == userID {
			out = append(out, &models.PathProgress{UserID: userID, PathID: key.pathID, ProblemSetsSubmitted: count})
		}
	}
	return out, nil
}

// ===== EVENTS =====

type fakeEventRepo struct {
	byID       map[uint]*models.Event
	attendees  map[uint]map[string]*models.EventAttendee
	nextID     uint
	lastFilter repositories.EventFilters
}

func (f *fakeEventRepo) seed(e models.Event) *models.Event {
	f.nextID++
	e.ID = f.nextID
	if e.AccessLevel == "" {
		e.AccessLevel = models.EventMembersOnly
	}
	f.byID[e.ID] = &e
	cp := e
	return &cp
}

func (f *fakeEventRepo) Create(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	f.nextID++
	event.ID = f.nextID
	cp := *event
	f.byID[event.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, tx *gorm.DB, kind models.EventKind, id uint) (*models.Event, error) {
	e, ok := f.byID[id]
	if !ok || e.Kind != kind {
		return nil, repositories.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, kind models.EventKind, id uint) (*models.Event, error) {
	return f.GetByID(ctx, tx, kind, id)
}

func (f *fakeEventRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.EventFilters) ([]*models.Event, int64, error) {
	f.lastFilter = filters
	var out []*models.Event
	for _, e := range f.byID {
		if e.Kind != filters.Kind {
			continue
		}
		if filters.OpenToBuddy && e.AccessLevel != models.EventMembersAndBuddy {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakeEventRepo) Update(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	if _, ok := f.byID[event.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *event
	f.byID[event.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, tx *gorm.DB, kind models.EventKind, id uint) error {
	e, ok := f.byID[id]
	if !ok || e.Kind != kind {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) GetAttendee(ctx context.Context, tx *gorm.DB, eventID uint, userID string) (*models.EventAttendee, error) {
	a, ok := f.attendees[eventID][userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeEventRepo) AddAttendee(ctx context.Context, tx *gorm.DB, attendee *models.EventAttendee) error {
	if f.attendees[attendee.EventID] == nil {
		f.attendees[attendee.EventID] = map[string]*models.EventAttendee{}
	}
	if _, ok := f.attendees[attendee.EventID][attendee.UserID]; ok {
		return repositories.ErrDuplicate
	}
	cp := *attendee
	f.attendees[attendee.EventID][attendee.UserID] = &cp
	return nil
}

func (f *fakeEventRepo) RemoveAttendee(ctx context.Context, tx *gorm.DB, eventID uint, userID string) error {
	if _, ok := f.attendees[eventID][userID]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.attendees[eventID], userID)
	return nil
}

func (f *fakeEventRepo) MarkAttended(ctx context.Context, tx *gorm.DB, eventID uint, userID string) error {
	a, ok := f.attendees[eventID][userID]
	if !ok {
		return repositories.ErrNotFound
	}
	a.Attended = true
	return nil
}

func (f *fakeEventRepo) CountAttendees(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error) {
	return int64(len(f.attendees[eventID])), nil
}

func (f *fakeEventRepo) ListAttendees(ctx context.Context, tx *gorm.DB, eventID uint) ([]*models.EventAttendee, error) {
	var out []*models.EventAttendee
	for _, a := range f.attendees[eventID] {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ===== CERTIFICATES =====

type fakeCertificateRepo struct {
	byID   map[uint]*models.Certificate
	nextID uint
}

func (f *fakeCertificateRepo) Create(ctx context.Context, tx *gorm.DB, cert *models.Certificate) error {
	for _, c := range f.byID {
		if c.CertificateID == cert.CertificateID {
			return repositories.ErrDuplicate
		}
	}
	f.nextID++
	cert.ID = f.nextID
	cp := *cert
	f.byID[cert.ID] = &cp
	return nil
}

func (f *fakeCertificateRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Certificate, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCertificateRepo) GetByCertificateID(ctx context.Context, tx *gorm.DB, certificateID string) (*models.Certificate, error) {
	for _, c := range f.byID {
		if c.CertificateID == certificateID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCertificateRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.CertificateFilters) ([]*models.Certificate, int64, error) {
	var out []*models.Certificate
	for _, c := range f.byID {
		if filters.UserID != nil && c.UserID != *filters.UserID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCertificateRepo) Update(ctx context.Context, tx *gorm.DB, cert *models.Certificate) error {
	if _, ok := f.byID[cert.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *cert
	f.byID[cert.ID] = &cp
	return nil
}

func (f *fakeCertificateRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// ===== DASHBOARD =====

type fakeDashboardRepo struct {
	activeSince time.Time
}

func (f *fakeDashboardRepo) CountUsersByAccess(ctx context.Context, tx *gorm.DB) (map[models.AccessLevel]int64, error) {
	return map[models.AccessLevel]int64{models.AccessMember: 10, models.AccessBuddy: 4}, nil
}

func (f *fakeDashboardRepo) GetTotalPaths(ctx context.Context, tx *gorm.DB) (int64, error) {
	return 3, nil
}

func (f *fakeDashboardRepo) GetTotalProblemSets(ctx context.Context, tx *gorm.DB) (int64, error) {
	return 12, nil
}

func (f *fakeDashboardRepo) GetTotalSubmissions(ctx context.Context, tx *gorm.DB) (int64, error) {
	return 30, nil
}

func (f *fakeDashboardRepo) GetPendingManualGrading(ctx context.Context, tx *gorm.DB) (int64, error) {
	return 7, nil
}

func (f *fakeDashboardRepo) GetUpcomingEvents(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	return 2, nil
}

func (f *fakeDashboardRepo) GetActiveUsers(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	f.activeSince = since
	return 9, nil
}
