package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryRepo is an in-memory repositories.Repository used by the service
// tests. It mirrors the store's semantics where they matter: unique keys,
// not-found errors, newest-first listings.
type memoryRepo struct {
	mu sync.Mutex

	users       map[string]*models.User
	sessions    map[string]*models.Session
	courses     map[string]*models.Course
	modules     map[string]*models.Module
	quizzes     map[string]*models.Quiz // keyed by module id
	results     []*models.QuizResult
	enrollments map[string]*models.Enrollment // keyed by user|course
	activities  []*models.Activity
	profiles    map[string]*models.MlProfile
	recs        map[string]*models.MlRecommendation
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users:       make(map[string]*models.User),
		sessions:    make(map[string]*models.Session),
		courses:     make(map[string]*models.Course),
		modules:     make(map[string]*models.Module),
		quizzes:     make(map[string]*models.Quiz),
		enrollments: make(map[string]*models.Enrollment),
		profiles:    make(map[string]*models.MlProfile),
		recs:        make(map[string]*models.MlRecommendation),
	}
}

func (r *memoryRepo) User() repositories.UserRepository             { return &memUsers{r} }
func (r *memoryRepo) Session() repositories.SessionRepository       { return &memSessions{r} }
func (r *memoryRepo) Course() repositories.CourseRepository         { return &memCourses{r} }
func (r *memoryRepo) Module() repositories.ModuleRepository         { return &memModules{r} }
func (r *memoryRepo) Quiz() repositories.QuizRepository             { return &memQuizzes{r} }
func (r *memoryRepo) QuizResult() repositories.QuizResultRepository { return &memResults{r} }
func (r *memoryRepo) Enrollment() repositories.EnrollmentRepository { return &memEnrollments{r} }
func (r *memoryRepo) Activity() repositories.ActivityRepository     { return &memActivities{r} }
func (r *memoryRepo) Ml() repositories.MlRepository                 { return &memMl{r} }

func (r *memoryRepo) Ping(ctx context.Context) error { return nil }
func (r *memoryRepo) Close() error                   { return nil }

func enrollmentKey(userID, courseID string) string {
	return userID + "|" + courseID
}

// ===== USERS =====

type memUsers struct{ r *memoryRepo }

func (m *memUsers) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	for _, u := range m.r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	m.r.users[user.ID] = user
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if u, ok := m.r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUsers) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	for _, u := range m.r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUsers) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	for _, u := range m.r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ===== SESSIONS =====

type memSessions struct{ r *memoryRepo }

func (m *memSessions) Upsert(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	m.r.sessions[session.UserID] = session
	return nil
}

func (m *memSessions) Get(ctx context.Context, tx *gorm.DB, userID string) (*models.Session, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	s, ok := m.r.sessions[userID]
	if !ok || s.ExpiresAt.Before(time.Now()) {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (m *memSessions) Delete(ctx context.Context, tx *gorm.DB, userID string) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	delete(m.r.sessions, userID)
	return nil
}

// ===== COURSES =====

type memCourses struct{ r *memoryRepo }

func (m *memCourses) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	for i := range course.Modules {
		course.Modules[i].CourseID = course.ID
		if mod, ok := m.r.modules[course.Modules[i].ModuleID]; ok {
			course.Modules[i].Module = mod
		}
	}
	m.r.courses[course.ID] = course
	return nil
}

func (m *memCourses) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	c, ok := m.r.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *c
	clone.Modules = append([]models.CourseModule(nil), c.Modules...)
	return &clone, nil
}

func (m *memCourses) List(ctx context.Context, tx *gorm.DB) ([]*models.Course, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	out := make([]*models.Course, 0, len(m.r.courses))
	for _, c := range m.r.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCourses) Exists(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	_, ok := m.r.courses[id]
	return ok, nil
}

// ===== MODULES =====

type memModules struct{ r *memoryRepo }

func (m *memModules) Create(ctx context.Context, tx *gorm.DB, module *models.Module) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	m.r.modules[module.ID] = module
	return nil
}

func (m *memModules) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Module, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if mod, ok := m.r.modules[id]; ok {
		return mod, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ===== QUIZZES =====

type memQuizzes struct{ r *memoryRepo }

func (m *memQuizzes) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == "" {
			quiz.Questions[i].ID = uuid.NewString()
		}
		quiz.Questions[i].QuizID = quiz.ID
	}
	m.r.quizzes[quiz.ModuleID] = quiz
	return nil
}

func (m *memQuizzes) GetByModule(ctx context.Context, tx *gorm.DB, moduleID string) (*models.Quiz, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if q, ok := m.r.quizzes[moduleID]; ok {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memQuizzes) ReplaceForModule(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	m.r.mu.Lock()
	delete(m.r.quizzes, quiz.ModuleID)
	m.r.mu.Unlock()
	return m.Create(ctx, tx, quiz)
}

// ===== QUIZ RESULTS =====

type memResults struct{ r *memoryRepo }

func (m *memResults) Create(ctx context.Context, tx *gorm.DB, result *models.QuizResult) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}
	m.r.results = append(m.r.results, result)
	return nil
}

func (m *memResults) HasPassed(ctx context.Context, tx *gorm.DB, userID, moduleID string) (bool, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	for _, res := range m.r.results {
		if res.UserID == userID && res.ModuleID == moduleID && res.Passed {
			return true, nil
		}
	}
	return false, nil
}

func (m *memResults) PassedModuleIDs(ctx context.Context, tx *gorm.DB, userID string, moduleIDs []string) ([]string, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	wanted := make(map[string]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		wanted[id] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, res := range m.r.results {
		if res.UserID == userID && res.Passed && wanted[res.ModuleID] && !seen[res.ModuleID] {
			seen[res.ModuleID] = true
			out = append(out, res.ModuleID)
		}
	}
	return out, nil
}

func (m *memResults) LatestByUserAndModule(ctx context.Context, tx *gorm.DB, userID, moduleID string) (*models.QuizResult, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var latest *models.QuizResult
	for _, res := range m.r.results {
		if res.UserID == userID && res.ModuleID == moduleID {
			if latest == nil || res.Timestamp.After(latest.Timestamp) {
				latest = res
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *memResults) ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.QuizResultFilters) ([]*models.QuizResult, int64, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var matched []*models.QuizResult
	for _, res := range m.r.results {
		if res.UserID != userID {
			continue
		}
		if filters.ModuleID != nil && res.ModuleID != *filters.ModuleID {
			continue
		}
		matched = append(matched, res)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })
	total := int64(len(matched))
	matched = paginate(matched, filters.Offset, filters.Limit)
	return matched, total, nil
}

// ===== ENROLLMENTS =====

type memEnrollments struct{ r *memoryRepo }

func (m *memEnrollments) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	key := enrollmentKey(enrollment.UserID, enrollment.CourseID)
	if _, ok := m.r.enrollments[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	m.r.enrollments[key] = enrollment
	return nil
}

func (m *memEnrollments) Get(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.Enrollment, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if e, ok := m.r.enrollments[enrollmentKey(userID, courseID)]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memEnrollments) Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	m.r.enrollments[enrollmentKey(enrollment.UserID, enrollment.CourseID)] = enrollment
	return nil
}

func (m *memEnrollments) AppendQuizAttempt(ctx context.Context, tx *gorm.DB, userID, courseID string, attempt models.QuizAttemptSummary) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	key := enrollmentKey(userID, courseID)
	e, ok := m.r.enrollments[key]
	if !ok {
		e = &models.Enrollment{
			ID:               uuid.NewString(),
			UserID:           userID,
			CourseID:         courseID,
			CompletedModules: []string{},
		}
		m.r.enrollments[key] = e
	}
	e.QuizResults = append(e.QuizResults, attempt)
	return nil
}

func (m *memEnrollments) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Enrollment, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []*models.Enrollment
	for _, e := range m.r.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ===== ACTIVITIES =====

type memActivities struct{ r *memoryRepo }

func (m *memActivities) Create(ctx context.Context, tx *gorm.DB, activity *models.Activity) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now()
	}
	m.r.activities = append(m.r.activities, activity)
	return nil
}

func (m *memActivities) List(ctx context.Context, tx *gorm.DB, userID string, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var matched []*models.Activity
	for _, a := range m.r.activities {
		if a.UserID != userID {
			continue
		}
		if filters.CourseID != nil && (a.CourseID == nil || *a.CourseID != *filters.CourseID) {
			continue
		}
		if filters.ModuleID != nil && (a.ModuleID == nil || *a.ModuleID != *filters.ModuleID) {
			continue
		}
		if filters.Type != nil && a.Type != *filters.Type {
			continue
		}
		matched = append(matched, a)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].OccurredAt.After(matched[j].OccurredAt) })
	total := int64(len(matched))
	matched = paginate(matched, filters.Offset, filters.Limit)
	return matched, total, nil
}

func (m *memActivities) ListByUserAndModule(ctx context.Context, tx *gorm.DB, userID, moduleID string) ([]*models.Activity, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []*models.Activity
	for _, a := range m.r.activities {
		if a.UserID == userID && a.ModuleID != nil && *a.ModuleID == moduleID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memActivities) LatestQuizStart(ctx context.Context, tx *gorm.DB, userID, moduleID, courseID string) (*models.Activity, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var latest *models.Activity
	for _, a := range m.r.activities {
		if a.Type != models.ActivityQuizStart || a.UserID != userID {
			continue
		}
		if a.ModuleID == nil || *a.ModuleID != moduleID {
			continue
		}
		if courseID != "" && (a.CourseID == nil || *a.CourseID != courseID) {
			continue
		}
		if latest == nil || a.OccurredAt.After(latest.OccurredAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *memActivities) DailyCounts(ctx context.Context, tx *gorm.DB, userID string, from time.Time, courseID *string) ([]repositories.DailyCount, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	byDay := make(map[time.Time]int64)
	for _, a := range m.r.activities {
		if a.UserID != userID || a.OccurredAt.Before(from) {
			continue
		}
		if courseID != nil && (a.CourseID == nil || *a.CourseID != *courseID) {
			continue
		}
		occurred := a.OccurredAt.UTC()
		day := time.Date(occurred.Year(), occurred.Month(), occurred.Day(), 0, 0, 0, 0, time.UTC)
		byDay[day]++
	}
	var out []repositories.DailyCount
	for day, count := range byDay {
		out = append(out, repositories.DailyCount{Day: day, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (m *memActivities) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Activity, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []*models.Activity
	for _, a := range m.r.activities {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

// ===== ML =====

type memMl struct{ r *memoryRepo }

func (m *memMl) UpsertProfile(ctx context.Context, tx *gorm.DB, profile *models.MlProfile) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	m.r.profiles[profile.UserID] = profile
	return nil
}

func (m *memMl) GetProfile(ctx context.Context, tx *gorm.DB, userID string) (*models.MlProfile, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if p, ok := m.r.profiles[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memMl) UpsertRecommendation(ctx context.Context, tx *gorm.DB, rec *models.MlRecommendation) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	m.r.recs[rec.UserID] = rec
	return nil
}

func (m *memMl) GetRecommendation(ctx context.Context, tx *gorm.DB, userID string) (*models.MlRecommendation, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if rec, ok := m.r.recs[userID]; ok {
		return rec, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
