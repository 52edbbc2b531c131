package services

import (
	"context"
	"io"
	"time"

	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/validator"
)

// ===== REQUEST DTOs =====

// Use business validator types
type SignupRequest = validator.SignupRequest
type LoginRequest = validator.LoginRequest
type EnrollRequest = validator.EnrollRequest
type QuizAnswerRequest = validator.QuizAnswerRequest
type QuizSubmitRequest = validator.QuizSubmitRequest
type CourseCreateRequest = validator.CourseCreateRequest
type ModuleCreateRequest = validator.ModuleCreateRequest
type ActivityRecordRequest = validator.ActivityRecordRequest

// ===== RESPONSE DTOs =====

type AuthResponse struct {
	Token  string       `json:"token"`
	UserID string       `json:"userId"`
	User   *models.User `json:"user"`
}

type QuizOptionView struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type QuizQuestionView struct {
	QuestionID string           `json:"questionId"`
	Question   string           `json:"question"`
	Options    []QuizOptionView `json:"options"`
}

// QuizView is the quiz as presented to a learner. Correct answers are
// never included.
type QuizView struct {
	Questions       []QuizQuestionView `json:"questions"`
	TotalQuestions  int                `json:"totalQuestions"`
	MaximumDuration int                `json:"maximumDuration"`
	DeadlineAt      *time.Time         `json:"deadlineAt"`
}

type ScoreResult struct {
	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	Score   int  `json:"score"`
	Passed  bool `json:"passed"`
}

type ModuleRef struct {
	ModuleID string `json:"moduleId"`
	Title    string `json:"title"`
}

// CourseProgressView is recomputed from passing quiz results, independent
// of the enrollment's stored completion snapshot.
type CourseProgressView struct {
	CourseID           string     `json:"courseId"`
	TotalModules       int        `json:"totalModules"`
	CompletedModules   int        `json:"completedModules"`
	ProgressPercentage int        `json:"progressPercentage"`
	IsFinished         bool       `json:"isFinished"`
	NextModule         *ModuleRef `json:"nextModule"`
}

// EnrollmentProgressView is the enrollment snapshot served to the user:
// the stored completion set and percentage plus the embedded quiz
// history. Distinct from CourseProgressView, which is quiz-derived.
type EnrollmentProgressView struct {
	Progress         int                         `json:"progress"`
	IsCompleted      bool                        `json:"isCompleted"`
	CompletedModules []string                    `json:"completedModules"`
	QuizResults      []models.QuizAttemptSummary `json:"quizResults"`
}

type ModuleStatusView struct {
	Status     string             `json:"status"`
	QuizResult *models.QuizResult `json:"quizResult"`
}

// Module status values
const (
	StatusNotStarted         = "not_started"
	StatusInProgress         = "in_progress"
	StatusCompleted          = "completed"
	StatusCompletedNotPassed = "completed_not_passed"
)

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ActivityListResponse struct {
	Data       []*models.Activity `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

type QuizResultListResponse struct {
	Data       []*models.QuizResult `json:"data"`
	Pagination Pagination           `json:"pagination"`
}

type DailyCountView struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)

	// Issue signs a bearer token for the user and replaces any prior
	// session (single session per user).
	Issue(ctx context.Context, userID string) (string, error)

	// Verify resolves a bearer token to its user. Failure order: missing,
	// malformed/expired/bad signature, revoked, unknown user, no session.
	Verify(ctx context.Context, token string) (*models.User, error)

	// Revoke blacklists the token for its remaining lifetime and deletes
	// the session. ErrNotLoggedIn when no session exists.
	Revoke(ctx context.Context, token, userID string) error
}

type CourseService interface {
	Create(ctx context.Context, req *CourseCreateRequest) (*models.Course, error)
	CreateModule(ctx context.Context, req *ModuleCreateRequest) (*models.Module, error)
	List(ctx context.Context) ([]*models.Course, error)
	GetByID(ctx context.Context, id string) (*models.Course, error)
	// Modules returns the course's module references in gating order.
	Modules(ctx context.Context, courseID string) ([]models.CourseModule, error)
	GetModule(ctx context.Context, moduleID string) (*models.Module, error)
}

type ProgressService interface {
	// CheckAccess returns nil when the user may open the module. Without a
	// course context access is always granted.
	CheckAccess(ctx context.Context, userID, moduleID, courseID string) error
	// Enroll reports whether this call created the enrollment; repeat
	// enrollments return the existing record with created=false.
	Enroll(ctx context.Context, userID, courseID string) (*models.Enrollment, bool, error)
	StartModule(ctx context.Context, userID, moduleID, courseID string) error
	CompleteModule(ctx context.Context, userID, moduleID, courseID string) (*models.Enrollment, error)
	CourseProgress(ctx context.Context, userID, courseID string) (*CourseProgressView, error)
	// EnrollmentProgress returns the stored enrollment snapshot, empty
	// (never an error) when the user is not enrolled.
	EnrollmentProgress(ctx context.Context, userID, courseID string) (*EnrollmentProgressView, error)
	ModuleStatus(ctx context.Context, userID, moduleID string) (*ModuleStatusView, error)
}

type QuizService interface {
	// Start returns the learner view of a module's quiz. userID may be
	// empty (public start); the quiz_start event is only recorded for
	// authenticated starts.
	Start(ctx context.Context, moduleID, userID, courseID string) (*QuizView, error)
	Submit(ctx context.Context, moduleID, userID, courseID string, answers []QuizAnswerRequest) (*ScoreResult, error)
	// ImportQuiz replaces the module's quiz from an XLSX workbook, one
	// question per row: text, options A-D, correct letter.
	ImportQuiz(ctx context.Context, moduleID string, workbook io.Reader) (*models.Quiz, error)
}

type ActivityService interface {
	Record(ctx context.Context, userID string, req *ActivityRecordRequest) (*models.Activity, error)
	Query(ctx context.Context, userID string, courseID, moduleID *string, eventType *models.ActivityType, page, limit int) (*ActivityListResponse, error)
	// DailyCounts returns exactly `days` contiguous buckets ending today,
	// oldest first, zero-filled.
	DailyCounts(ctx context.Context, userID string, days int, courseID *string) ([]DailyCountView, error)
	QuizResults(ctx context.Context, userID string, moduleID *string, page, limit int) (*QuizResultListResponse, error)
}

type MlService interface {
	GenerateProfile(ctx context.Context, userID string) (*models.MlProfile, error)
	GenerateRecommendations(ctx context.Context, userID string) (*models.MlRecommendation, error)
	// GetProfile and GetRecommendations return (nil, nil) when nothing has
	// been generated yet.
	GetProfile(ctx context.Context, userID string) (*models.MlProfile, error)
	GetRecommendations(ctx context.Context, userID string) (*models.MlRecommendation, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Course() CourseService
	Progress() ProgressService
	Quiz() QuizService
	Activity() ActivityService
	Ml() MlService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
