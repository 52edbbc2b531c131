package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rezakmal/insightify/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type ActivityFilters struct {
	CourseID *string              `json:"course_id"`
	ModuleID *string              `json:"module_id"`
	Type     *models.ActivityType `json:"type"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

type QuizResultFilters struct {
	ModuleID *string `json:"module_id"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
}

// DailyCount is one bucket of the per-day activity aggregation.
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type SessionRepository interface {
	// Upsert replaces any existing session for the user (single active
	// session per user).
	Upsert(ctx context.Context, tx *gorm.DB, session *models.Session) error
	Get(ctx context.Context, tx *gorm.DB, userID string) (*models.Session, error)
	Delete(ctx context.Context, tx *gorm.DB, userID string) error
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	// GetByID preloads the course's module references and module records.
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Course, error)
	Exists(ctx context.Context, tx *gorm.DB, id string) (bool, error)
}

type ModuleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, module *models.Module) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Module, error)
}

type QuizRepository interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	// GetByModule returns the module's quiz with questions ordered by position.
	GetByModule(ctx context.Context, tx *gorm.DB, moduleID string) (*models.Quiz, error)
	// ReplaceForModule deletes any existing quiz for the module and creates
	// the given one (quiz import).
	ReplaceForModule(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
}

type QuizResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.QuizResult) error
	HasPassed(ctx context.Context, tx *gorm.DB, userID, moduleID string) (bool, error)
	// PassedModuleIDs returns the distinct subset of moduleIDs the user has a
	// passing result for.
	PassedModuleIDs(ctx context.Context, tx *gorm.DB, userID string, moduleIDs []string) ([]string, error)
	LatestByUserAndModule(ctx context.Context, tx *gorm.DB, userID, moduleID string) (*models.QuizResult, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters QuizResultFilters) ([]*models.QuizResult, int64, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	Get(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.Enrollment, error)
	Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	// AppendQuizAttempt pushes one attempt summary onto the enrollment's
	// embedded history, creating the enrollment row when absent (upsert).
	AppendQuizAttempt(ctx context.Context, tx *gorm.DB, userID, courseID string, attempt models.QuizAttemptSummary) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Enrollment, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, tx *gorm.DB, activity *models.Activity) error
	List(ctx context.Context, tx *gorm.DB, userID string, filters ActivityFilters) ([]*models.Activity, int64, error)
	ListByUserAndModule(ctx context.Context, tx *gorm.DB, userID, moduleID string) ([]*models.Activity, error)
	// LatestQuizStart returns the most recent quiz_start event for the
	// (user, module, course) triple.
	LatestQuizStart(ctx context.Context, tx *gorm.DB, userID, moduleID, courseID string) (*models.Activity, error)
	// DailyCounts buckets the user's events per UTC calendar day from
	// `from` (inclusive) onwards, oldest first. Days without events are
	// omitted.
	DailyCounts(ctx context.Context, tx *gorm.DB, userID string, from time.Time, courseID *string) ([]DailyCount, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Activity, error)
}

type MlRepository interface {
	UpsertProfile(ctx context.Context, tx *gorm.DB, profile *models.MlProfile) error
	GetProfile(ctx context.Context, tx *gorm.DB, userID string) (*models.MlProfile, error)
	UpsertRecommendation(ctx context.Context, tx *gorm.DB, rec *models.MlRecommendation) error
	GetRecommendation(ctx context.Context, tx *gorm.DB, userID string) (*models.MlRecommendation, error)
}

// ===== AGGREGATE =====

type Repository interface {
	User() UserRepository
	Session() SessionRepository
	Course() CourseRepository
	Module() ModuleRepository
	Quiz() QuizRepository
	QuizResult() QuizResultRepository
	Enrollment() EnrollmentRepository
	Activity() ActivityRepository
	Ml() MlRepository

	Ping(ctx context.Context) error
	Close() error
}

type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ===== ERROR HELPERS =====

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
