package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/rezakmal/insightify/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db          *gorm.DB
	redisClient *redis.Client

	// Repository instances
	user       repositories.UserRepository
	session    repositories.SessionRepository
	course     repositories.CourseRepository
	module     repositories.ModuleRepository
	quiz       repositories.QuizRepository
	quizResult repositories.QuizResultRepository
	enrollment repositories.EnrollmentRepository
	activity   repositories.ActivityRepository
	ml         repositories.MlRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:          config.DB,
		redisClient: config.RedisClient,
	}

	repo.user = NewUserPostgreSQL(config.DB)
	repo.session = NewSessionPostgreSQL(config.DB)
	repo.course = NewCoursePostgreSQL(config.DB)
	repo.module = NewModulePostgreSQL(config.DB)
	repo.quiz = NewQuizPostgreSQL(config.DB)
	repo.quizResult = NewQuizResultPostgreSQL(config.DB)
	repo.enrollment = NewEnrollmentPostgreSQL(config.DB)
	repo.activity = NewActivityPostgreSQL(config.DB)
	repo.ml = NewMlPostgreSQL(config.DB)

	return repo
}

// User returns the user repository
func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

// Session returns the session repository
func (r *PostgreSQLRepository) Session() repositories.SessionRepository {
	return r.session
}

// Course returns the course repository
func (r *PostgreSQLRepository) Course() repositories.CourseRepository {
	return r.course
}

// Module returns the module repository
func (r *PostgreSQLRepository) Module() repositories.ModuleRepository {
	return r.module
}

// Quiz returns the quiz repository
func (r *PostgreSQLRepository) Quiz() repositories.QuizRepository {
	return r.quiz
}

// QuizResult returns the quiz result repository
func (r *PostgreSQLRepository) QuizResult() repositories.QuizResultRepository {
	return r.quizResult
}

// Enrollment returns the enrollment repository
func (r *PostgreSQLRepository) Enrollment() repositories.EnrollmentRepository {
	return r.enrollment
}

// Activity returns the activity repository
func (r *PostgreSQLRepository) Activity() repositories.ActivityRepository {
	return r.activity
}

// Ml returns the ML artifact repository
func (r *PostgreSQLRepository) Ml() repositories.MlRepository {
	return r.ml
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if _, err := r.redisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize initializes all repositories and connections
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional. Token revocation and ML caching degrade gracefully
	// without it.
	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
