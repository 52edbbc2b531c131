package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rezakmal/insightify/internal/cache"
	"github.com/rezakmal/insightify/internal/events"
	"github.com/rezakmal/insightify/internal/repositories"
	"github.com/rezakmal/insightify/internal/validator"
)

// ServiceManagerConfig holds the dependencies and settings the services
// are built from.
type ServiceManagerConfig struct {
	Repo        repositories.Repository
	Logger      *slog.Logger
	Validator   *validator.Validator
	RedisClient *redis.Client
	Publisher   message.Publisher

	JWTSecret string
	TokenTTL  time.Duration

	MLBaseURL string
	MLTimeout time.Duration
}

// serviceManager implements ServiceManager
type serviceManager struct {
	config ServiceManagerConfig
	logger *slog.Logger

	authService     AuthService
	courseService   CourseService
	progressService ProgressService
	quizService     QuizService
	activityService ActivityService
	mlService       MlService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		config: config,
		logger: config.Logger,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	caches := cache.NewCacheManager(sm.config.RedisClient)
	blacklist := cache.NewTokenBlacklist(sm.config.RedisClient)
	activityPublisher := events.NewActivityPublisher(sm.config.Publisher, sm.logger)

	mlClient := resty.New().
		SetBaseURL(sm.config.MLBaseURL).
		SetTimeout(sm.config.MLTimeout)

	sm.activityService = NewActivityService(sm.config.Repo, sm.logger, sm.config.Validator, activityPublisher)
	sm.courseService = NewCourseService(sm.config.Repo, sm.logger, sm.config.Validator, caches)
	sm.progressService = NewProgressService(sm.config.Repo, sm.logger, sm.courseService, sm.activityService)
	sm.quizService = NewQuizService(sm.config.Repo, sm.logger, sm.activityService)
	sm.authService = NewAuthService(sm.config.Repo, sm.logger, sm.config.Validator, blacklist, sm.config.JWTSecret, sm.config.TokenTTL)
	sm.mlService = NewMlService(sm.config.Repo, sm.logger, caches, mlClient)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.courseService
}

func (sm *serviceManager) Progress() ProgressService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.progressService
}

func (sm *serviceManager) Quiz() QuizService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.quizService
}

func (sm *serviceManager) Activity() ActivityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.activityService
}

func (sm *serviceManager) Ml() MlService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.mlService
}

// HealthCheck verifies the backing stores are reachable
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.config.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown gracefully releases service resources
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.config.Publisher != nil {
		if err := sm.config.Publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
