package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/rezakmal/insightify/internal/cache"
	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/repositories"
	"github.com/rezakmal/insightify/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	caches    *cache.CacheManager
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, caches *cache.CacheManager) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		caches:    caches,
	}
}

func (s *courseService) Create(ctx context.Context, req *CourseCreateRequest) (*models.Course, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
	}
	for _, ref := range req.Modules {
		if _, err := s.repo.Module().GetByID(ctx, nil, ref.ModuleID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrModuleNotFound
			}
			return nil, fmt.Errorf("failed to resolve module %s: %w", ref.ModuleID, err)
		}
		course.Modules = append(course.Modules, models.CourseModule{
			ModuleID: ref.ModuleID,
			Order:    ref.Order,
		})
	}

	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.caches.InvalidateCatalog(ctx)
	s.logger.Info("Course created", "course_id", course.ID, "modules", len(course.Modules))

	return course, nil
}

func (s *courseService) CreateModule(ctx context.Context, req *ModuleCreateRequest) (*models.Module, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	module := &models.Module{
		Title:   req.Title,
		Content: req.Content,
	}
	if err := s.repo.Module().Create(ctx, nil, module); err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}

	s.logger.Info("Module created", "module_id", module.ID)

	return module, nil
}

func (s *courseService) List(ctx context.Context) ([]*models.Course, error) {
	var courses []*models.Course
	err := s.caches.Course.CacheOrExecute(ctx, "list", &courses, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Course().List(ctx, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	for _, course := range courses {
		sortCourseModules(course.Modules)
	}

	return courses, nil
}

func (s *courseService) GetByID(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	sortCourseModules(course.Modules)

	return course, nil
}

func (s *courseService) Modules(ctx context.Context, courseID string) ([]models.CourseModule, error) {
	course, err := s.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return course.Modules, nil
}

func (s *courseService) GetModule(ctx context.Context, moduleID string) (*models.Module, error) {
	module, err := s.repo.Module().GetByID(ctx, nil, moduleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return module, nil
}

// sortCourseModules orders module references for gating: explicit order
// first, original attachment position breaking ties. The slice arrives in
// attachment order, so a stable sort on order alone preserves ties.
func sortCourseModules(modules []models.CourseModule) {
	sort.SliceStable(modules, func(i, j int) bool {
		return modules[i].Order < modules[j].Order
	})
}
