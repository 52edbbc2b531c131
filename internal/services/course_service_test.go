package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezakmal/insightify/internal/cache"
	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/validator"
)

func newCourseService(repo *memoryRepo) CourseService {
	return NewCourseService(repo, testLogger(), validator.New(), cache.NewCacheManager(nil))
}

func TestCreateCourseResolvesModuleRefs(t *testing.T) {
	repo := newMemoryRepo()
	svc := newCourseService(repo)
	ctx := context.Background()

	module, err := svc.CreateModule(ctx, &ModuleCreateRequest{Title: "Intro", Content: "hello"})
	require.NoError(t, err)

	course, err := svc.Create(ctx, &CourseCreateRequest{
		Title:   "Go Basics",
		Modules: []validator.CourseModuleRequest{{ModuleID: module.ID, Order: 0}},
	})
	require.NoError(t, err)
	require.Len(t, course.Modules, 1)
	assert.Equal(t, module.ID, course.Modules[0].ModuleID)

	_, err = svc.Create(ctx, &CourseCreateRequest{
		Title:   "Broken",
		Modules: []validator.CourseModuleRequest{{ModuleID: "missing", Order: 0}},
	})
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestCreateCourseValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newCourseService(repo)

	_, err := svc.Create(context.Background(), &CourseCreateRequest{Title: "   "})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestGetByIDOrdersModules(t *testing.T) {
	repo := newMemoryRepo()
	svc := newCourseService(repo)
	ctx := context.Background()

	ids := make([]string, 3)
	for i := range ids {
		module := &models.Module{Title: "Module", Content: "content"}
		require.NoError(t, repo.Module().Create(ctx, nil, module))
		ids[i] = module.ID
	}

	// Attached out of order, with a tie between the first two
	course := &models.Course{
		Title: "Course",
		Modules: []models.CourseModule{
			{ModuleID: ids[0], Order: 5},
			{ModuleID: ids[1], Order: 5},
			{ModuleID: ids[2], Order: 1},
		},
	}
	require.NoError(t, repo.Course().Create(ctx, nil, course))

	got, err := svc.GetByID(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, got.Modules, 3)

	// Lowest order first; equal orders keep attachment position
	assert.Equal(t, ids[2], got.Modules[0].ModuleID)
	assert.Equal(t, ids[0], got.Modules[1].ModuleID)
	assert.Equal(t, ids[1], got.Modules[2].ModuleID)
}

func TestGetByIDUnknownCourse(t *testing.T) {
	repo := newMemoryRepo()
	svc := newCourseService(repo)

	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestGetModuleUnknown(t *testing.T) {
	repo := newMemoryRepo()
	svc := newCourseService(repo)

	_, err := svc.GetModule(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestListCourses(t *testing.T) {
	repo := newMemoryRepo()
	svc := newCourseService(repo)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Course().Create(ctx, nil, &models.Course{Title: "Course"}))
	}

	courses, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
}
