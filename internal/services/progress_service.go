package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/repositories"
)

type progressService struct {
	repo     repositories.Repository
	logger   *slog.Logger
	courses  CourseService
	activity ActivityService
}

func NewProgressService(repo repositories.Repository, logger *slog.Logger, courses CourseService, activity ActivityService) ProgressService {
	return &progressService{
		repo:     repo,
		logger:   logger,
		courses:  courses,
		activity: activity,
	}
}

// CheckAccess gates a module behind the previous module's quiz. Without a
// course context module content is not gated.
func (s *progressService) CheckAccess(ctx context.Context, userID, moduleID, courseID string) error {
	if courseID == "" {
		return nil
	}

	modules, err := s.courses.Modules(ctx, courseID)
	if err != nil {
		return err
	}

	position := -1
	for i, cm := range modules {
		if cm.ModuleID == moduleID {
			position = i
			break
		}
	}
	if position == -1 {
		return ErrModuleNotFound
	}

	if position > 0 {
		previous := modules[position-1].ModuleID
		passed, err := s.repo.QuizResult().HasPassed(ctx, nil, userID, previous)
		if err != nil {
			return fmt.Errorf("failed to check prerequisite: %w", err)
		}
		if !passed {
			return ErrPrerequisiteNotMet
		}
	}

	if _, err := s.repo.Enrollment().Get(ctx, nil, userID, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("failed to load enrollment: %w", err)
	}

	return nil
}

// Enroll is idempotent: an existing enrollment is returned unchanged and
// no second enroll event is logged. The created flag tells the handler
// whether this call made the record.
func (s *progressService) Enroll(ctx context.Context, userID, courseID string) (*models.Enrollment, bool, error) {
	exists, err := s.repo.Course().Exists(ctx, nil, courseID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return nil, false, ErrCourseNotFound
	}

	existing, err := s.repo.Enrollment().Get(ctx, nil, userID, courseID)
	if err == nil {
		return existing, false, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, false, fmt.Errorf("failed to load enrollment: %w", err)
	}

	enrollment := &models.Enrollment{
		UserID:           userID,
		CourseID:         courseID,
		CompletedModules: []string{},
	}
	if err := s.repo.Enrollment().Create(ctx, nil, enrollment); err != nil {
		// Concurrent enroll lost the race on the unique index
		if repositories.IsDuplicateKeyError(err) {
			existing, err := s.repo.Enrollment().Get(ctx, nil, userID, courseID)
			return existing, false, err
		}
		return nil, false, fmt.Errorf("failed to create enrollment: %w", err)
	}

	if _, err := s.activity.Record(ctx, userID, &ActivityRecordRequest{
		CourseID: &courseID,
		Type:     models.ActivityEnroll,
	}); err != nil {
		return nil, false, err
	}

	s.logger.Info("User enrolled", "user_id", userID, "course_id", courseID)

	return enrollment, true, nil
}

func (s *progressService) StartModule(ctx context.Context, userID, moduleID, courseID string) error {
	if _, err := s.courses.GetModule(ctx, moduleID); err != nil {
		return err
	}

	if _, err := s.repo.Enrollment().Get(ctx, nil, userID, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("failed to load enrollment: %w", err)
	}

	_, err := s.activity.Record(ctx, userID, &ActivityRecordRequest{
		CourseID: &courseID,
		ModuleID: &moduleID,
		Type:     models.ActivityModuleStart,
	})
	return err
}

// CompleteModule adds the module to the enrollment's completed set and
// recomputes progress against the course's current module count. The
// module_complete event is logged even when the set is unchanged.
func (s *progressService) CompleteModule(ctx context.Context, userID, moduleID, courseID string) (*models.Enrollment, error) {
	enrollment, err := s.repo.Enrollment().Get(ctx, nil, userID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if !enrollment.HasCompleted(moduleID) {
		enrollment.CompletedModules = append(enrollment.CompletedModules, moduleID)
	}

	total := len(course.Modules)
	completed := len(enrollment.CompletedModules)
	enrollment.Progress = roundPercentage(completed, total)
	enrollment.IsCompleted = total > 0 && completed >= total

	if err := s.repo.Enrollment().Update(ctx, nil, enrollment); err != nil {
		return nil, fmt.Errorf("failed to update enrollment: %w", err)
	}

	if _, err := s.activity.Record(ctx, userID, &ActivityRecordRequest{
		CourseID: &courseID,
		ModuleID: &moduleID,
		Type:     models.ActivityModuleComplete,
	}); err != nil {
		return nil, err
	}

	return enrollment, nil
}

// CourseProgress recomputes completion from passing quiz results. This is
// a distinct view from the enrollment snapshot and the two can diverge.
func (s *progressService) CourseProgress(ctx context.Context, userID, courseID string) (*CourseProgressView, error) {
	modules, err := s.courses.Modules(ctx, courseID)
	if err != nil {
		return nil, err
	}

	moduleIDs := make([]string, len(modules))
	for i, cm := range modules {
		moduleIDs[i] = cm.ModuleID
	}

	passedIDs, err := s.repo.QuizResult().PassedModuleIDs(ctx, nil, userID, moduleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz results: %w", err)
	}
	passed := make(map[string]bool, len(passedIDs))
	for _, id := range passedIDs {
		passed[id] = true
	}

	view := &CourseProgressView{
		CourseID:           courseID,
		TotalModules:       len(modules),
		CompletedModules:   len(passedIDs),
		ProgressPercentage: roundPercentage(len(passedIDs), len(modules)),
		IsFinished:         len(modules) > 0 && len(passedIDs) == len(modules),
	}

	for _, cm := range modules {
		if !passed[cm.ModuleID] {
			ref := &ModuleRef{ModuleID: cm.ModuleID}
			if cm.Module != nil {
				ref.Title = cm.Module.Title
			}
			view.NextModule = ref
			break
		}
	}

	return view, nil
}

// ModuleStatus derives the status from the activity log: completion is
// signalled by a module_complete event, and only then does the latest
// quiz result decide passed versus not passed. The latest result rides
// along on every status.
func (s *progressService) ModuleStatus(ctx context.Context, userID, moduleID string) (*ModuleStatusView, error) {
	latest, err := s.repo.QuizResult().LatestByUserAndModule(ctx, nil, userID, moduleID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to load quiz result: %w", err)
		}
		latest = nil
	}

	activities, err := s.repo.Activity().ListByUserAndModule(ctx, nil, userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	if len(activities) == 0 {
		return &ModuleStatusView{Status: StatusNotStarted, QuizResult: latest}, nil
	}

	for _, a := range activities {
		if a.Type == models.ActivityModuleComplete {
			status := StatusCompletedNotPassed
			if latest != nil && latest.Passed {
				status = StatusCompleted
			}
			return &ModuleStatusView{Status: status, QuizResult: latest}, nil
		}
	}

	return &ModuleStatusView{Status: StatusInProgress, QuizResult: latest}, nil
}

// EnrollmentProgress returns the enrollment snapshot: the completion set
// mutated by CompleteModule plus the embedded quiz history. A user who
// never enrolled gets an empty snapshot, not an error.
func (s *progressService) EnrollmentProgress(ctx context.Context, userID, courseID string) (*EnrollmentProgressView, error) {
	enrollment, err := s.repo.Enrollment().Get(ctx, nil, userID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &EnrollmentProgressView{
				CompletedModules: []string{},
				QuizResults:      []models.QuizAttemptSummary{},
			}, nil
		}
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}

	view := &EnrollmentProgressView{
		Progress:         enrollment.Progress,
		IsCompleted:      enrollment.IsCompleted,
		CompletedModules: []string(enrollment.CompletedModules),
		QuizResults:      []models.QuizAttemptSummary(enrollment.QuizResults),
	}
	if view.CompletedModules == nil {
		view.CompletedModules = []string{}
	}
	if view.QuizResults == nil {
		view.QuizResults = []models.QuizAttemptSummary{}
	}
	return view, nil
}

// roundPercentage treats an empty denominator as zero progress.
func roundPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
