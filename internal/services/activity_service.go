package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rezakmal/insightify/internal/events"
	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/repositories"
	"github.com/rezakmal/insightify/internal/validator"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	maxDailyWindow  = 90
)

type activityService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher *events.ActivityPublisher
}

func NewActivityService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher *events.ActivityPublisher) ActivityService {
	return &activityService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Record appends one event to the ledger and fans it out on the activity
// topic. Appends are never deduplicated.
func (s *activityService) Record(ctx context.Context, userID string, req *ActivityRecordRequest) (*models.Activity, error) {
	if userID == "" || req.Type == "" {
		return nil, ErrInvalidEvent
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEvent, errs.Error())
	}

	activity := &models.Activity{
		UserID:   userID,
		CourseID: req.CourseID,
		ModuleID: req.ModuleID,
		Type:     req.Type,
	}
	if req.Metadata != nil {
		payload, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		activity.Metadata = payload
	}

	if err := s.repo.Activity().Create(ctx, nil, activity); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	s.publisher.Publish(ctx, activity)

	return activity, nil
}

func (s *activityService) Query(ctx context.Context, userID string, courseID, moduleID *string, eventType *models.ActivityType, page, limit int) (*ActivityListResponse, error) {
	page, limit = clampPage(page, limit)

	filters := repositories.ActivityFilters{
		CourseID: courseID,
		ModuleID: moduleID,
		Type:     eventType,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	items, total, err := s.repo.Activity().List(ctx, nil, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}

	return &ActivityListResponse{
		Data:       items,
		Pagination: buildPagination(page, limit, total),
	}, nil
}

// DailyCounts emits one bucket per UTC calendar day, zero-filled so the
// series length always equals the clamped window. UTC on both sides
// keeps the aggregation independent of the database session timezone.
func (s *activityService) DailyCounts(ctx context.Context, userID string, days int, courseID *string) ([]DailyCountView, error) {
	if days < 1 {
		days = 1
	}
	if days > maxDailyWindow {
		days = maxDailyWindow
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -(days - 1))

	counts, err := s.repo.Activity().DailyCounts(ctx, nil, userID, from, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activities: %w", err)
	}

	byDay := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDay[c.Day.Format("2006-01-02")] = c.Count
	}

	series := make([]DailyCountView, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, DailyCountView{Date: date, Count: byDay[date]})
	}

	return series, nil
}

func (s *activityService) QuizResults(ctx context.Context, userID string, moduleID *string, page, limit int) (*QuizResultListResponse, error) {
	page, limit = clampPage(page, limit)

	filters := repositories.QuizResultFilters{
		ModuleID: moduleID,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	items, total, err := s.repo.QuizResult().ListByUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz results: %w", err)
	}

	return &QuizResultListResponse{
		Data:       items,
		Pagination: buildPagination(page, limit, total),
	}, nil
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func buildPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
