package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/datatypes"

	"github.com/rezakmal/insightify/internal/cache"
	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/repositories"
)

type mlService struct {
	repo   repositories.Repository
	logger *slog.Logger
	caches *cache.CacheManager
	client *resty.Client
}

// NewMlService wires the insight gateway. The resty client arrives
// preconfigured with the service base URL and request timeout.
func NewMlService(repo repositories.Repository, logger *slog.Logger, caches *cache.CacheManager, client *resty.Client) MlService {
	return &mlService{
		repo:   repo,
		logger: logger,
		caches: caches,
		client: client,
	}
}

// ===== PAYLOAD ASSEMBLY =====

type activityPoint struct {
	Type       models.ActivityType `json:"type"`
	CourseID   *string             `json:"courseId"`
	ModuleID   *string             `json:"moduleId"`
	OccurredAt time.Time           `json:"occurredAt"`
}

type quizPoint struct {
	ModuleID  string    `json:"moduleId"`
	Score     int       `json:"score"`
	Passed    bool      `json:"passed"`
	Duration  *int      `json:"duration"`
	Timestamp time.Time `json:"timestamp"`
}

type enrollmentPoint struct {
	CourseID         string `json:"courseId"`
	Progress         int    `json:"progress"`
	IsCompleted      bool   `json:"isCompleted"`
	CompletedModules int    `json:"completedModules"`
}

type profilePayload struct {
	UserID      string            `json:"userId"`
	Activities  []activityPoint   `json:"activities"`
	QuizResults []quizPoint       `json:"quizResults"`
	Enrollments []enrollmentPoint `json:"enrollments"`
}

func (s *mlService) buildRawPayload(ctx context.Context, userID string) (*profilePayload, error) {
	payload := &profilePayload{
		UserID:      userID,
		Activities:  []activityPoint{},
		QuizResults: []quizPoint{},
		Enrollments: []enrollmentPoint{},
	}

	activities, err := s.repo.Activity().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	for _, a := range activities {
		payload.Activities = append(payload.Activities, activityPoint{
			Type:       a.Type,
			CourseID:   a.CourseID,
			ModuleID:   a.ModuleID,
			OccurredAt: a.OccurredAt,
		})
	}

	results, _, err := s.repo.QuizResult().ListByUser(ctx, nil, userID, repositories.QuizResultFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz results: %w", err)
	}
	for _, r := range results {
		payload.QuizResults = append(payload.QuizResults, quizPoint{
			ModuleID:  r.ModuleID,
			Score:     r.Score,
			Passed:    r.Passed,
			Duration:  r.Duration,
			Timestamp: r.Timestamp,
		})
	}

	enrollments, err := s.repo.Enrollment().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %w", err)
	}
	for _, e := range enrollments {
		payload.Enrollments = append(payload.Enrollments, enrollmentPoint{
			CourseID:         e.CourseID,
			Progress:         e.Progress,
			IsCompleted:      e.IsCompleted,
			CompletedModules: len(e.CompletedModules),
		})
	}

	return payload, nil
}

// ===== GENERATION =====

func (s *mlService) GenerateProfile(ctx context.Context, userID string) (*models.MlProfile, error) {
	payload, err := s.buildRawPayload(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/profile/generate")
	if err != nil {
		return nil, mapTransportError(err)
	}
	if resp.IsError() {
		return nil, &UpstreamError{Status: resp.StatusCode(), Detail: truncateDetail(resp.Body())}
	}

	profile := &models.MlProfile{
		UserID:      userID,
		Payload:     datatypes.JSON(resp.Body()),
		GeneratedAt: time.Now(),
	}
	if err := s.repo.Ml().UpsertProfile(ctx, nil, profile); err != nil {
		return nil, fmt.Errorf("failed to store profile: %w", err)
	}

	// A regenerated profile makes the cached recommendation stale; drop
	// both entries before writing the fresh profile through.
	s.caches.InvalidateUserMl(ctx, userID)

	if err := s.caches.Profile.Set(ctx, userID, profile, cache.ProfileCacheConfig.TTL); err != nil {
		s.logger.Warn("Failed to cache profile", "error", err, "user_id", userID)
	}

	s.logger.Info("Learning profile generated", "user_id", userID)

	return profile, nil
}

// GenerateRecommendations maps the cached profile's cluster assignment
// through the static insight table.
func (s *mlService) GenerateRecommendations(ctx context.Context, userID string) (*models.MlRecommendation, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotGenerated
	}

	var doc struct {
		Cluster interface{} `json:"cluster"`
	}
	if err := json.Unmarshal(profile.Payload, &doc); err != nil || doc.Cluster == nil {
		return nil, ErrProfileNotGenerated
	}

	insight := clusterInsightFor(fmt.Sprintf("%v", doc.Cluster))
	body, err := json.Marshal(insight)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal insight: %w", err)
	}

	rec := &models.MlRecommendation{
		UserID:      userID,
		Payload:     datatypes.JSON(body),
		GeneratedAt: time.Now(),
	}
	if err := s.repo.Ml().UpsertRecommendation(ctx, nil, rec); err != nil {
		return nil, fmt.Errorf("failed to store recommendation: %w", err)
	}

	if err := s.caches.Recommendation.Set(ctx, userID, rec, cache.RecommendationCacheConfig.TTL); err != nil {
		s.logger.Warn("Failed to cache recommendation", "error", err, "user_id", userID)
	}

	return rec, nil
}

// ===== CACHE READS =====

func (s *mlService) GetProfile(ctx context.Context, userID string) (*models.MlProfile, error) {
	var cached models.MlProfile
	if err := s.caches.Profile.Get(ctx, userID, &cached); err == nil {
		return &cached, nil
	}

	profile, err := s.repo.Ml().GetProfile(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.caches.Profile.Set(ctx, userID, profile, cache.ProfileCacheConfig.TTL); err != nil {
		s.logger.Warn("Failed to cache profile", "error", err, "user_id", userID)
	}

	return profile, nil
}

func (s *mlService) GetRecommendations(ctx context.Context, userID string) (*models.MlRecommendation, error) {
	var cached models.MlRecommendation
	if err := s.caches.Recommendation.Get(ctx, userID, &cached); err == nil {
		return &cached, nil
	}

	rec, err := s.repo.Ml().GetRecommendation(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load recommendation: %w", err)
	}

	if err := s.caches.Recommendation.Set(ctx, userID, rec, cache.RecommendationCacheConfig.TTL); err != nil {
		s.logger.Warn("Failed to cache recommendation", "error", err, "user_id", userID)
	}

	return rec, nil
}

// ===== ERROR MAPPING =====

// mapTransportError distinguishes deadline expiry from a service that
// cannot be reached at all.
func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrMlTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return ErrMlTimeout
	}
	return ErrMlUnreachable
}

func truncateDetail(body []byte) string {
	const maxDetail = 512
	if len(body) > maxDetail {
		body = body[:maxDetail]
	}
	return string(body)
}
