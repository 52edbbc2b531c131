package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezakmal/insightify/internal/events"
	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/validator"
)

func newActivityService(repo *memoryRepo) ActivityService {
	logger := testLogger()
	return NewActivityService(repo, logger, validator.New(), events.NewActivityPublisher(nil, logger))
}

func TestRecordRejectsInvalidEvents(t *testing.T) {
	repo := newMemoryRepo()
	svc := newActivityService(repo)
	ctx := context.Background()

	_, err := svc.Record(ctx, "", &ActivityRecordRequest{Type: models.ActivityView})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = svc.Record(ctx, "user-1", &ActivityRecordRequest{Type: ""})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = svc.Record(ctx, "user-1", &ActivityRecordRequest{Type: "made_up_event"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestRecordPersistsMetadata(t *testing.T) {
	repo := newMemoryRepo()
	svc := newActivityService(repo)

	activity, err := svc.Record(context.Background(), "user-1", &ActivityRecordRequest{
		Type:     models.ActivityView,
		Metadata: map[string]interface{}{"section": "intro"},
	})
	require.NoError(t, err)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(activity.Metadata, &meta))
	assert.Equal(t, "intro", meta["section"])
}

func TestRecordNeverDeduplicates(t *testing.T) {
	repo := newMemoryRepo()
	svc := newActivityService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Record(ctx, "user-1", &ActivityRecordRequest{Type: models.ActivityView})
		require.NoError(t, err)
	}
	assert.Len(t, repo.activities, 3)
}

func TestQueryClampsPaging(t *testing.T) {
	repo := newMemoryRepo()
	svc := newActivityService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Record(ctx, "user-1", &ActivityRecordRequest{Type: models.ActivityView})
		require.NoError(t, err)
	}

	resp, err := svc.Query(ctx, "user-1", nil, nil, nil, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 50, resp.Pagination.Limit)
	assert.Equal(t, int64(3), resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.TotalPages)

	resp, err = svc.Query(ctx, "user-1", nil, nil, nil, 1, 100000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Pagination.Limit)

	resp, err = svc.Query(ctx, "user-1", nil, nil, nil, 2, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
}

func TestQueryFiltersByTypeAndCourse(t *testing.T) {
	repo := newMemoryRepo()
	svc := newActivityService(repo)
	ctx := context.Background()
	courseID := "course-1"

	_, err := svc.Record(ctx, "user-1", &ActivityRecordRequest{Type: models.ActivityView, CourseID: &courseID})
	require.NoError(t, err)
	_, err = svc.Record(ctx, "user-1", &ActivityRecordRequest{Type: models.ActivityEnroll, CourseID: &courseID})
	require.NoError(t, err)
	_, err = svc.Record(ctx, "user-1", &ActivityRecordRequest{Type: models.ActivityView})
	require.NoError(t, err)

	viewType := models.ActivityView
	resp, err := svc.Query(ctx, "user-1", &courseID, nil, &viewType, 1, 10)
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
}

func TestDailyCountsZeroFilledSeries(t *testing.T) {
	repo := newMemoryRepo()
	svc := newActivityService(repo)
	ctx := context.Background()

	// Buckets are UTC days, so anchor the seeds there too
	now := time.Now().UTC()
	record := func(at time.Time) {
		require.NoError(t, repo.Activity().Create(ctx, nil, &models.Activity{
			UserID:     "user-1",
			Type:       models.ActivityView,
			OccurredAt: at,
		}))
	}
	record(now)
	record(now)
	record(now.AddDate(0, 0, -2))

	series, err := svc.DailyCounts(ctx, "user-1", 3, nil)
	require.NoError(t, err)

	require.Len(t, series, 3)
	assert.Equal(t, int64(1), series[0].Count)
	assert.Equal(t, int64(0), series[1].Count)
	assert.Equal(t, int64(2), series[2].Count)
	assert.Equal(t, now.Format("2006-01-02"), series[2].Date)
}

func TestDailyCountsClampsWindow(t *testing.T) {
	repo := newMemoryRepo()
	svc := newActivityService(repo)
	ctx := context.Background()

	series, err := svc.DailyCounts(ctx, "user-1", 0, nil)
	require.NoError(t, err)
	assert.Len(t, series, 1)

	series, err = svc.DailyCounts(ctx, "user-1", 365, nil)
	require.NoError(t, err)
	assert.Len(t, series, 90)
}

func TestQuizResultsListNewestFirst(t *testing.T) {
	repo := newMemoryRepo()
	svc := newActivityService(repo)
	ctx := context.Background()

	older := &models.QuizResult{UserID: "user-1", ModuleID: "m1", QuizID: "q", Score: 40, Timestamp: time.Now().Add(-time.Hour)}
	newer := &models.QuizResult{UserID: "user-1", ModuleID: "m2", QuizID: "q", Score: 80, Timestamp: time.Now()}
	require.NoError(t, repo.QuizResult().Create(ctx, nil, older))
	require.NoError(t, repo.QuizResult().Create(ctx, nil, newer))

	resp, err := svc.QuizResults(ctx, "user-1", nil, 1, 10)
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, 80, resp.Data[0].Score)

	moduleID := "m1"
	resp, err = svc.QuizResults(ctx, "user-1", &moduleID, 1, 10)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 40, resp.Data[0].Score)
}
