package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

func (e *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	return e.getDB(tx).WithContext(ctx).Create(enrollment).Error
}

func (e *EnrollmentPostgreSQL) Get(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := e.getDB(tx).WithContext(ctx).
		First(&enrollment, "user_id = ? AND course_id = ?", userID, courseID).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	return e.getDB(tx).WithContext(ctx).Save(enrollment).Error
}

func (e *EnrollmentPostgreSQL) AppendQuizAttempt(ctx context.Context, tx *gorm.DB, userID, courseID string, attempt models.QuizAttemptSummary) error {
	return e.getDB(tx).WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		var enrollment models.Enrollment
		err := txn.First(&enrollment, "user_id = ? AND course_id = ?", userID, courseID).Error
		switch {
		case repositories.IsNotFoundError(err):
			enrollment = models.Enrollment{
				UserID:      userID,
				CourseID:    courseID,
				QuizResults: []models.QuizAttemptSummary{attempt},
			}
			return txn.Create(&enrollment).Error
		case err != nil:
			return fmt.Errorf("failed to load enrollment: %w", err)
		}
		enrollment.QuizResults = append(enrollment.QuizResults, attempt)
		return txn.Model(&enrollment).Update("quiz_results", enrollment.QuizResults).Error
	})
}

func (e *EnrollmentPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	if err := e.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

type ActivityPostgreSQL struct {
	db *gorm.DB
}

func NewActivityPostgreSQL(db *gorm.DB) repositories.ActivityRepository {
	return &ActivityPostgreSQL{db: db}
}

func (a *ActivityPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *ActivityPostgreSQL) Create(ctx context.Context, tx *gorm.DB, activity *models.Activity) error {
	return a.getDB(tx).WithContext(ctx).Create(activity).Error
}

func (a *ActivityPostgreSQL) List(ctx context.Context, tx *gorm.DB, userID string, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	query := a.getDB(tx).WithContext(ctx).
		Model(&models.Activity{}).
		Where("user_id = ?", userID)
	query = a.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []*models.Activity
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	if err := query.Order("occurred_at DESC").Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

func (a *ActivityPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ActivityFilters) *gorm.DB {
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.ModuleID != nil {
		query = query.Where("module_id = ?", *filters.ModuleID)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	return query
}

func (a *ActivityPostgreSQL) ListByUserAndModule(ctx context.Context, tx *gorm.DB, userID, moduleID string) ([]*models.Activity, error) {
	var activities []*models.Activity
	if err := a.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("occurred_at DESC").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (a *ActivityPostgreSQL) LatestQuizStart(ctx context.Context, tx *gorm.DB, userID, moduleID, courseID string) (*models.Activity, error) {
	var activity models.Activity
	if err := a.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND module_id = ? AND course_id = ? AND type = ?",
			userID, moduleID, courseID, models.ActivityQuizStart).
		Order("occurred_at DESC").
		First(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func (a *ActivityPostgreSQL) DailyCounts(ctx context.Context, tx *gorm.DB, userID string, from time.Time, courseID *string) ([]repositories.DailyCount, error) {
	query := a.getDB(tx).WithContext(ctx).
		Model(&models.Activity{}).
		// Bucket in UTC regardless of the session timezone; the service
		// zero-fills against the same UTC calendar.
		Select("date_trunc('day', occurred_at AT TIME ZONE 'UTC') AS day, count(*) AS count").
		Where("user_id = ? AND occurred_at >= ?", userID, from)
	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	}

	var counts []repositories.DailyCount
	if err := query.Group("day").Order("day ASC").Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (a *ActivityPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Activity, error) {
	var activities []*models.Activity
	if err := a.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at ASC").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
