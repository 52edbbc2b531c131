package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/repositories"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (q *QuizPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	return q.getDB(tx).WithContext(ctx).Create(quiz).Error
}

func (q *QuizPostgreSQL) GetByModule(ctx context.Context, tx *gorm.DB, moduleID string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.getDB(tx).WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_questions.position ASC")
		}).
		First(&quiz, "module_id = ?", moduleID).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) ReplaceForModule(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	return q.getDB(tx).WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		var existing models.Quiz
		err := txn.First(&existing, "module_id = ?", quiz.ModuleID).Error
		switch {
		case err == nil:
			if err := txn.Where("quiz_id = ?", existing.ID).Delete(&models.QuizQuestion{}).Error; err != nil {
				return fmt.Errorf("failed to delete quiz questions: %w", err)
			}
			if err := txn.Delete(&existing).Error; err != nil {
				return fmt.Errorf("failed to delete quiz: %w", err)
			}
		case !repositories.IsNotFoundError(err):
			return err
		}
		return txn.Create(quiz).Error
	})
}

type QuizResultPostgreSQL struct {
	db *gorm.DB
}

func NewQuizResultPostgreSQL(db *gorm.DB) repositories.QuizResultRepository {
	return &QuizResultPostgreSQL{db: db}
}

func (r *QuizResultPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *QuizResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.QuizResult) error {
	return r.getDB(tx).WithContext(ctx).Create(result).Error
}

func (r *QuizResultPostgreSQL) HasPassed(ctx context.Context, tx *gorm.DB, userID, moduleID string) (bool, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.QuizResult{}).
		Where("user_id = ? AND module_id = ? AND passed = ?", userID, moduleID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *QuizResultPostgreSQL) PassedModuleIDs(ctx context.Context, tx *gorm.DB, userID string, moduleIDs []string) ([]string, error) {
	if len(moduleIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.QuizResult{}).
		Distinct("module_id").
		Where("user_id = ? AND passed = ? AND module_id IN ?", userID, true, moduleIDs).
		Pluck("module_id", &ids).Error
	return ids, err
}

func (r *QuizResultPostgreSQL) LatestByUserAndModule(ctx context.Context, tx *gorm.DB, userID, moduleID string) (*models.QuizResult, error) {
	var result models.QuizResult
	if err := r.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("timestamp DESC").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *QuizResultPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.QuizResultFilters) ([]*models.QuizResult, int64, error) {
	db := r.getDB(tx)
	query := db.WithContext(ctx).Model(&models.QuizResult{}).Where("user_id = ?", userID)
	if filters.ModuleID != nil {
		query = query.Where("module_id = ?", *filters.ModuleID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []*models.QuizResult
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	if err := query.Order("timestamp DESC").Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}
