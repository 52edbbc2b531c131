package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rezakmal/insightify/internal/models"
	"github.com/rezakmal/insightify/internal/repositories"
)

type MlPostgreSQL struct {
	db *gorm.DB
}

func NewMlPostgreSQL(db *gorm.DB) repositories.MlRepository {
	return &MlPostgreSQL{db: db}
}

func (m *MlPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return m.db
}

func (m *MlPostgreSQL) UpsertProfile(ctx context.Context, tx *gorm.DB, profile *models.MlProfile) error {
	return m.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "generated_at", "updated_at"}),
		}).
		Create(profile).Error
}

func (m *MlPostgreSQL) GetProfile(ctx context.Context, tx *gorm.DB, userID string) (*models.MlProfile, error) {
	var profile models.MlProfile
	if err := m.getDB(tx).WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (m *MlPostgreSQL) UpsertRecommendation(ctx context.Context, tx *gorm.DB, rec *models.MlRecommendation) error {
	return m.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "generated_at", "updated_at"}),
		}).
		Create(rec).Error
}

func (m *MlPostgreSQL) GetRecommendation(ctx context.Context, tx *gorm.DB, userID string) (*models.MlRecommendation, error) {
	var rec models.MlRecommendation
	if err := m.getDB(tx).WithContext(ctx).First(&rec, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
