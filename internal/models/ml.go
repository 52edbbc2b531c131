package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MlProfile caches the last persona payload returned by the insight service.
// One document per user, overwritten on regeneration.
type MlProfile struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	UserID      string         `json:"userId" gorm:"uniqueIndex;not null;size:36"`
	Payload     datatypes.JSON `json:"payload" gorm:"not null"`
	GeneratedAt time.Time      `json:"generatedAt" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MlProfile) TableName() string {
	return "ml_profiles"
}

func (p *MlProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// MlRecommendation caches the last recommendation payload per user.
type MlRecommendation struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	UserID      string         `json:"userId" gorm:"uniqueIndex;not null;size:36"`
	Payload     datatypes.JSON `json:"payload" gorm:"not null"`
	GeneratedAt time.Time      `json:"generatedAt" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MlRecommendation) TableName() string {
	return "ml_recommendations"
}

func (r *MlRecommendation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
