package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityEnroll         ActivityType = "enroll"
	ActivityView           ActivityType = "view"
	ActivityModuleStart    ActivityType = "module_start"
	ActivityModuleComplete ActivityType = "module_complete"
	ActivityQuizStart      ActivityType = "quiz_start"
	ActivityQuizSubmit     ActivityType = "quiz_submit"
)

// Activity is an append-only learner event. Rows are never updated or
// deduplicated.
type Activity struct {
	ID         string         `json:"id" gorm:"primaryKey;size:36"`
	UserID     string         `json:"user" gorm:"not null;index:idx_activities_user_occurred;size:36"`
	CourseID   *string        `json:"course,omitempty" gorm:"index;size:36"`
	ModuleID   *string        `json:"module,omitempty" gorm:"index;size:36"`
	Type       ActivityType   `json:"type" gorm:"not null;index;size:30"`
	OccurredAt time.Time      `json:"occurredAt" gorm:"not null;index:idx_activities_user_occurred,sort:desc"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
}

func (Activity) TableName() string {
	return "activities"
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = time.Now()
	}
	return nil
}
