package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizAttemptSummary is the embedded per-attempt log kept on the enrollment.
// QuizResult rows are the detailed audit trail; both are appended on every
// submission.
type QuizAttemptSummary struct {
	ModuleID  string    `json:"moduleId"`
	Correct   int       `json:"correct"`
	Total     int       `json:"total"`
	Score     int       `json:"score"`
	Passed    bool      `json:"passed"`
	Timestamp time.Time `json:"timestamp"`
}

// Enrollment is the authoritative per-(user,course) progress record.
type Enrollment struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	UserID   string `json:"userId" gorm:"not null;uniqueIndex:idx_enrollments_user_course;size:36"`
	CourseID string `json:"courseId" gorm:"not null;uniqueIndex:idx_enrollments_user_course;size:36"`

	CompletedModules datatypes.JSONSlice[string]             `json:"completedModules"`
	Progress         int                                     `json:"progress" gorm:"not null;default:0"`
	IsCompleted      bool                                    `json:"isCompleted" gorm:"not null;default:false"`
	QuizResults      datatypes.JSONSlice[QuizAttemptSummary] `json:"quizResults"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// HasCompleted reports whether a module id is already in the completed set.
func (e *Enrollment) HasCompleted(moduleID string) bool {
	for _, id := range e.CompletedModules {
		if id == moduleID {
			return true
		}
	}
	return false
}
