package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PassThreshold is the fixed pass score for every quiz (percent).
const PassThreshold = 70

// QuizOptionCount is the number of options every question carries (A..D).
const QuizOptionCount = 4

type Quiz struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36"`
	ModuleID        string     `json:"moduleId" gorm:"uniqueIndex;not null;size:36"`
	MaximumDuration int        `json:"maximumDuration" gorm:"not null;default:600"` // seconds
	DeadlineAt      *time.Time `json:"deadlineAt"`

	Questions []QuizQuestion `json:"questions" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// QuizQuestion holds one question with its four options. Answer is the
// zero-based index of the correct option and is never serialized to clients.
type QuizQuestion struct {
	ID       string                      `json:"id" gorm:"primaryKey;size:36"`
	QuizID   string                      `json:"-" gorm:"not null;index;size:36"`
	Position int                         `json:"-" gorm:"not null;default:0"`
	Text     string                      `json:"question" gorm:"not null;type:text"`
	Options  datatypes.JSONSlice[string] `json:"options" gorm:"not null"`
	Answer   int                         `json:"-" gorm:"not null"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

func (q *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// QuizResult is the audit record: one row per submission, never overwritten.
type QuizResult struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	UserID         string    `json:"userId" gorm:"not null;index:idx_quiz_results_user_module;size:36"`
	ModuleID       string    `json:"moduleId" gorm:"not null;index:idx_quiz_results_user_module;size:36"`
	QuizID         string    `json:"quizId" gorm:"not null;index;size:36"`
	Score          int       `json:"score" gorm:"not null"`
	TotalQuestions int       `json:"totalQuestions" gorm:"not null"`
	Passed         bool      `json:"passed" gorm:"not null;index"`
	Duration       *int      `json:"duration"` // seconds since quiz_start; nil when no start event
	Timestamp      time.Time `json:"timestamp" gorm:"not null;index"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}

func (r *QuizResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	return nil
}
