package validator

import (
	"github.com/rezakmal/insightify/internal/models"
)

// SignupRequest represents the request structure for account creation
type SignupRequest struct {
	DisplayName string `json:"displayName" validate:"required,display_name"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest represents the request structure for authentication
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EnrollRequest represents the request structure for course enrollment
type EnrollRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

// ModuleActionRequest carries the course context for module start/complete
type ModuleActionRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

// QuizStartRequest carries the optional course context for a quiz attempt
type QuizStartRequest struct {
	CourseID string `json:"courseId"`
}

// QuizAnswerRequest is one submitted answer. Fields are deliberately
// unvalidated here: unknown question ids and malformed option labels are
// ignored during scoring rather than rejected.
type QuizAnswerRequest struct {
	QuestionID     string `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

// QuizSubmitRequest represents the request structure for quiz submission.
// The course context is mandatory so every attempt lands in both the
// audit collection and the enrollment's embedded history.
type QuizSubmitRequest struct {
	CourseID string              `json:"courseId" validate:"required"`
	Answers  []QuizAnswerRequest `json:"answers" validate:"required,min=1"`
}

// CourseModuleRequest attaches a module to a course at an explicit order
type CourseModuleRequest struct {
	ModuleID string `json:"moduleId" validate:"required"`
	Order    int    `json:"order" validate:"min=0"`
}

// CourseCreateRequest represents the request structure for creating courses
type CourseCreateRequest struct {
	Title       string                `json:"title" validate:"required,catalog_title"`
	Description *string               `json:"description" validate:"omitempty,max=1000"`
	Modules     []CourseModuleRequest `json:"modules" validate:"omitempty,dive"`
}

// ModuleCreateRequest represents the request structure for creating modules
type ModuleCreateRequest struct {
	Title   string `json:"title" validate:"required,catalog_title"`
	Content string `json:"content" validate:"required"`
}

// ActivityRecordRequest represents the request structure for logging an event
type ActivityRecordRequest struct {
	CourseID *string                `json:"courseId"`
	ModuleID *string                `json:"moduleId"`
	Type     models.ActivityType    `json:"type" validate:"required,activity_type"`
	Metadata map[string]interface{} `json:"metadata"`
}
