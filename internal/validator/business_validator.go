package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rezakmal/insightify/internal/models"
)

// BusinessValidator handles request and business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates a struct against its tag rules
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errors = append(errors, ValidationError{
				Field:   fieldErr.Field(),
				Message: bv.getErrorMessage(fieldErr),
				Value:   fieldErr.Value(),
				Rule:    fieldErr.Tag(),
			})
		}
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Display name validation (1-100 characters, non-blank)
	bv.validate.RegisterValidation("display_name", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return len(name) >= 1 && len(name) <= 100
	})

	// Course/module title validation (1-200 characters)
	bv.validate.RegisterValidation("catalog_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Activity type validation
	bv.validate.RegisterValidation("activity_type", func(fl validator.FieldLevel) bool {
		eventType := models.ActivityType(fl.Field().String())
		validTypes := []models.ActivityType{
			models.ActivityEnroll,
			models.ActivityView,
			models.ActivityModuleStart,
			models.ActivityModuleComplete,
			models.ActivityQuizStart,
			models.ActivityQuizSubmit,
		}
		for _, vt := range validTypes {
			if eventType == vt {
				return true
			}
		}
		return false
	})
}

func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "display_name":
		return "must be between 1 and 100 characters"
	case "catalog_title":
		return "must be between 1 and 200 characters"
	case "activity_type":
		return "is not a recognized event type"
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
