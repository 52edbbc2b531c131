package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezakmal/insightify/internal/models"
)

func TestSignupRequestValidation(t *testing.T) {
	v := New()

	errs := v.Validate(&SignupRequest{
		DisplayName: "Ada Lovelace",
		Email:       "ada@example.com",
		Password:    "hunter22",
	})
	assert.Empty(t, errs)

	errs = v.Validate(&SignupRequest{
		DisplayName: "   ",
		Email:       "not-an-email",
		Password:    "abc",
	})
	require.Len(t, errs, 3)

	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Rule
	}
	assert.Equal(t, "display_name", fields["DisplayName"])
	assert.Equal(t, "email", fields["Email"])
	assert.Equal(t, "min", fields["Password"])
}

func TestActivityTypeRule(t *testing.T) {
	v := New()

	for _, valid := range []models.ActivityType{
		models.ActivityEnroll,
		models.ActivityView,
		models.ActivityModuleStart,
		models.ActivityModuleComplete,
		models.ActivityQuizStart,
		models.ActivityQuizSubmit,
	} {
		errs := v.Validate(&ActivityRecordRequest{Type: valid})
		assert.Empty(t, errs, "type %s should validate", valid)
	}

	errs := v.Validate(&ActivityRecordRequest{Type: "page_scroll"})
	require.Len(t, errs, 1)
	assert.Equal(t, "activity_type", errs[0].Rule)
}

func TestQuizSubmitRequestRequiresCourseAndAnswers(t *testing.T) {
	v := New()

	errs := v.Validate(&QuizSubmitRequest{})
	require.Len(t, errs, 2)

	errs = v.Validate(&QuizSubmitRequest{
		Answers: []QuizAnswerRequest{{QuestionID: "q1", SelectedOption: "A"}},
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "CourseID", errs[0].Field)

	// Answer contents are deliberately not validated here
	errs = v.Validate(&QuizSubmitRequest{
		CourseID: "course-1",
		Answers:  []QuizAnswerRequest{{QuestionID: "ghost", SelectedOption: "Z"}},
	})
	assert.Empty(t, errs)
}

func TestCatalogTitleRule(t *testing.T) {
	v := New()

	errs := v.Validate(&ModuleCreateRequest{Title: "Pointers", Content: "body"})
	assert.Empty(t, errs)

	errs = v.Validate(&ModuleCreateRequest{Title: "  ", Content: "body"})
	require.Len(t, errs, 1)
	assert.Equal(t, "catalog_title", errs[0].Rule)
}

func TestValidationErrorsMessage(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())
	assert.Equal(t, "validation failed: Email must be a valid email address",
		ValidationErrors{{Field: "Email", Message: "must be a valid email address"}}.Error())
	assert.Equal(t, "validation failed: 2 field errors",
		ValidationErrors{{Field: "A"}, {Field: "B"}}.Error())
}
