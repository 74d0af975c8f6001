package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Secret   string `json:"secret" validate:"required"`
	URL      string `json:"url" validate:"required,quiz_url"`
	Strategy string `json:"strategy" validate:"answer_strategy"`
}

func TestValidate_ValidRequest(t *testing.T) {
	v := New()

	err := v.Validate(&sampleRequest{
		Email:  "student@example.com",
		Secret: "s3cret",
		URL:    "https://quiz.example.com/demo",
	})
	assert.NoError(t, err)
}

func TestValidate_MissingFields(t *testing.T) {
	v := New()

	err := v.Validate(&sampleRequest{})
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, verrs, 3)

	fields := make(map[string]string)
	for _, ve := range verrs {
		fields[ve.Field] = ve.Message
	}
	assert.Equal(t, "is required", fields["email"])
	assert.Equal(t, "is required", fields["secret"])
	assert.Equal(t, "is required", fields["url"])
}

func TestValidate_RejectsRelativeURL(t *testing.T) {
	v := New()

	err := v.Validate(&sampleRequest{
		Email:  "student@example.com",
		Secret: "s3cret",
		URL:    "/demo/start",
	})
	require.Error(t, err)

	verrs := err.(ValidationErrors)
	require.Len(t, verrs, 1)
	assert.Equal(t, "url", verrs[0].Field)
	assert.Equal(t, "quiz_url", verrs[0].Rule)
}

func TestValidate_StrategyNames(t *testing.T) {
	v := New()

	base := sampleRequest{
		Email:  "student@example.com",
		Secret: "s3cret",
		URL:    "http://quiz.example.com/demo",
	}

	for _, strategy := range []string{"", "heuristic", "deterministic"} {
		req := base
		req.Strategy = strategy
		assert.NoError(t, v.Validate(&req), "strategy %q", strategy)
	}

	req := base
	req.Strategy = "oracle"
	assert.Error(t, v.Validate(&req))
}

func TestValidationErrorsMessage(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("email", "is required", nil))
	assert.Equal(t, "validation failed: email is required", errs.Error())

	errs = append(errs, *NewValidationError("url", "is required", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}
