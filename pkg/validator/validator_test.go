package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	MRN    string `json:"mrn" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
	Status string `json:"status" validate:"omitempty,oneof=pending confirmed"`
}

func TestValidateReportsJSONNames(t *testing.T) {
	v := New()

	err := v.Validate(&sample{Email: "nope", Status: "weird"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "mrn is required")
		assert.Contains(t, err.Error(), "email must be a valid email")
		assert.Contains(t, err.Error(), "status must be one of: pending, confirmed")
	}

	assert.NoError(t, v.Validate(&sample{MRN: "M1"}))
}

func TestValidateField(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateField("password", "long-enough", "min=8"))
	err := v.ValidateField("password", "short", "min=8")
	if assert.Error(t, err) {
		assert.Equal(t, "password must be at least 8 characters long", err.Error())
	}
}
