package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Time      string `validate:"omitempty,clock"`
	Date      string `validate:"omitempty,isodate"`
	BloodType string `validate:"omitempty,bloodtype"`
	Status    string `validate:"omitempty,apptstatus"`
}

func newValidate(t *testing.T) *validator.Validate {
	v := validator.New()
	require.NoError(t, Register(v))
	return v
}

func TestCustomTags_Valid(t *testing.T) {
	v := newValidate(t)
	assert.NoError(t, v.Struct(sample{Time: "14:30", Date: "2025-06-01", BloodType: "ab+", Status: "completed"}))
	assert.NoError(t, v.Struct(sample{Time: "00:00:59"}))
	assert.NoError(t, v.Struct(sample{}))
}

func TestCustomTags_Invalid(t *testing.T) {
	v := newValidate(t)
	cases := []sample{
		{Time: "24:00"},
		{Time: "2:30 PM"},
		{Date: "2025-13-01"},
		{BloodType: "C+"},
		{Status: "pending"},
	}
	for _, c := range cases {
		assert.Error(t, v.Struct(c), "%+v", c)
	}
}
