package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringValidation(t *testing.T) {
	assert.False(t, NewStringValidation("   ").Validate(), "blank required value")
	assert.True(t, NewStringValidation("").WithRequired(false).WithMinLength(3).Validate(), "empty optional value")
	assert.False(t, NewStringValidation("ab").WithMinLength(3).Validate())
	assert.True(t, NewStringValidation("José").WithMinLength(4).WithMaxLength(4).Validate(), "length counts runes")
	assert.False(t, NewStringValidation("abcdef").WithMaxLength(5).Validate())
}

func TestPatterns(t *testing.T) {
	cases := []struct {
		name  string
		ok    bool
		check func() bool
	}{
		{"course code with dash", true, func() bool { return NewStringValidation("MATH-101").WithPattern(CompiledPatterns.CourseCode).Validate() }},
		{"course code plain", true, func() bool { return NewStringValidation("CALC2").WithPattern(CompiledPatterns.CourseCode).Validate() }},
		{"lowercase course code", false, func() bool { return NewStringValidation("calc2").WithPattern(CompiledPatterns.CourseCode).Validate() }},
		{"enrollment number", true, func() bool {
			return NewStringValidation("20230001").WithPattern(CompiledPatterns.EnrollmentNumber).Validate()
		}},
		{"short enrollment number", false, func() bool {
			return NewStringValidation("123").WithPattern(CompiledPatterns.EnrollmentNumber).Validate()
		}},
		{"email", true, func() bool { return IsValidEmail("Juan.Perez@Example.edu") }},
		{"bad email", false, func() bool { return IsValidEmail("juan@") }},
		{"person name", true, func() bool { return IsValidPersonName("Ana") }},
		{"short person name", false, func() bool { return IsValidPersonName("Al") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, tc.check())
		})
	}
}

func TestNumericValidation(t *testing.T) {
	assert.True(t, NewNumericValidation(5).WithMin(CreditsMin).WithMax(CreditsMax).Validate())
	assert.False(t, NewNumericValidation(0).WithMin(CreditsMin).Validate())
	assert.False(t, NewNumericValidation(31).WithMax(CreditsMax).Validate())
}
