package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation rule patterns
var (
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Enrollment numbers are 6 to 12 digits
	EnrollmentNumberPattern = `^\d{6,12}$`

	// Course codes are uppercase letters, digits and dashes, e.g. MATH-101 or CALC2
	CourseCodePattern = `^[A-Z0-9][A-Z0-9\-]{1,19}$`

	// Person names
	NameMinLength = 3
	NameMaxLength = 50

	// Course names
	CourseNameMaxLength = 100

	// Course credits
	CreditsMin = 1
	CreditsMax = 30
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email            *regexp.Regexp
	EnrollmentNumber *regexp.Regexp
	CourseCode       *regexp.Regexp
}{
	Email:            regexp.MustCompile(EmailPattern),
	EnrollmentNumber: regexp.MustCompile(EnrollmentNumberPattern),
	CourseCode:       regexp.MustCompile(CourseCodePattern),
}

// StringValidation validates a single string value
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation. Surrounding whitespace is ignored.
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    strings.TrimSpace(value),
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && v.Value == "" {
		return false
	}

	// Skip other validations for empty optional values
	if !v.Required && v.Value == "" {
		return true
	}

	length := utf8.RuneCountInString(v.Value)
	if v.MinLen > 0 && length < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && length > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}

// NumericValidation validates an integer value against bounds
type NumericValidation struct {
	Value int
	Min   int
	Max   int
}

// NewNumericValidation creates a new numeric validation
func NewNumericValidation(value int) *NumericValidation {
	return &NumericValidation{Value: value}
}

// WithMin sets minimum value
func (v *NumericValidation) WithMin(min int) *NumericValidation {
	v.Min = min
	return v
}

// WithMax sets maximum value
func (v *NumericValidation) WithMax(max int) *NumericValidation {
	v.Max = max
	return v
}

// Validate performs validation
func (v *NumericValidation) Validate() bool {
	if v.Min != 0 && v.Value < v.Min {
		return false
	}
	if v.Max != 0 && v.Value > v.Max {
		return false
	}
	return true
}

// IsValidEmail reports whether email matches the accepted pattern (case-insensitive)
func IsValidEmail(email string) bool {
	return NewStringValidation(strings.ToLower(email)).WithPattern(CompiledPatterns.Email).Validate()
}

// IsValidPersonName reports whether name has an accepted length
func IsValidPersonName(name string) bool {
	return NewStringValidation(name).WithMinLength(NameMinLength).WithMaxLength(NameMaxLength).Validate()
}
