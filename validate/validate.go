// Package validate implements a declarative field-validation engine for flat
// form records. Rules are declared per field and run as an ordered pipeline;
// validation stops at the first violated rule for each field.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Fixed shape checks. Pattern-based rules use caller-supplied expressions;
// these are the built-ins.
var (
	emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegexp = regexp.MustCompile(`^\+?[0-9][0-9\s\-().]{5,18}[0-9]$`)
	urlRegexp   = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
)

// Rule declares the checks applied to a single field. Any combination may be
// set; checks run in a fixed order (required, minLength, maxLength, pattern,
// email, phone, url, custom) and the first failure wins.
type Rule struct {
	// Required rejects empty or whitespace-only values.
	Required bool

	// MinLength and MaxLength bound the value's length in runes.
	// Zero disables the bound.
	MinLength int
	MaxLength int

	// Pattern is a caller-supplied expression the value must match.
	Pattern *regexp.Regexp

	// Email, Phone and URL enable the built-in shape checks.
	Email bool
	Phone bool
	URL   bool

	// Custom is an arbitrary predicate. It returns a failure message, or ""
	// when the value is valid. Its message always wins over defaults.
	Custom func(value string) string

	// Message overrides the default message for any failed built-in check.
	Message string
}

// FieldError reports the first rule a field violated.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Validator holds the declared rules for a form.
type Validator struct {
	rules map[string]Rule
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{rules: make(map[string]Rule)}
}

// AddRule declares the rule for a field, replacing any previous declaration.
func (v *Validator) AddRule(field string, rule Rule) *Validator {
	v.rules[field] = rule
	return v
}

// AddRules declares rules for several fields at once.
func (v *Validator) AddRules(rules map[string]Rule) *Validator {
	for field, rule := range rules {
		v.rules[field] = rule
	}
	return v
}

// ValidateField runs the field's rule pipeline against a value. It returns
// nil when the value passes or no rule is declared for the field.
func (v *Validator) ValidateField(field, value string) *FieldError {
	rule, ok := v.rules[field]
	if !ok {
		return nil
	}
	return check(field, value, rule)
}

// ValidateForm validates every declared field against the given record and
// returns only the fields that failed. An empty result means the form is
// valid. Fields missing from the record are validated as empty strings.
func (v *Validator) ValidateForm(form map[string]string) map[string]FieldError {
	failures := make(map[string]FieldError)
	for field := range v.rules {
		if fe := v.ValidateField(field, form[field]); fe != nil {
			failures[field] = *fe
		}
	}
	return failures
}

func check(field, value string, rule Rule) *FieldError {
	trimmed := strings.TrimSpace(value)

	if rule.Required && trimmed == "" {
		return fail(field, "required", rule, fmt.Sprintf("%s is required", field))
	}

	// Optional and absent: remaining checks do not apply.
	if trimmed == "" {
		return nil
	}

	if rule.MinLength > 0 && len([]rune(value)) < rule.MinLength {
		return fail(field, "minLength", rule,
			fmt.Sprintf("%s must be at least %d characters", field, rule.MinLength))
	}

	if rule.MaxLength > 0 && len([]rune(value)) > rule.MaxLength {
		return fail(field, "maxLength", rule,
			fmt.Sprintf("%s must be no more than %d characters", field, rule.MaxLength))
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		return fail(field, "pattern", rule, fmt.Sprintf("%s format is invalid", field))
	}

	if rule.Email && !emailRegexp.MatchString(value) {
		return fail(field, "email", rule, fmt.Sprintf("%s must be a valid email address", field))
	}

	if rule.Phone && !phoneRegexp.MatchString(value) {
		return fail(field, "phone", rule, fmt.Sprintf("%s must be a valid phone number", field))
	}

	if rule.URL && !urlRegexp.MatchString(value) {
		return fail(field, "url", rule, fmt.Sprintf("%s must be a valid URL", field))
	}

	if rule.Custom != nil {
		if msg := rule.Custom(value); msg != "" {
			return &FieldError{Field: field, Message: msg, Type: "custom"}
		}
	}

	return nil
}

func fail(field, ruleType string, rule Rule, defaultMsg string) *FieldError {
	msg := defaultMsg
	if rule.Message != "" {
		msg = rule.Message
	}
	return &FieldError{Field: field, Message: msg, Type: ruleType}
}
