package common

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// FieldError is one failed check on a configuration value.
type FieldError struct {
	Field   string
	Value   any
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s (got %q)", e.Field, e.Message, fmt.Sprint(e.Value))
}

// Rule checks a single value. It returns "" when the value is acceptable.
type Rule func(value any) string

// Validator collects field errors so every problem is reported at once.
type Validator struct {
	errs []FieldError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field runs rules against value, stopping at the first failure for that field.
func (v *Validator) Field(name string, value any, rules ...Rule) *Validator {
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			v.errs = append(v.errs, FieldError{Field: name, Value: value, Message: msg})
			break
		}
	}
	return v
}

func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Err returns a CONFIG_ERROR AppError listing every failed field, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	msgs := make([]string, 0, len(v.errs))
	for _, e := range v.errs {
		msgs = append(msgs, e.Error())
	}
	return NewAppError(CodeConfig, strings.Join(msgs, "; "), ErrInvalidInput)
}

func Required(value any) string {
	if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
		return ""
	}
	return "is required"
}

// MinInt requires an int of at least min.
func MinInt(min int) Rule {
	return func(value any) string {
		n, ok := value.(int)
		if !ok {
			return "must be an integer"
		}
		if n < min {
			return fmt.Sprintf("must be at least %d", min)
		}
		return ""
	}
}

// PositiveDuration requires a time.Duration above zero.
func PositiveDuration(value any) string {
	if d, ok := value.(time.Duration); ok && d > 0 {
		return ""
	}
	return "must be a positive duration"
}

// OneOf requires a string from the allowed set.
func OneOf(allowed ...string) Rule {
	return func(value any) string {
		s, _ := value.(string)
		for _, a := range allowed {
			if s == a {
				return ""
			}
		}
		return "must be one of " + strings.Join(allowed, ", ")
	}
}

// AbsoluteURL requires an http(s) URL with a host.
func AbsoluteURL(value any) string {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "must be an absolute http(s) URL"
	}
	return ""
}
