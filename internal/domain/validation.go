package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// FieldError is a validation failure bound to one request field. Nested fields
// use dotted paths, e.g. "employee_in.name".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects field errors for a single request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the first message reported for each field.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

// Err returns nil when nothing was collected so callers can return it directly.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) add(field, msg string) {
	*v = append(*v, FieldError{Field: field, Message: msg})
}

func (v *ValidationErrors) requireText(field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "field required")
		return
	}
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("ensure this value has at most %d characters", max))
	}
}

func (v *ValidationErrors) optionalText(field string, value *string, max int) {
	if value == nil {
		return
	}
	if utf8.RuneCountInString(*value) > max {
		v.add(field, fmt.Sprintf("ensure this value has at most %d characters", max))
	}
}

func (v *ValidationErrors) email(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "field required")
		return
	}
	if !ValidEmail(value) {
		v.add(field, "value is not a valid email address")
	}
}

// ValidEmail reports whether s is a bare address such as "jane@acme.io".
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

func prefixed(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "." + field
}
