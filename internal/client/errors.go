package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnexpectedResponse is returned when a successful response body cannot be
// decoded into the expected shape.
var ErrUnexpectedResponse = errors.New("unexpected response from server")

// APIError is a non-2xx response. Fields holds per-field messages from a 422
// body, keyed by dotted path without the location prefix (e.g. "employee_in.name").
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for f, m := range e.Fields {
		parts = append(parts, f+": "+m)
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// IsNotFound reports whether err is a 404 APIError.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is a 401 or 403 APIError.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseAPIError builds an APIError from a response body. The detail member is
// either a string or a list of validation issues.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		if s := strings.TrimSpace(string(body)); s != "" && len(s) < 512 {
			apiErr.Message = s
		}
		return apiErr
	}

	var msg string
	if err := json.Unmarshal(eb.Detail, &msg); err == nil {
		apiErr.Message = msg
		return apiErr
	}

	var issues []validationIssue
	if err := json.Unmarshal(eb.Detail, &issues); err != nil {
		return apiErr
	}

	apiErr.Fields = make(map[string]string, len(issues))
	for _, issue := range issues {
		field := fieldPath(issue.Loc)
		if _, seen := apiErr.Fields[field]; !seen {
			apiErr.Fields[field] = issue.Msg
		}
	}
	if len(issues) > 0 {
		apiErr.Message = issues[0].Msg
	}
	return apiErr
}

// fieldPath turns ["body", "employee_in", "name"] into "employee_in.name".
func fieldPath(loc []any) string {
	parts := make([]string, 0, len(loc))
	for i, p := range loc {
		s := fmt.Sprint(p)
		if i == 0 && (s == "body" || s == "query" || s == "path") && len(loc) > 1 {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}
