package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/service"
	"go.uber.org/zap"
)

// validationIssue is one entry of a 422 response body.
type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeValidation reports field errors located in source ("body" or "query").
// Dotted field names become nested loc paths.
func writeValidation(w http.ResponseWriter, source string, errs domain.ValidationErrors) {
	issues := make([]validationIssue, 0, len(errs))
	for _, fe := range errs {
		loc := append([]string{source}, strings.Split(fe.Field, ".")...)
		issues = append(issues, validationIssue{Loc: loc, Msg: fe.Message, Type: "value_error"})
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
}

// maxJSONBody bounds every JSON request body.
const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeValidation(w, "body", domain.ValidationErrors{{Field: "body", Message: "invalid JSON body"}})
		return false
	}
	return true
}

var serviceErrorStatus = []struct {
	err    error
	status int
}{
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrInviteInvalid, http.StatusUnauthorized},
	{service.ErrInviteExpired, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrInvalidCredentials, http.StatusBadRequest},
	{service.ErrInactiveUser, http.StatusBadRequest},
	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrAlreadyRegistered, http.StatusConflict},
	{service.ErrBusinessNotFound, http.StatusNotFound},
	{service.ErrEmployeeNotFound, http.StatusNotFound},
	{service.ErrIndustryNotFound, http.StatusNotFound},
	{service.ErrAvatarNotFound, http.StatusNotFound},
}

// writeServiceError maps a service error onto the HTTP response. Unknown
// errors are logged and reported as 500 with a generic message.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		writeValidation(w, "body", verrs)
		return
	}
	for _, m := range serviceErrorStatus {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.err.Error())
			return
		}
	}
	logger.Error(fallback, zap.Error(err))
	writeError(w, http.StatusInternalServerError, fallback)
}

// parsePage reads skip and limit query parameters.
func parsePage(r *http.Request) (domain.Page, domain.ValidationErrors) {
	var page domain.Page
	var verrs domain.ValidationErrors
	q := r.URL.Query()
	if s := q.Get("skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			verrs = append(verrs, domain.FieldError{Field: "skip", Message: "value is not a valid non-negative integer"})
		}
		page.Skip = n
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			verrs = append(verrs, domain.FieldError{Field: "limit", Message: "value is not a valid positive integer"})
		}
		page.Limit = n
	}
	return page, verrs
}
