package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/trackflow-app/trackflow/internal/api/middleware"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/service"
	"go.uber.org/zap"
)

const (
	maxAvatarMemory = 1 << 20
	// multipartOverhead covers boundaries and part headers around the file.
	multipartOverhead = 64 << 10
)

type EmployeeHandler struct {
	svc            *service.EmployeeService
	maxAvatarBytes int64
	logger         *zap.Logger
}

func NewEmployeeHandler(svc *service.EmployeeService, maxAvatarBytes int64, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, maxAvatarBytes: maxAvatarBytes, logger: logger}
}

// Me returns the caller's employee record ("who am I").
func (h *EmployeeHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	e, err := h.svc.Me(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get employee")
		return
	}
	middleware.AnnotateBusiness(r.Context(), e.BusinessID)

	writeJSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) ListByBusiness(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, verrs := parsePage(r)
	businessID, err := uuid.Parse(r.URL.Query().Get("business_id"))
	if err != nil {
		verrs = append(verrs, domain.FieldError{Field: "business_id", Message: "value is not a valid uuid"})
	}
	if len(verrs) > 0 {
		writeValidation(w, "query", verrs)
		return
	}

	list, err := h.svc.ListByBusiness(r.Context(), user, businessID, page)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list employees")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Update edits an employee profile; callers may only edit their own.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidation(w, "path", domain.ValidationErrors{{Field: "id", Message: "value is not a valid uuid"}})
		return
	}

	var req domain.EmployeeUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	e, err := h.svc.Update(r.Context(), user, id, req)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to update employee")
		return
	}
	middleware.AnnotateBusiness(r.Context(), e.BusinessID)

	writeJSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxAvatarMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeValidation(w, "body", domain.ValidationErrors{{Field: "avatar_file", Message: service.ErrAvatarTooLarge.Error()}})
			return
		}
		writeValidation(w, "body", domain.ValidationErrors{{Field: "avatar_file", Message: "field required"}})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("avatar_file")
	if err != nil {
		writeValidation(w, "body", domain.ValidationErrors{{Field: "avatar_file", Message: "field required"}})
		return
	}
	defer file.Close()

	e, err := h.svc.UpdateAvatar(r.Context(), user, header.Filename, file)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to update avatar")
		return
	}

	writeJSON(w, http.StatusOK, e)
}

// GetAvatar serves a stored avatar image. Names are random, so the route is
// public and can back an <img> tag.
func (h *EmployeeHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.AvatarPath(chi.URLParam(r, "name"))
	if err != nil {
		if errors.Is(err, service.ErrAvatarNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get avatar")
		return
	}

	http.ServeFile(w, r, path)
}
