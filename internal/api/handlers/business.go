package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/trackflow-app/trackflow/internal/api/middleware"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/service"
	"go.uber.org/zap"
)

type BusinessHandler struct {
	svc    *service.BusinessService
	logger *zap.Logger
}

func NewBusinessHandler(svc *service.BusinessService, logger *zap.Logger) *BusinessHandler {
	return &BusinessHandler{svc: svc, logger: logger}
}

func (h *BusinessHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.BusinessCreate
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := h.svc.Register(r.Context(), user, req)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create business")
		return
	}
	middleware.AnnotateBusiness(r.Context(), b.ID)

	writeJSON(w, http.StatusOK, b)
}

// Mine returns the caller's business.
func (h *BusinessHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	b, err := h.svc.Mine(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get business")
		return
	}
	middleware.AnnotateBusiness(r.Context(), b.ID)

	writeJSON(w, http.StatusOK, b)
}

func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	middleware.AnnotateBusiness(r.Context(), id)

	var req domain.BusinessUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := h.svc.Update(r.Context(), user, id, req)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to update business")
		return
	}

	writeJSON(w, http.StatusOK, b)
}
