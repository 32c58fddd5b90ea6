package handlers

import (
	"net/http"

	"github.com/trackflow-app/trackflow/internal/api/middleware"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/service"
	"go.uber.org/zap"
)

type IndustryHandler struct {
	svc    *service.IndustryService
	logger *zap.Logger
}

func NewIndustryHandler(svc *service.IndustryService, logger *zap.Logger) *IndustryHandler {
	return &IndustryHandler{svc: svc, logger: logger}
}

func (h *IndustryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, verrs := parsePage(r)
	if len(verrs) > 0 {
		writeValidation(w, "query", verrs)
		return
	}

	list, err := h.svc.List(r.Context(), page)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list business industries")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *IndustryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req domain.BusinessIndustryCreate
	if !decodeJSON(w, r, &req) {
		return
	}

	industry, err := h.svc.Create(r.Context(), user, req)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create business industry")
		return
	}

	writeJSON(w, http.StatusOK, industry)
}
