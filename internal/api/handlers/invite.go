package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/trackflow-app/trackflow/internal/api/middleware"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/service"
	"go.uber.org/zap"
)

type InviteHandler struct {
	invites *service.InviteService
	logger  *zap.Logger
}

func NewInviteHandler(invites *service.InviteService, logger *zap.Logger) *InviteHandler {
	return &InviteHandler{invites: invites, logger: logger}
}

// Invite issues an invitation. email and business_id arrive as query
// parameters.
func (h *InviteHandler) Invite(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	req := domain.InviteRequest{Email: q.Get("email")}
	if raw := q.Get("business_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeValidation(w, "query", domain.ValidationErrors{{Field: "business_id", Message: "value is not a valid uuid"}})
			return
		}
		req.BusinessID = id
	}
	if err := req.Validate(); err != nil {
		writeValidation(w, "query", err.(domain.ValidationErrors))
		return
	}

	issued, err := h.invites.Issue(r.Context(), user, req)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to send invitation")
		return
	}

	writeJSON(w, http.StatusOK, issued)
}

// RegisterByInvitation redeems a token and returns the new employee.
func (h *InviteHandler) RegisterByInvitation(w http.ResponseWriter, r *http.Request) {
	var req domain.InviteAcceptance
	if !decodeJSON(w, r, &req) {
		return
	}

	e, err := h.invites.Accept(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to register by invitation")
		return
	}

	writeJSON(w, http.StatusOK, e)
}
