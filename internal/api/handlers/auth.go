package handlers

import (
	"net/http"

	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc    *service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.UserCreate
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to sign up")
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// Login exchanges form-encoded username (email) and password for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	var verrs domain.ValidationErrors
	if username == "" {
		verrs = append(verrs, domain.FieldError{Field: "username", Message: "field required"})
	}
	if password == "" {
		verrs = append(verrs, domain.FieldError{Field: "password", Message: "field required"})
	}
	if len(verrs) > 0 {
		writeValidation(w, "body", verrs)
		return
	}

	token, err := h.svc.Login(r.Context(), username, password)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, token)
}
