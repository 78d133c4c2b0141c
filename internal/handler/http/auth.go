package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
	"github.com/imamaffandi/gloam-storefront/internal/auth"
	"github.com/imamaffandi/gloam-storefront/internal/httputil"
	"github.com/imamaffandi/gloam-storefront/internal/validator"
)

// AuthHandler handles the admin login endpoint.
type AuthHandler struct {
	credentials *auth.Credentials
	sessions    *auth.SessionManager
	logger      *slog.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(credentials *auth.Credentials, sessions *auth.SessionManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		sessions:    sessions,
		logger:      logger,
	}
}

// LoginRequest is the login body.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.credentials.Verify(req.Username, req.Password); err != nil {
		h.logger.WarnContext(r.Context(), "rejected login attempt",
			slog.String("username", req.Username),
		)
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	token, err := h.sessions.Issue(req.Username)
	if err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "admin logged in",
		slog.String("username", req.Username),
	)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.sessions.Expiry() / time.Second),
	}})
}
