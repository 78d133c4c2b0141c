package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
	"github.com/imamaffandi/gloam-storefront/internal/httputil"
	"github.com/imamaffandi/gloam-storefront/internal/logger"
)

// RequireAdmin returns middleware that gates a route group behind a valid
// admin session token. The admin username lands in the request context so
// downstream log lines carry it.
func RequireAdmin(sessions *SessionManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("missing authorization header"), log)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid authorization header format"), log)
				return
			}

			claims, err := sessions.Validate(parts[1])
			if err != nil {
				log.WarnContext(r.Context(), "rejected admin session token",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid or expired session"), log)
				return
			}

			ctx := logger.WithAdminUser(r.Context(), claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
