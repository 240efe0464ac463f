package middleware

import (
	"net/http"

	"beststore/internal/domain"

	"go.uber.org/zap"
)

// RequireAdmin lets only admin accounts through; it must run after AuthMiddleware
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]string{domain.RoleAdmin}, logger)
}

// RequireRole answers 403 unless the authenticated role is one of roles
func RequireRole(roles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := GetUserRole(r.Context())
			if _, ok := allowed[role]; ok && role != "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, _ := GetUserID(r.Context())
			logger.Warn("Forbidden",
				zap.String("user_id", userID.String()),
				zap.String("role", role),
				zap.Strings("allowed_roles", roles),
				zap.String("path", r.URL.Path),
			)
			RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}
