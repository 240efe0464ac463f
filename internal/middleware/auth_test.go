package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"beststore/internal/domain"
	"beststore/internal/service"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// stubValidator accepts exactly the tokens it knows; "expired" is always expired
type stubValidator map[string]*service.Claims

func (s stubValidator) ValidateToken(tokenString string) (*service.Claims, error) {
	if tokenString == "expired" {
		return nil, service.ErrTokenExpired
	}
	claims, ok := s[tokenString]
	if !ok {
		return nil, service.ErrInvalidToken
	}
	return claims, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// Property: protected endpoints reject requests without a token
func TestProperty_ProtectedEndpointsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without authorization header are rejected", prop.ForAll(
		func(pathSuffix string, method string) bool {
			handler := AuthMiddleware(stubValidator{}, zap.NewNop())(okHandler())

			req := httptest.NewRequest(method, "/api/"+pathSuffix, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "POST", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	handler := AuthMiddleware(stubValidator{}, zap.NewNop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")
}

// Property: a valid token puts the user id and role on the request context
func TestProperty_ValidTokensAllowProcessing(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid tokens allow request processing", prop.ForAll(
		func(token string, role string) bool {
			userID := uuid.New()
			validator := stubValidator{token: {UserID: userID, Role: role}}

			handlerCalled := false
			handler := AuthMiddleware(validator, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true

				ctxUserID, ok1 := GetUserID(r.Context())
				ctxRole, ok2 := GetUserRole(r.Context())
				if !ok1 || !ok2 || ctxUserID != userID || ctxRole != role {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}

				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return handlerCalled && w.Code == http.StatusOK
		},
		gen.RegexMatch(`[A-Za-z0-9._-]{10,40}`),
		gen.OneConstOf(domain.RoleClient, domain.RoleAdmin),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: unknown tokens never reach the handler
func TestProperty_InvalidTokenRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("invalid tokens are rejected", prop.ForAll(
		func(invalidToken string) bool {
			handler := AuthMiddleware(stubValidator{}, zap.NewNop())(okHandler())

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+invalidToken)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: tokens without the Bearer scheme are rejected even when valid
func TestProperty_MissingBearerPrefixRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("tokens without Bearer prefix are rejected", prop.ForAll(
		func(token string) bool {
			validator := stubValidator{token: {UserID: uuid.New(), Role: domain.RoleClient}}
			handler := AuthMiddleware(validator, zap.NewNop())(okHandler())

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", token)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.RegexMatch(`[A-Za-z0-9]{1,40}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddleware_RejectsClaimsWithoutUser(t *testing.T) {
	validator := stubValidator{"anonymous": {Role: domain.RoleClient}}
	handler := AuthMiddleware(validator, zap.NewNop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer anonymous")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	validator := stubValidator{
		"admin-token":  {UserID: uuid.New(), Role: domain.RoleAdmin},
		"client-token": {UserID: uuid.New(), Role: domain.RoleClient},
	}
	handler := AuthMiddleware(validator, zap.NewNop())(RequireAdmin(zap.NewNop())(okHandler()))

	tests := []struct {
		token string
		want  int
	}{
		{"admin-token", http.StatusOK},
		{"client-token", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := httptest.NewRecorder()
	RequireAdmin(zap.NewNop())(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, w.Code, "no role on context")
}
