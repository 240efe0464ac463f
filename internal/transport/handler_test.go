package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"beststore/internal/catalog"
	"beststore/internal/catalog/catalogtest"
	"beststore/internal/domain"
	"beststore/internal/middleware"
	"beststore/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testStart = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// stubValidator accepts exactly the tokens it knows
type stubValidator map[string]*service.Claims

func (s stubValidator) ValidateToken(tokenString string) (*service.Claims, error) {
	claims, ok := s[tokenString]
	if !ok {
		return nil, service.ErrInvalidToken
	}
	return claims, nil
}

const (
	adminToken  = "admin-token"
	clientToken = "client-token"
)

var (
	adminID  = uuid.MustParse("7d1f0c0e-52b4-4c39-9a0e-6c1a1b2c3d4e")
	clientID = uuid.MustParse("0b9a8f7e-6d5c-4b3a-8f1e-2d3c4b5a6f70")
)

func testValidator() stubValidator {
	return stubValidator{
		adminToken:  {UserID: adminID, Role: domain.RoleAdmin},
		clientToken: {UserID: clientID, Role: domain.RoleClient},
	}
}

// seedCatalog returns a store with n phones named P1..Pn, priced 100, 200, ...
func seedCatalog(n int) *catalogtest.Store {
	store := catalogtest.NewStore()
	for i := 1; i <= n; i++ {
		store.Add(domain.Product{
			ID:            int64(i),
			Name:          fmt.Sprintf("P%d", i),
			Brand:         []string{"Samsung", "Apple", "Xiaomi"}[i%3],
			Category:      "Phones",
			Price:         decimal.NewFromInt(int64(i * 100)),
			Description:   "A phone",
			ImageFileName: fmt.Sprintf("p%d.png", i),
			CreatedAt:     testStart.Add(time.Duration(i) * time.Hour),
		})
	}
	return store
}

func newCatalogService(store *catalogtest.Store) *catalog.Service {
	return catalog.NewService(store, zap.NewNop(),
		catalog.PublicView(catalog.DefaultPublicPageSize, false),
		catalog.AdminView(catalog.DefaultAdminPageSize),
	)
}

func serve(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()
	var resp middleware.ErrorResponse
	decodeBody(t, w, &resp)
	return resp
}

// validationFields lists the fields named in a validation error response
func validationFields(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	var resp struct {
		Error struct {
			Details struct {
				ValidationErrors []middleware.ValidationError `json:"validation_errors"`
			} `json:"details"`
		} `json:"error"`
	}
	decodeBody(t, w, &resp)

	fields := make([]string, 0, len(resp.Error.Details.ValidationErrors))
	for _, ve := range resp.Error.Details.ValidationErrors {
		fields = append(fields, ve.Field)
	}
	return fields
}
