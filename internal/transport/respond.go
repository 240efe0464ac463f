package transport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"beststore/internal/catalog"
	"beststore/internal/domain"
	"beststore/internal/middleware"
	"beststore/internal/repository"
	"beststore/internal/service"
	"beststore/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ImagePathPrefix is where uploaded product images are served from
const ImagePathPrefix = "/products/"

// ProductResponse is a product as returned to clients
type ProductResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Description   string          `json:"description"`
	ImageFileName string          `json:"image_file_name"`
	ImageURL      string          `json:"image_url"`
	CreatedAt     string          `json:"created_at"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		Category:      p.Category,
		Price:         p.Price,
		Description:   p.Description,
		ImageFileName: p.ImageFileName,
		ImageURL:      ImagePathPrefix + p.ImageFileName,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toProductResponses(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out
}

// decodeJSON decodes and validates a JSON body, writing the error response
// itself when it fails
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, logger *zap.Logger) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// productIDParam reads the {id} route parameter. Ids that cannot exist are
// reported as not found.
func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		middleware.RespondWithError(w, http.StatusNotFound, repository.ErrProductNotFound.Error())
		return 0, false
	}
	return id, true
}

// respondServiceError maps domain errors to HTTP statuses. Anything
// unrecognized is logged and reported as 500 with the fallback message.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, catalog.ErrStorageUnavailable):
		middleware.RespondWithError(w, http.StatusServiceUnavailable, catalog.ErrStorageUnavailable.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, repository.ErrProductNotFound.Error())
	case errors.Is(err, repository.ErrUserNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, repository.ErrUserNotFound.Error())
	case errors.Is(err, repository.ErrUserAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, repository.ErrUserAlreadyExists.Error())
	case errors.Is(err, service.ErrImageRequired):
		respondFieldError(w, "image_file", service.ErrImageRequired.Error())
	case errors.Is(err, storage.ErrNotAnImage), errors.Is(err, storage.ErrInvalidFileName):
		respondFieldError(w, "image_file", storage.ErrNotAnImage.Error())
	case errors.Is(err, service.ErrIncorrectPassword):
		respondFieldError(w, "current_password", service.ErrIncorrectPassword.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		middleware.RespondWithError(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrTokenExpired):
		middleware.RespondWithError(w, http.StatusUnauthorized, "token expired")
	case errors.Is(err, service.ErrInvalidToken):
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid token")
	default:
		logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func respondFieldError(w http.ResponseWriter, field, message string) {
	middleware.RespondWithValidationErrors(w, []middleware.ValidationError{{Field: field, Message: message}})
}
