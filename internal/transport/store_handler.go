package transport

import (
	"net/http"

	"beststore/internal/catalog"
	"beststore/internal/middleware"
	"beststore/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StoreHandler serves the public storefront
type StoreHandler struct {
	listings ProductLister
	store    service.StoreService
	logger   *zap.Logger
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(listings ProductLister, store service.StoreService, logger *zap.Logger) *StoreHandler {
	return &StoreHandler{
		listings: listings,
		store:    store,
		logger:   logger,
	}
}

// RegisterRoutes registers the public storefront routes
func (h *StoreHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/home", h.Home)
	r.Route("/api/store/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
	})
}

// Home returns the newest products
func (h *StoreHandler) Home(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.Home(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to load home page")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"products": toProductResponses(products),
	})
}

// ListProducts returns one page of the public catalog
func (h *StoreHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.listings.ListProducts(r.Context(), catalog.ViewPublic, parseRawQuery(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toListingResponse(result))
}

// GetProduct returns the details of one product
func (h *StoreHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	product, err := h.store.Details(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}
