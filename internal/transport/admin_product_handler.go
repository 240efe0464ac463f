package transport

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"beststore/internal/catalog"
	"beststore/internal/middleware"
	"beststore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files
const multipartMemory = 1 << 20

// ProductForm is the multipart form used to create and edit products
type ProductForm struct {
	Name        string `form:"name" validate:"required,max=100"`
	Brand       string `form:"brand" validate:"required,max=100"`
	Category    string `form:"category" validate:"required,max=100"`
	Price       string `form:"price" validate:"required,price"`
	Description string `form:"description" validate:"required"`
}

func (f ProductForm) input() (service.ProductInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		return service.ProductInput{}, err
	}
	return service.ProductInput{
		Name:        strings.TrimSpace(f.Name),
		Brand:       strings.TrimSpace(f.Brand),
		Category:    strings.TrimSpace(f.Category),
		Price:       price,
		Description: strings.TrimSpace(f.Description),
	}, nil
}

// AdminProductHandler handles back-office product management
type AdminProductHandler struct {
	listings       ProductLister
	products       service.ProductService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewAdminProductHandler creates a new AdminProductHandler. Request bodies
// larger than maxUploadBytes are rejected.
func NewAdminProductHandler(listings ProductLister, products service.ProductService, maxUploadBytes int64, logger *zap.Logger) *AdminProductHandler {
	return &AdminProductHandler{
		listings:       listings,
		products:       products,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers the admin product routes behind authentication
// and the admin role
func (h *AdminProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin(h.logger))

		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

// ListProducts returns one page of the admin product table
func (h *AdminProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.listings.ListProducts(r.Context(), catalog.ViewAdmin, parseRawQuery(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toListingResponse(result))
}

// GetProduct returns one product for editing
func (h *AdminProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// CreateProduct adds a product from a multipart form. The image is required.
func (h *AdminProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, image, ok := h.readProductForm(w, r)
	if !ok {
		return
	}
	if image != nil {
		defer image.close()
	}

	product, err := h.products.Create(r.Context(), input, image.upload())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(product))
}

// UpdateProduct edits a product. Leaving out image_file keeps the current image.
func (h *AdminProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	input, image, ok := h.readProductForm(w, r)
	if !ok {
		return
	}
	if image != nil {
		defer image.close()
	}

	product, err := h.products.Update(r.Context(), id, input, image.upload())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update product")
		return
	}

	h.logger.Info("Product updated", zap.Int64("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// DeleteProduct removes a product and its image
func (h *AdminProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// readProductForm parses and validates the product form. It writes the error
// response itself and reports false when the request cannot proceed.
func (h *AdminProductHandler) readProductForm(w http.ResponseWriter, r *http.Request) (service.ProductInput, *formImage, bool) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return service.ProductInput{}, nil, false
		}
		h.logger.Debug("Product form parse failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return service.ProductInput{}, nil, false
	}

	form := ProductForm{
		Name:        r.FormValue("name"),
		Brand:       r.FormValue("brand"),
		Category:    r.FormValue("category"),
		Price:       r.FormValue("price"),
		Description: r.FormValue("description"),
	}
	if err := middleware.ValidateRequest(&form); err != nil {
		middleware.RespondWithValidationErrors(w, middleware.FormatValidationErrors(err))
		return service.ProductInput{}, nil, false
	}

	input, err := form.input()
	if err != nil {
		respondFieldError(w, "price", "invalid price")
		return service.ProductInput{}, nil, false
	}

	file, header, err := r.FormFile("image_file")
	if errors.Is(err, http.ErrMissingFile) {
		return input, nil, true
	}
	if err != nil {
		h.logger.Debug("Image upload unreadable", zap.Error(err))
		respondFieldError(w, "image_file", "unreadable upload")
		return service.ProductInput{}, nil, false
	}

	return input, &formImage{name: header.Filename, file: file}, true
}

type formImage struct {
	name string
	file multipart.File
}

func (i *formImage) upload() *service.ImageUpload {
	if i == nil {
		return nil
	}
	return &service.ImageUpload{FileName: i.name, Content: i.file}
}

func (i *formImage) close() {
	i.file.Close()
}
