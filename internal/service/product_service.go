package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"beststore/internal/clock"
	"beststore/internal/domain"
	"beststore/internal/events"
	"beststore/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrImageRequired = errors.New("the image file is required")
)

const eventPublishTimeout = 5 * time.Second

// ImageStore persists product images and hands back their stored file names
type ImageStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, fileName string) error
}

// ProductInput holds the editable fields of a product
type ProductInput struct {
	Name        string
	Brand       string
	Category    string
	Price       decimal.Decimal
	Description string
}

// ImageUpload is an uploaded image file
type ImageUpload struct {
	FileName string
	Content  io.Reader
}

// ProductService manages the catalog on behalf of administrators
type ProductService interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, input ProductInput, image *ImageUpload) (*domain.Product, error)
	// Update edits a product. A nil image keeps the current one.
	Update(ctx context.Context, id int64, input ProductInput, image *ImageUpload) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	products  repository.ProductRepository
	images    ImageStore
	publisher events.Publisher
	clock     clock.Clock
	logger    *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	products repository.ProductRepository,
	images ImageStore,
	publisher events.Publisher,
	clk clock.Clock,
	logger *zap.Logger,
) ProductService {
	return &productService{
		products:  products,
		images:    images,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, input ProductInput, image *ImageUpload) (*domain.Product, error) {
	if image == nil || image.Content == nil {
		return nil, ErrImageRequired
	}

	fileName, err := s.images.Save(ctx, image.FileName, image.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to save product image: %w", err)
	}

	product := &domain.Product{
		Name:          input.Name,
		Brand:         input.Brand,
		Category:      input.Category,
		Price:         input.Price.Round(2),
		Description:   input.Description,
		ImageFileName: fileName,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.discardImage(ctx, fileName)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created", zap.Int64("product_id", product.ID))
	s.publish(ctx, events.ProductCreated, product)
	return product, nil
}

func (s *productService) Update(ctx context.Context, id int64, input ProductInput, image *ImageUpload) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	oldFileName := product.ImageFileName
	if image != nil && image.Content != nil {
		fileName, err := s.images.Save(ctx, image.FileName, image.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to save product image: %w", err)
		}
		product.ImageFileName = fileName
	}

	product.Name = input.Name
	product.Brand = input.Brand
	product.Category = input.Category
	product.Price = input.Price.Round(2)
	product.Description = input.Description

	if err := s.products.Update(ctx, product); err != nil {
		if product.ImageFileName != oldFileName {
			s.discardImage(ctx, product.ImageFileName)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if product.ImageFileName != oldFileName {
		s.discardImage(ctx, oldFileName)
	}

	s.logger.Info("Product updated", zap.Int64("product_id", product.ID))
	s.publish(ctx, events.ProductUpdated, product)
	return product, nil
}

// Delete removes the product row, then its image
func (s *productService) Delete(ctx context.Context, id int64) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.discardImage(ctx, product.ImageFileName)

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	s.publish(ctx, events.ProductDeleted, product)
	return nil
}

// discardImage removes an image no product refers to; failures only leave an orphaned file
func (s *productService) discardImage(ctx context.Context, fileName string) {
	if err := s.images.Delete(ctx, fileName); err != nil {
		s.logger.Warn("Failed to delete product image", zap.String("file", fileName), zap.Error(err))
	}
}

// publish is best effort: the catalog change is already committed. It runs
// detached from the request so a client disconnect does not drop the event.
func (s *productService) publish(ctx context.Context, eventType events.Type, product *domain.Product) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	event := events.NewProductEvent(eventType, product, s.clock.Now())
	if err := s.publisher.PublishProduct(ctx, event); err != nil {
		s.logger.Warn("Product event not published",
			zap.String("type", string(eventType)),
			zap.Int64("product_id", product.ID),
			zap.Error(err),
		)
	}
}
