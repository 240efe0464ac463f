package service

import (
	"context"
	"fmt"

	"beststore/internal/domain"
	"beststore/internal/repository"
)

// HomeProductCount is how many newest products the home page shows
const HomeProductCount = 4

// StoreService serves the public storefront pages outside the listing
type StoreService interface {
	Home(ctx context.Context) ([]domain.Product, error)
	Details(ctx context.Context, id int64) (*domain.Product, error)
}

type storeService struct {
	products repository.ProductRepository
}

func NewStoreService(products repository.ProductRepository) StoreService {
	return &storeService{products: products}
}

// Home returns the newest products, newest first
func (s *storeService) Home(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.Latest(ctx, HomeProductCount)
	if err != nil {
		return nil, fmt.Errorf("failed to load home products: %w", err)
	}
	return products, nil
}

func (s *storeService) Details(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}
