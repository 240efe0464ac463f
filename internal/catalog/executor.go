package catalog

import (
	"context"
	"fmt"

	"beststore/internal/domain"

	"go.uber.org/zap"
)

// ProductQuerier runs filter, sort, count and paginate against persisted products.
// total is the number of products matching spec.Predicates before paging.
type ProductQuerier interface {
	QueryProducts(ctx context.Context, spec Spec) (items []domain.Product, total int, err error)
}

// Executor applies normalized listing queries to product storage
type Executor struct {
	store  ProductQuerier
	logger *zap.Logger
}

// NewExecutor creates a new Executor
func NewExecutor(store ProductQuerier, logger *zap.Logger) *Executor {
	return &Executor{
		store:  store,
		logger: logger,
	}
}

// Execute runs one listing query. A page past the end yields no items, not an error.
func (e *Executor) Execute(ctx context.Context, query ListingQuery) (*ListingResult, error) {
	items, total, err := e.store.QueryProducts(ctx, query.Spec())
	if err != nil {
		e.logger.Error("Catalog query failed",
			zap.String("view", string(query.View)),
			zap.Int("page_index", query.PageIndex),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if items == nil {
		items = []domain.Product{}
	}

	e.logger.Debug("Catalog query executed",
		zap.String("view", string(query.View)),
		zap.Int("page_index", query.PageIndex),
		zap.Int("items", len(items)),
		zap.Int("total", total),
	)

	return &ListingResult{
		Items:      items,
		PageIndex:  query.PageIndex,
		PageSize:   query.PageSize,
		TotalPages: TotalPages(total, query.PageSize),
		TotalCount: total,
		SearchText: query.SearchText,
		Filters:    query.Filters,
		Sort:       query.Sort,
		Column:     query.Order.Column,
		Direction:  query.Order.Direction,
	}, nil
}

// TotalPages is ceil(count / pageSize), and 0 when nothing matched
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize < 1 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}
