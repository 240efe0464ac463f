package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Service is the single entry point for product listings across views
type Service struct {
	builders map[View]*Builder
	executor *Executor
}

// NewService creates a listing service serving the given views
func NewService(store ProductQuerier, logger *zap.Logger, views ...ViewConfig) *Service {
	builders := make(map[View]*Builder, len(views))
	for _, view := range views {
		builders[view.View] = NewBuilder(view)
	}

	return &Service{
		builders: builders,
		executor: NewExecutor(store, logger),
	}
}

// ListProducts normalizes raw parameters for the view and runs the listing
func (s *Service) ListProducts(ctx context.Context, view View, raw RawQuery) (*ListingResult, error) {
	builder, ok := s.builders[view]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}

	return s.executor.Execute(ctx, builder.Build(raw))
}
