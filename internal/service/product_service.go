package service

import (
	"context"
	"fmt"

	"decor-store/internal/model"
	"decor-store/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves the products matching filter. An empty filter yields the whole catalogue.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Interface("filter", filter).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Bool("filtered", !filter.IsEmpty()).
		Msg("listed products")

	return products, nil
}

// GetByID retrieves a single product with its variants.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.ProductWithVariants, error) {
	if id <= 0 {
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	variants, err := s.productRepo.GetVariants(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get variants")
		return nil, fmt.Errorf("failed to get variants: %w", err)
	}
	if variants == nil {
		variants = []model.ProductVariant{}
	}

	return &model.ProductWithVariants{Product: *product, Variants: variants}, nil
}
