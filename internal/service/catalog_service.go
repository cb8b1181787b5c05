package service

import (
	"context"
	"fmt"

	"green-kart/internal/model"
	"green-kart/internal/repository"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	catalogRepo repository.CatalogRepository
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalogue service.
func NewCatalogService(catalogRepo repository.CatalogRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// GetAll retrieves all products with pagination.
func (s *catalogService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.catalogRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get all products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *catalogService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, nil
	}

	product, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}
