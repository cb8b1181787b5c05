package repository

import (
	"context"
	"fmt"

	"green-kart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// catalogRepository implements CatalogRepository using PostgreSQL.
type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalogue repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

// GetAll retrieves all products with pagination support.
func (r *catalogRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT id, name, category, price_cents, offer_price_cents, in_stock, created_at
		FROM products
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &p.OfferPriceCents, &p.InStock, &p.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *catalogRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `
		SELECT id, name, category, price_cents, offer_price_cents, in_stock, created_at
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.PriceCents,
		&p.OfferPriceCents,
		&p.InStock,
		&p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// Snapshot retrieves the current offer price and stock status for the
// given product IDs.
func (r *catalogRepository) Snapshot(ctx context.Context, ids []string) (map[string]model.CatalogEntry, error) {
	if len(ids) == 0 {
		return map[string]model.CatalogEntry{}, nil
	}

	query := `
		SELECT id, offer_price_cents, in_stock
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query catalog snapshot")
		return nil, fmt.Errorf("failed to query catalog snapshot: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]model.CatalogEntry, len(ids))
	for rows.Next() {
		var e model.CatalogEntry
		if err := rows.Scan(&e.ProductID, &e.OfferPriceCents, &e.InStock); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan catalog entry")
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		snapshot[e.ProductID] = e
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog snapshot: %w", err)
	}

	r.logger.Debug().
		Int("requested", len(ids)).
		Int("found", len(snapshot)).
		Msg("catalog snapshot retrieved")

	return snapshot, nil
}
