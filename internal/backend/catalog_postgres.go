package backend

import (
	"context"
	"fmt"

	"quitanda/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// catalogBackend implements the Catalog interface over PostgreSQL.
type catalogBackend struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogBackend creates a new PostgreSQL-backed catalog port.
func NewCatalogBackend(pool *pgxpool.Pool, logger zerolog.Logger) Catalog {
	return &catalogBackend{
		pool:   pool,
		logger: logger.With().Str("backend", "catalog").Logger(),
	}
}

const productColumns = `id, nome, preco::text, preco_oferta::text, is_oferta,
	estoque, imagem_url, categoria_id`

// Promotions returns products currently flagged as on promotion.
func (b *catalogBackend) Promotions(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM produto WHERE is_oferta = true ORDER BY id`

	rows, err := b.pool.Query(ctx, query)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to query promotions")
		return nil, fmt.Errorf("failed to query promotions: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// ProductsByCategory returns the products in a category.
func (b *catalogBackend) ProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM produto WHERE categoria_id = $1 ORDER BY id`

	rows, err := b.pool.Query(ctx, query, categoryID)
	if err != nil {
		b.logger.Error().Err(err).Int64("category_id", categoryID).Msg("failed to query products by category")
		return nil, fmt.Errorf("failed to query products by category: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Categories returns all categories.
func (b *catalogBackend) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := b.pool.Query(ctx, `SELECT id, nome, imagem_url FROM categoria ORDER BY id`)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ImageURL); err != nil {
			b.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		b.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
