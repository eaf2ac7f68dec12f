package backend

import (
	"context"
	"fmt"

	"quitanda/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// favoritesBackend implements the Favorites interface over PostgreSQL.
type favoritesBackend struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewFavoritesBackend creates a new PostgreSQL-backed favorites port.
func NewFavoritesBackend(pool *pgxpool.Pool, logger zerolog.Logger) Favorites {
	return &favoritesBackend{
		pool:   pool,
		logger: logger.With().Str("backend", "favorites").Logger(),
	}
}

// FetchFavorites returns the user's favorited products.
func (b *favoritesBackend) FetchFavorites(ctx context.Context, userID uuid.UUID) ([]model.Product, error) {
	query := `
		SELECT id, nome, preco::text, preco_oferta::text, is_oferta,
		       estoque, imagem_url, categoria_id
		FROM get_my_favorite_products($1)
	`

	rows, err := b.pool.Query(ctx, query, userID)
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to fetch favorites")
		return nil, fmt.Errorf("failed to fetch favorites: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to scan favorite products")
		return nil, err
	}

	return products, nil
}

// ToggleFavorite flips a product's favorited state for the user.
func (b *favoritesBackend) ToggleFavorite(ctx context.Context, userID uuid.UUID, productID int64) error {
	if _, err := b.pool.Exec(ctx, `SELECT toggle_favorite($1, $2)`, userID, productID); err != nil {
		b.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Int64("product_id", productID).
			Msg("failed to toggle favorite")
		return fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return nil
}

// scanProducts scans rows shaped as the standard product column list.
func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var (
			p          model.Product
			price      string
			promoPrice *string
		)
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&price,
			&promoPrice,
			&p.IsPromo,
			&p.Stock,
			&p.ImageURL,
			&p.CategoryID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invalid price for product %d: %w", p.ID, err)
		}
		if promoPrice != nil {
			promo, err := decimal.NewFromString(*promoPrice)
			if err != nil {
				return nil, fmt.Errorf("invalid promo price for product %d: %w", p.ID, err)
			}
			p.PromoPrice = &promo
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}

	return products, nil
}
