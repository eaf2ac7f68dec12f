package backend

import (
	"context"
	"fmt"

	"quitanda/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartBackend implements the Cart interface over PostgreSQL. The
// procedure-style operations call SQL functions of the same names the
// remote backend exposes.
type cartBackend struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartBackend creates a new PostgreSQL-backed cart port.
func NewCartBackend(pool *pgxpool.Pool, logger zerolog.Logger) Cart {
	return &cartBackend{
		pool:   pool,
		logger: logger.With().Str("backend", "cart").Logger(),
	}
}

// FetchCart returns the user's cart items with embedded products.
func (b *cartBackend) FetchCart(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT item_id, produto_id, quantidade,
		       nome, preco::text, preco_oferta::text, is_oferta,
		       estoque, imagem_url, categoria_id
		FROM get_cart_with_products($1)
	`

	rows, err := b.pool.Query(ctx, query, userID)
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to fetch cart")
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var (
			item       model.CartItem
			price      string
			promoPrice *string
		)
		err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Quantity,
			&item.Product.Name,
			&price,
			&promoPrice,
			&item.Product.IsPromo,
			&item.Product.Stock,
			&item.Product.ImageURL,
			&item.Product.CategoryID,
		)
		if err != nil {
			b.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		item.Product.ID = item.ProductID
		if item.Product.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invalid price for product %d: %w", item.ProductID, err)
		}
		if promoPrice != nil {
			promo, err := decimal.NewFromString(*promoPrice)
			if err != nil {
				return nil, fmt.Errorf("invalid promo price for product %d: %w", item.ProductID, err)
			}
			item.Product.PromoPrice = &promo
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		b.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart rows: %w", err)
	}

	return items, nil
}

// AddToCart adds one unit of a product to the user's cart.
func (b *cartBackend) AddToCart(ctx context.Context, userID uuid.UUID, productID int64) error {
	if _, err := b.pool.Exec(ctx, `SELECT add_to_cart($1, $2)`, userID, productID); err != nil {
		b.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Int64("product_id", productID).
			Msg("failed to add to cart")
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

// RemoveFromCart deletes a cart item.
func (b *cartBackend) RemoveFromCart(ctx context.Context, userID uuid.UUID, cartItemID int64) error {
	if _, err := b.pool.Exec(ctx, `SELECT remove_from_cart($1, $2)`, userID, cartItemID); err != nil {
		b.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Int64("cart_item_id", cartItemID).
			Msg("failed to remove from cart")
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	return nil
}

// UpdateQuantity sets a cart item's quantity.
func (b *cartBackend) UpdateQuantity(ctx context.Context, userID uuid.UUID, cartItemID int64, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	if _, err := b.pool.Exec(ctx, `SELECT update_cart_quantity($1, $2, $3)`, userID, cartItemID, quantity); err != nil {
		b.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Int64("cart_item_id", cartItemID).
			Int("quantity", quantity).
			Msg("failed to update cart quantity")
		return fmt.Errorf("failed to update cart quantity: %w", err)
	}
	return nil
}

// CreateOrderFromCart atomically converts the user's backend cart into a
// persisted order and returns the new order id.
func (b *cartBackend) CreateOrderFromCart(ctx context.Context, userID uuid.UUID, addressID int64, paymentMethod string, deliveryFee decimal.Decimal) (int64, error) {
	var orderID int64
	err := b.pool.QueryRow(ctx,
		`SELECT criar_pedido_do_carrinho($1, $2, $3, $4)`,
		userID, addressID, paymentMethod, deliveryFee.String(),
	).Scan(&orderID)
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Int64("address_id", addressID).
			Msg("failed to create order from cart")
		return 0, fmt.Errorf("failed to create order from cart: %w", err)
	}

	b.logger.Info().
		Str("user_id", userID.String()).
		Int64("order_id", orderID).
		Msg("order created from cart")

	return orderID, nil
}
