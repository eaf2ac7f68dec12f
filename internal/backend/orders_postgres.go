package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"quitanda/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ordersBackend implements the Orders interface over PostgreSQL. The
// history procedure returns a JSON document with embedded address and
// line items, so the adapter decodes instead of scanning columns.
type ordersBackend struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrdersBackend creates a new PostgreSQL-backed order-history port.
func NewOrdersBackend(pool *pgxpool.Pool, logger zerolog.Logger) Orders {
	return &ordersBackend{
		pool:   pool,
		logger: logger.With().Str("backend", "orders").Logger(),
	}
}

// FetchOrders returns the user's orders with embedded address and line
// items, most recent first.
func (b *ordersBackend) FetchOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	var payload []byte
	err := b.pool.QueryRow(ctx, `SELECT get_my_pedidos($1)`, userID).Scan(&payload)
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to fetch orders")
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	var orders []model.Order
	if err := json.Unmarshal(payload, &orders); err != nil {
		b.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to decode orders payload")
		return nil, fmt.Errorf("failed to decode orders payload: %w", err)
	}

	b.logger.Debug().
		Str("user_id", userID.String()).
		Int("count", len(orders)).
		Msg("orders fetched")

	return orders, nil
}
