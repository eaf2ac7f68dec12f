// Package catalog provides the read-only storefront queries: promotions,
// category browsing, and order history.
package catalog

import (
	"context"
	"fmt"

	"quitanda/internal/backend"
	"quitanda/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service wraps the read-only backend ports.
type Service struct {
	catalog backend.Catalog
	orders  backend.Orders
	logger  zerolog.Logger
}

// NewService creates a catalog service.
func NewService(catalog backend.Catalog, orders backend.Orders, logger zerolog.Logger) *Service {
	return &Service{
		catalog: catalog,
		orders:  orders,
		logger:  logger.With().Str("service", "catalog").Logger(),
	}
}

// Promotions returns the products currently on promotion.
func (s *Service) Promotions(ctx context.Context) ([]model.Product, error) {
	products, err := s.catalog.Promotions(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch promotions")
		return nil, fmt.Errorf("failed to fetch promotions: %w", err)
	}
	return products, nil
}

// ProductsByCategory returns the products in a category.
func (s *Service) ProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	products, err := s.catalog.ProductsByCategory(ctx, categoryID)
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", categoryID).Msg("failed to fetch category products")
		return nil, fmt.Errorf("failed to fetch category products: %w", err)
	}
	return products, nil
}

// Categories returns all categories.
func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch categories")
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

// History returns the user's order history, most recent first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orders.FetchOrders(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to fetch order history")
		return nil, fmt.Errorf("failed to fetch order history: %w", err)
	}
	return orders, nil
}
