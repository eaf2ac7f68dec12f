// Package backend defines the remote backend port consumed by the state
// managers, and its PostgreSQL implementation. Procedure-style operations
// (cart, favorites, order creation, order history) map to SQL functions;
// the remaining operations are row-level CRUD.
package backend

import (
	"context"

	"quitanda/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart defines the remote cart operations.
type Cart interface {
	// FetchCart returns the user's cart items with embedded products.
	FetchCart(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// AddToCart adds one unit of a product to the user's cart, creating
	// the row on first add and incrementing the quantity afterwards.
	AddToCart(ctx context.Context, userID uuid.UUID, productID int64) error

	// RemoveFromCart deletes a cart item.
	RemoveFromCart(ctx context.Context, userID uuid.UUID, cartItemID int64) error

	// UpdateQuantity sets a cart item's quantity.
	UpdateQuantity(ctx context.Context, userID uuid.UUID, cartItemID int64, quantity int) error

	// CreateOrderFromCart atomically converts the user's backend cart into
	// a persisted order and returns the new order id.
	CreateOrderFromCart(ctx context.Context, userID uuid.UUID, addressID int64, paymentMethod string, deliveryFee decimal.Decimal) (int64, error)
}

// Favorites defines the remote favorites operations.
type Favorites interface {
	// FetchFavorites returns the user's favorited products.
	FetchFavorites(ctx context.Context, userID uuid.UUID) ([]model.Product, error)

	// ToggleFavorite flips a product's favorited state for the user.
	ToggleFavorite(ctx context.Context, userID uuid.UUID, productID int64) error
}

// Orders defines the remote order-history operations.
type Orders interface {
	// FetchOrders returns the user's orders with embedded address and
	// line items, most recent first.
	FetchOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
}

// Addresses defines row-level CRUD over the user's delivery addresses.
type Addresses interface {
	// Create persists a new address and returns it with id and
	// timestamps assigned.
	Create(ctx context.Context, address model.Address) (*model.Address, error)

	// ListByUser returns the user's addresses, most recently created first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error)

	// GetByID returns a single address or model.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.Address, error)

	// Update applies a partial update and returns the refreshed address.
	Update(ctx context.Context, id int64, patch model.AddressPatch) (*model.Address, error)

	// Delete removes an address.
	Delete(ctx context.Context, id int64) error
}

// Catalog defines read-only product and category queries.
type Catalog interface {
	// Promotions returns products currently flagged as on promotion.
	Promotions(ctx context.Context) ([]model.Product, error)

	// ProductsByCategory returns the products in a category.
	ProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error)

	// Categories returns all categories.
	Categories(ctx context.Context) ([]model.Category, error)
}
