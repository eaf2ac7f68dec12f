// Package checkout composes the cart manager with the order-placement
// preconditions that sit above it: a selected address and an advisory
// total for display.
package checkout

import (
	"context"

	"quitanda/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Cart is the slice of the cart manager the orchestrator depends on.
type Cart interface {
	TotalPrice() decimal.Decimal
	CreateOrder(ctx context.Context, addressID int64, paymentMethod string, deliveryFee decimal.Decimal) (int64, error)
}

// Summary holds the display totals for the review screen. The
// authoritative total is computed and stored by the backend at creation
// time; these values are advisory.
type Summary struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// Orchestrator validates checkout preconditions and delegates order
// creation to the cart manager.
type Orchestrator struct {
	cart        Cart
	deliveryFee decimal.Decimal
	logger      zerolog.Logger
}

// NewOrchestrator creates a checkout orchestrator with a fixed delivery
// fee.
func NewOrchestrator(cart Cart, deliveryFee decimal.Decimal, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cart:        cart,
		deliveryFee: deliveryFee,
		logger:      logger.With().Str("component", "checkout").Logger(),
	}
}

// Summary returns the advisory totals for the current cart.
func (o *Orchestrator) Summary() Summary {
	subtotal := o.cart.TotalPrice()
	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: o.deliveryFee,
		Total:       subtotal.Add(o.deliveryFee),
	}
}

// Place creates an order for the given address and payment method. A
// missing address is rejected before any backend work. On failure the
// error surfaces to the caller and the cart and address stay unchanged,
// permitting retry.
func (o *Orchestrator) Place(ctx context.Context, address *model.Address, paymentMethod string) (int64, error) {
	if address == nil || address.ID == 0 {
		o.logger.Warn().Msg("checkout attempted without a selected address")
		return 0, model.ErrNoAddress
	}

	orderID, err := o.cart.CreateOrder(ctx, address.ID, paymentMethod, o.deliveryFee)
	if err != nil {
		o.logger.Error().
			Err(err).
			Int64("address_id", address.ID).
			Msg("order placement failed")
		return 0, err
	}

	// The cart manager treats an empty cart as a silent no-op; at
	// checkout that condition must be user-visible.
	if orderID == 0 {
		return 0, model.ErrEmptyCart
	}

	o.logger.Info().
		Int64("order_id", orderID).
		Int64("address_id", address.ID).
		Str("payment_method", paymentMethod).
		Msg("order placed")

	return orderID, nil
}
