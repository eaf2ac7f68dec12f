// Package address is the CRUD adapter for the user's delivery addresses.
// It normalizes and validates form input before handing it to the backend
// port.
package address

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"quitanda/internal/backend"
	"quitanda/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository wraps the backend address port with input validation.
type Repository struct {
	backend backend.Addresses
	logger  zerolog.Logger
}

// NewRepository creates an address repository over the given backend port.
func NewRepository(port backend.Addresses, logger zerolog.Logger) *Repository {
	return &Repository{
		backend: port,
		logger:  logger.With().Str("component", "address").Logger(),
	}
}

// Create validates, normalizes, and persists a new address.
func (r *Repository) Create(ctx context.Context, address model.Address) (*model.Address, error) {
	cep, err := NormalizeCEP(address.CEP)
	if err != nil {
		return nil, err
	}
	state, err := NormalizeState(address.State)
	if err != nil {
		return nil, err
	}

	address.CEP = cep
	address.State = state

	created, err := r.backend.Create(ctx, address)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", address.UserID.String()).Msg("failed to create address")
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	r.logger.Info().
		Int64("address_id", created.ID).
		Str("label", created.Label).
		Msg("address created")

	return created, nil
}

// ListByUser returns the user's addresses, most recently created first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	addresses, err := r.backend.ListByUser(ctx, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list addresses")
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// GetByID returns a single address or model.ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (*model.Address, error) {
	address, err := r.backend.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return address, nil
}

// Update normalizes the set fields of a partial update and applies it.
func (r *Repository) Update(ctx context.Context, id int64, patch model.AddressPatch) (*model.Address, error) {
	if patch.CEP != nil {
		cep, err := NormalizeCEP(*patch.CEP)
		if err != nil {
			return nil, err
		}
		patch.CEP = &cep
	}
	if patch.State != nil {
		state, err := NormalizeState(*patch.State)
		if err != nil {
			return nil, err
		}
		patch.State = &state
	}

	updated, err := r.backend.Update(ctx, id, patch)
	if err != nil {
		r.logger.Error().Err(err).Int64("address_id", id).Msg("failed to update address")
		return nil, err
	}

	return updated, nil
}

// Delete removes an address; backend failures propagate.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.backend.Delete(ctx, id); err != nil {
		r.logger.Error().Err(err).Int64("address_id", id).Msg("failed to delete address")
		return err
	}
	return nil
}

// NormalizeCEP strips formatting from a postal code and requires exactly
// 8 digits.
func NormalizeCEP(cep string) (string, error) {
	var digits strings.Builder
	for _, r := range cep {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	if digits.Len() != 8 {
		return "", model.ErrInvalidCEP
	}
	return digits.String(), nil
}

// NormalizeState uppercases a state code and requires exactly 2 letters.
func NormalizeState(state string) (string, error) {
	state = strings.ToUpper(strings.TrimSpace(state))

	if len(state) != 2 {
		return "", model.ErrInvalidState
	}
	for _, r := range state {
		if r < 'A' || r > 'Z' {
			return "", model.ErrInvalidState
		}
	}
	return state, nil
}
