package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quitanda/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// addressBackend implements the Addresses interface over PostgreSQL.
type addressBackend struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressBackend creates a new PostgreSQL-backed address port.
func NewAddressBackend(pool *pgxpool.Pool, logger zerolog.Logger) Addresses {
	return &addressBackend{
		pool:   pool,
		logger: logger.With().Str("backend", "address").Logger(),
	}
}

const addressColumns = `id, usuario_id, apelido, cep, logradouro, numero,
	COALESCE(complemento, ''), bairro, cidade, estado, data_criacao, data_ult_atualizacao`

// Create persists a new address with creation timestamps assigned.
func (b *addressBackend) Create(ctx context.Context, address model.Address) (*model.Address, error) {
	query := `
		INSERT INTO endereco
			(usuario_id, apelido, cep, logradouro, numero, complemento,
			 bairro, cidade, estado, data_criacao, data_ult_atualizacao)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $10)
		RETURNING ` + addressColumns

	now := time.Now().UTC()
	row := b.pool.QueryRow(ctx, query,
		address.UserID,
		address.Label,
		address.CEP,
		address.Street,
		address.Number,
		address.Complement,
		address.Neighborhood,
		address.City,
		address.State,
		now,
	)

	created, err := scanAddress(row)
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("user_id", address.UserID.String()).
			Msg("failed to create address")
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	b.logger.Debug().
		Int64("address_id", created.ID).
		Str("user_id", created.UserID.String()).
		Msg("address created")

	return created, nil
}

// ListByUser returns the user's addresses, most recently created first.
func (b *addressBackend) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM endereco
		WHERE usuario_id = $1
		ORDER BY data_criacao DESC
	`

	rows, err := b.pool.Query(ctx, query, userID)
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list addresses")
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	var addresses []model.Address
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			b.logger.Error().Err(err).Msg("failed to scan address row")
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, *address)
	}

	if err := rows.Err(); err != nil {
		b.logger.Error().Err(err).Msg("error iterating address rows")
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// GetByID returns a single address or model.ErrNotFound.
func (b *addressBackend) GetByID(ctx context.Context, id int64) (*model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM endereco WHERE id = $1`

	address, err := scanAddress(b.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			b.logger.Debug().Int64("address_id", id).Msg("address not found")
			return nil, model.ErrNotFound
		}
		b.logger.Error().Err(err).Int64("address_id", id).Msg("failed to get address")
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	return address, nil
}

// Update applies a partial update, refreshing the last-update timestamp,
// and returns the stored address.
func (b *addressBackend) Update(ctx context.Context, id int64, patch model.AddressPatch) (*model.Address, error) {
	query := `
		UPDATE endereco SET
			apelido     = COALESCE($2, apelido),
			cep         = COALESCE($3, cep),
			logradouro  = COALESCE($4, logradouro),
			numero      = COALESCE($5, numero),
			complemento = COALESCE($6, complemento),
			bairro      = COALESCE($7, bairro),
			cidade      = COALESCE($8, cidade),
			estado      = COALESCE($9, estado),
			data_ult_atualizacao = $10
		WHERE id = $1
		RETURNING ` + addressColumns

	row := b.pool.QueryRow(ctx, query,
		id,
		patch.Label,
		patch.CEP,
		patch.Street,
		patch.Number,
		patch.Complement,
		patch.Neighborhood,
		patch.City,
		patch.State,
		time.Now().UTC(),
	)

	address, err := scanAddress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		b.logger.Error().Err(err).Int64("address_id", id).Msg("failed to update address")
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	b.logger.Debug().Int64("address_id", id).Msg("address updated")

	return address, nil
}

// Delete removes an address.
func (b *addressBackend) Delete(ctx context.Context, id int64) error {
	tag, err := b.pool.Exec(ctx, `DELETE FROM endereco WHERE id = $1`, id)
	if err != nil {
		b.logger.Error().Err(err).Int64("address_id", id).Msg("failed to delete address")
		return fmt.Errorf("failed to delete address: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	b.logger.Debug().Int64("address_id", id).Msg("address deleted")

	return nil
}

// scanAddress scans a row shaped as addressColumns.
func scanAddress(row pgx.Row) (*model.Address, error) {
	var a model.Address
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Label,
		&a.CEP,
		&a.Street,
		&a.Number,
		&a.Complement,
		&a.Neighborhood,
		&a.City,
		&a.State,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
