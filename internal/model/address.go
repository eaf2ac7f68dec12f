package model

import (
	"time"

	"github.com/google/uuid"
)

// Address represents a delivery address owned by a user. The ID is zero
// until the backend persists the row.
type Address struct {
	ID           int64     `json:"id" db:"id"`
	UserID       uuid.UUID `json:"userId" db:"usuario_id"`
	Label        string    `json:"label" db:"apelido"`
	CEP          string    `json:"cep" db:"cep"`
	Street       string    `json:"street" db:"logradouro"`
	Number       string    `json:"number" db:"numero"`
	Complement   string    `json:"complement,omitempty" db:"complemento"`
	Neighborhood string    `json:"neighborhood" db:"bairro"`
	City         string    `json:"city" db:"cidade"`
	State        string    `json:"state" db:"estado"`
	CreatedAt    time.Time `json:"createdAt" db:"data_criacao"`
	UpdatedAt    time.Time `json:"updatedAt" db:"data_ult_atualizacao"`
}

// AddressPatch carries a partial address update. Nil fields are left
// unchanged.
type AddressPatch struct {
	Label        *string `json:"label,omitempty"`
	CEP          *string `json:"cep,omitempty"`
	Street       *string `json:"street,omitempty"`
	Number       *string `json:"number,omitempty"`
	Complement   *string `json:"complement,omitempty"`
	Neighborhood *string `json:"neighborhood,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
}
