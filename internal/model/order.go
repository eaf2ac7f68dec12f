package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a persisted order. Orders are created atomically by the
// backend from the cart contents it observed and are immutable from the
// client's perspective; status transitions are backend-owned.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	StatusID      int64           `json:"statusId" db:"status_id"`
	StatusLabel   string          `json:"statusLabel" db:"status_descricao"`
	Total         decimal.Decimal `json:"total" db:"valor_total"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee" db:"taxa_entrega"`
	PaymentMethod string          `json:"paymentMethod" db:"metodo_pagamento"`
	CreatedAt     time.Time       `json:"createdAt" db:"data_criacao"`
	Address       Address         `json:"address" db:"endereco"`
	Items         []OrderItem     `json:"items" db:"itens"`
}

// OrderItem represents a line item in an order. UnitPrice is the effective
// price captured at order-creation time and is never recomputed from live
// product prices.
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	Quantity  int             `json:"quantity" db:"quantidade"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"preco_unitario"`
	Product   Product         `json:"product" db:"produto"`
}
