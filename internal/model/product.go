package model

import "github.com/shopspring/decimal"

// Product represents a grocery product in the catalogue. Products are
// created and mutated exclusively by the backend; the client treats them
// as read-only.
type Product struct {
	ID         int64            `json:"id" db:"id"`
	Name       string           `json:"name" db:"nome"`
	Price      decimal.Decimal  `json:"price" db:"preco"`
	PromoPrice *decimal.Decimal `json:"promoPrice,omitempty" db:"preco_oferta"`
	IsPromo    bool             `json:"isPromo" db:"is_oferta"`
	Stock      int              `json:"stock" db:"estoque"`
	ImageURL   string           `json:"imageUrl" db:"imagem_url"`
	CategoryID int64            `json:"categoryId" db:"categoria_id"`
}

// EffectivePrice returns the promotional price when the product is on
// promotion and a promotional price is present, otherwise the unit price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.IsPromo && p.PromoPrice != nil {
		return *p.PromoPrice
	}
	return p.Price
}

// Category represents a product category.
type Category struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"nome"`
	ImageURL string `json:"imageUrl" db:"imagem_url"`
}
