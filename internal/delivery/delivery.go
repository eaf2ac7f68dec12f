// Package delivery decides whether an address is within the store's
// delivery radius and owns the configuration profile that drives the
// decision.
package delivery

import (
	"context"

	"quitanda/internal/geo"
)

// Check is the ephemeral result of an eligibility check. It is computed
// per address candidate and discarded once the associated flow completes.
type Check struct {
	Available  bool    `json:"available"`
	DistanceKm float64 `json:"distanceKm,omitempty"`
	Message    string  `json:"message"`
}

// Messages holds the user-facing message templates. The placeholders
// {distance} and {max} are substituted at check time.
type Messages struct {
	Available       string `json:"available"`
	Unavailable     string `json:"unavailable"`
	AddressNotFound string `json:"addressNotFound"`
	GenericError    string `json:"genericError"`
}

// Profile is the delivery configuration document: store location, radius,
// fee, and message templates. It can be loaded from local disk or S3.
type Profile struct {
	Store       geo.Coordinates `json:"store"`
	MaxRadiusKm float64         `json:"maxRadiusKm"`
	DeliveryFee float64         `json:"deliveryFee"`
	Messages    Messages        `json:"messages"`
}

// Loader defines the interface for loading a delivery profile document.
type Loader interface {
	// Load reads a JSON delivery profile and returns it.
	Load(ctx context.Context, path string) (*Profile, error)
}

// DefaultMessages returns the built-in message templates.
func DefaultMessages() Messages {
	return Messages{
		Available:       "Entrega disponível! Distância: {distance}km",
		Unavailable:     "Desculpe, não entregamos neste endereço.\nDistância: {distance}km (máximo: {max}km)",
		AddressNotFound: "Não foi possível localizar o endereço informado. Verifique os dados e tente novamente.",
		GenericError:    "Erro ao verificar a disponibilidade de entrega. Tente novamente.",
	}
}

// DefaultProfile returns a profile with the built-in store location,
// a 12 km radius, and default messages.
func DefaultProfile() Profile {
	return Profile{
		Store: geo.Coordinates{
			Latitude:  -22.924671101962982,
			Longitude: -43.56125845682741,
		},
		MaxRadiusKm: 12,
		DeliveryFee: 8.00,
		Messages:    DefaultMessages(),
	}
}
