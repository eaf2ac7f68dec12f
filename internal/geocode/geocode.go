package geocode

import (
	"context"
	"errors"

	"quitanda/internal/geo"
)

// ErrPermissionDenied indicates that the location capability backing the
// geocoder refused access.
var ErrPermissionDenied = errors.New("location permission denied")

// Placemark holds the address components returned by reverse geocoding.
type Placemark struct {
	Street       string
	Number       string
	Neighborhood string
	City         string
	State        string
	PostalCode   string
}

// Geocoder defines the interface for forward and reverse geocoding.
type Geocoder interface {
	// Forward resolves a free-text address to candidate coordinates.
	// An empty result slice means the address could not be located.
	Forward(ctx context.Context, address string) ([]geo.Coordinates, error)

	// Reverse resolves coordinates to address components.
	Reverse(ctx context.Context, coords geo.Coordinates) ([]Placemark, error)
}
