package delivery

import (
	"context"
	"math"
	"strconv"
	"strings"

	"quitanda/internal/geo"
	"quitanda/internal/geocode"

	"github.com/rs/zerolog"
)

// Checker decides delivery eligibility against a fixed store location.
// It never returns an error: every failure mode is converted into an
// unavailable Check with an explanatory message.
type Checker struct {
	store       geo.Coordinates
	maxRadiusKm float64
	messages    Messages
	geocoder    geocode.Geocoder
	logger      zerolog.Logger
}

// NewChecker creates a delivery eligibility checker from a profile.
func NewChecker(profile Profile, geocoder geocode.Geocoder, logger zerolog.Logger) *Checker {
	return &Checker{
		store:       profile.Store,
		maxRadiusKm: profile.MaxRadiusKm,
		messages:    profile.Messages,
		geocoder:    geocoder,
		logger:      logger.With().Str("component", "delivery-checker").Logger(),
	}
}

// CheckByAddress resolves a free-text address through the geocoder and
// delegates to the distance-based check. Permission denial, geocoder
// failure, and zero candidates all fail closed with the address-not-found
// message.
func (c *Checker) CheckByAddress(ctx context.Context, address string) Check {
	coords, err := c.geocoder.Forward(ctx, address)
	if err != nil {
		c.logger.Error().Err(err).Str("address", address).Msg("geocoding failed")
		return Check{Available: false, Message: c.messages.AddressNotFound}
	}

	if len(coords) == 0 {
		c.logger.Warn().Str("address", address).Msg("address not found by geocoder")
		return Check{Available: false, Message: c.messages.AddressNotFound}
	}

	return c.CheckByCoordinates(coords[0])
}

// CheckByCoordinates computes the great-circle distance from the store and
// compares it against the maximum radius. The boundary is inclusive:
// a distance exactly equal to the radius is still deliverable.
func (c *Checker) CheckByCoordinates(coords geo.Coordinates) Check {
	distance := geo.Distance(c.store, coords)

	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		c.logger.Error().
			Float64("latitude", coords.Latitude).
			Float64("longitude", coords.Longitude).
			Msg("distance computation produced a non-finite value")
		return Check{Available: false, Message: c.messages.GenericError}
	}

	rounded := math.Round(distance*100) / 100

	if distance <= c.maxRadiusKm {
		return Check{
			Available:  true,
			DistanceKm: rounded,
			Message:    c.render(c.messages.Available, distance),
		}
	}

	return Check{
		Available:  false,
		DistanceKm: rounded,
		Message:    c.render(c.messages.Unavailable, distance),
	}
}

// Info returns the store location, the maximum radius, and a display text
// for the radius.
func (c *Checker) Info() (geo.Coordinates, float64, string) {
	return c.store, c.maxRadiusKm, formatKm(c.maxRadiusKm) + "km"
}

// render substitutes the {distance} and {max} placeholders in a template.
func (c *Checker) render(template string, distance float64) string {
	msg := strings.ReplaceAll(template, "{distance}", strconv.FormatFloat(distance, 'f', 1, 64))
	return strings.ReplaceAll(msg, "{max}", formatKm(c.maxRadiusKm))
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
