package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading profile documents from disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based profile loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "profile-loader").Logger(),
	}
}

// Load reads a JSON delivery profile from the local file system. Fields
// absent from the document keep their default values.
func (l *fileLoader) Load(ctx context.Context, path string) (*Profile, error) {
	l.logger.Info().Str("file", path).Msg("loading delivery profile")

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read profile file")
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	profile := DefaultProfile()
	if err := json.Unmarshal(data, &profile); err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to parse profile file")
		return nil, fmt.Errorf("failed to parse profile file %s: %w", path, err)
	}

	if err := validateProfile(&profile); err != nil {
		return nil, fmt.Errorf("invalid profile in %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Float64("max_radius_km", profile.MaxRadiusKm).
		Msg("delivery profile loaded successfully")

	return &profile, nil
}

// validateProfile rejects documents that would make the checker nonsensical.
func validateProfile(p *Profile) error {
	if p.MaxRadiusKm <= 0 {
		return fmt.Errorf("maxRadiusKm must be positive, got %f", p.MaxRadiusKm)
	}
	if p.Store.Latitude < -90 || p.Store.Latitude > 90 {
		return fmt.Errorf("invalid store latitude: %f", p.Store.Latitude)
	}
	if p.Store.Longitude < -180 || p.Store.Longitude > 180 {
		return fmt.Errorf("invalid store longitude: %f", p.Store.Longitude)
	}
	if p.DeliveryFee < 0 {
		return fmt.Errorf("deliveryFee cannot be negative, got %f", p.DeliveryFee)
	}
	return nil
}
