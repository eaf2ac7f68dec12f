package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quitanda/internal/geo"

	"github.com/rs/zerolog"
)

// DefaultBaseURL points at the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// httpGeocoder implements Geocoder against a Nominatim-compatible HTTP API.
type httpGeocoder struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPGeocoder creates a geocoder backed by a Nominatim-compatible
// endpoint. A nil client falls back to a client with a 10s timeout.
func NewHTTPGeocoder(baseURL string, client *http.Client, logger zerolog.Logger) Geocoder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &httpGeocoder{
		baseURL: baseURL,
		client:  client,
		logger:  logger.With().Str("component", "geocoder").Logger(),
	}
}

// nominatimResult is the subset of the Nominatim response we consume.
type nominatimResult struct {
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
	Address struct {
		Road        string `json:"road"`
		HouseNumber string `json:"house_number"`
		Suburb      string `json:"suburb"`
		City        string `json:"city"`
		State       string `json:"state"`
		Postcode    string `json:"postcode"`
	} `json:"address"`
}

// Forward resolves a free-text address to candidate coordinates.
func (g *httpGeocoder) Forward(ctx context.Context, address string) ([]geo.Coordinates, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "5")

	results, err := g.query(ctx, g.baseURL+"/search?"+q.Encode())
	if err != nil {
		g.logger.Error().Err(err).Str("address", address).Msg("forward geocoding failed")
		return nil, err
	}

	coords := make([]geo.Coordinates, 0, len(results))
	for _, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		coords = append(coords, geo.Coordinates{Latitude: lat, Longitude: lon})
	}

	g.logger.Debug().
		Str("address", address).
		Int("candidates", len(coords)).
		Msg("forward geocoding completed")

	return coords, nil
}

// Reverse resolves coordinates to address components.
func (g *httpGeocoder) Reverse(ctx context.Context, coords geo.Coordinates) ([]Placemark, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build reverse geocoding request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Msg("reverse geocoding failed")
		return nil, fmt.Errorf("reverse geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, ErrPermissionDenied
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocoding returned status %d", resp.StatusCode)
	}

	var result nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode reverse geocoding response: %w", err)
	}

	return []Placemark{{
		Street:       result.Address.Road,
		Number:       result.Address.HouseNumber,
		Neighborhood: result.Address.Suburb,
		City:         result.Address.City,
		State:        result.Address.State,
		PostalCode:   result.Address.Postcode,
	}}, nil
}

// query runs a GET request and decodes a list of Nominatim results.
func (g *httpGeocoder) query(ctx context.Context, requestURL string) ([]nominatimResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, ErrPermissionDenied
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	return results, nil
}
