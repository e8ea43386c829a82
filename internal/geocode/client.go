// Package geocode resolves traffic report coordinates into street addresses
// through the Google reverse geocoding API, with a bounded worker pool and
// per-report memoization so each location is looked up at most once.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// DefaultBaseURL is the production Google Maps API host.
const DefaultBaseURL = "https://maps.googleapis.com"

const geocodePath = "/maps/api/geocode/json"

// Geocoding API status strings.
const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

var (
	// ErrNoResults means the location resolved to no known address.
	ErrNoResults = errors.New("geocode: no results for location")

	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("geocode: missing API key (set geocode.api_key or GOOGLE_MAPS_API_KEY)")
)

// Client calls the reverse geocoding endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a geocoding client. Pass DefaultBaseURL outside tests.
func NewClient(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// geocodeResponse is the subset of the Google response we read.
type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// ReverseGeocode resolves a coordinate pair to a formatted street address.
// Addresses are NFC-normalized so the same place always produces the same
// bytes regardless of how the API composed its accents.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	query := url.Values{}
	query.Set("latlng", formatCoord(lat)+","+formatCoord(lng))
	query.Set("key", c.apiKey)

	reqURL := c.baseURL + geocodePath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("geocode: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)

		return "", fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var decoded geocodeResponse

	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("geocode: decoding response: %w", err)
	}

	switch decoded.Status {
	case statusOK:
		if len(decoded.Results) == 0 {
			return "", ErrNoResults
		}

		return norm.NFC.String(decoded.Results[0].FormattedAddress), nil
	case statusZeroResults:
		return "", ErrNoResults
	default:
		c.logger.Warn("geocoding API error",
			slog.String("status", decoded.Status),
			slog.String("message", decoded.ErrorMessage))

		return "", fmt.Errorf("geocode: API status %s: %s", decoded.Status, decoded.ErrorMessage)
	}
}

// formatCoord renders a coordinate with full float precision, no trailing
// zeros.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
