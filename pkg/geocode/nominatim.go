// Package geocode resolves coordinates to human-readable addresses using
// the OpenStreetMap Nominatim reverse geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultEndpoint is the public Nominatim instance. Production bots with
// real traffic should run their own, per the OSM usage policy.
const DefaultEndpoint = "https://nominatim.openstreetmap.org/reverse"

const defaultTimeout = 5 * time.Second

// userAgent identifies the bot to Nominatim; anonymous clients get
// throttled.
const userAgent = "tablebot/1.0"

// Client implements ports.Geocoder against a Nominatim endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithEndpoint overrides the Nominatim URL, for self-hosted instances and
// tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a Nominatim client.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReverseGeocode resolves coordinates to a display address.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build reverse geocode request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: unexpected status %s", resp.Status)
	}

	var body struct {
		DisplayName string `json:"display_name"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode reverse geocode response: %w", err)
	}
	if body.Error != "" {
		return "", fmt.Errorf("reverse geocode: %s", body.Error)
	}
	if body.DisplayName == "" {
		return "", fmt.Errorf("reverse geocode: empty address for %f,%f", lat, lon)
	}
	return body.DisplayName, nil
}
