// Package maps provides geocoding and routing against an external maps
// HTTP API, used to estimate door-to-door travel time between the
// user's home and an event location.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// Config holds the maps client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns the default maps configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "https://catalog.api.2gis.com",
		Timeout: 10 * time.Second,
	}
}

// Client resolves addresses to coordinates and coordinates to driving
// durations. It implements the planner's TravelResolver.
type Client struct {
	config     *Config
	httpClient *http.Client
}

func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Point is a WGS 84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocode resolves a free-text address to a coordinate.
func (c *Client) Geocode(ctx context.Context, address string) (Point, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("fields", "items.point")
	q.Set("key", c.config.APIKey)

	var result struct {
		Result struct {
			Items []struct {
				Point Point `json:"point"`
			} `json:"items"`
		} `json:"result"`
	}
	if err := c.getJSON(ctx, "/3.0/items/geocode", q, &result); err != nil {
		return Point{}, errors.Wrapf(err, "failed to geocode %q", address)
	}
	if len(result.Result.Items) == 0 {
		return Point{}, errors.Errorf("no geocoding result for %q", address)
	}
	return result.Result.Items[0].Point, nil
}

// Route returns the driving duration between two points, rounded up to
// whole minutes.
func (c *Client) Route(ctx context.Context, from, to Point) (int, error) {
	q := url.Values{}
	q.Set("points", fmt.Sprintf("%f,%f|%f,%f", from.Lon, from.Lat, to.Lon, to.Lat))
	q.Set("key", c.config.APIKey)

	var result struct {
		Result []struct {
			TotalDuration int `json:"total_duration"` // seconds
		} `json:"result"`
	}
	if err := c.getJSON(ctx, "/routing/7.0.0/global", q, &result); err != nil {
		return 0, errors.Wrap(err, "failed to build route")
	}
	if len(result.Result) == 0 {
		return 0, errors.New("no route found")
	}

	minutes := int(math.Ceil(float64(result.Result[0].TotalDuration) / 60))
	if minutes < 1 {
		minutes = 1
	}
	return minutes, nil
}

// TravelMinutes geocodes both addresses and returns the driving time
// between them in minutes.
func (c *Client) TravelMinutes(ctx context.Context, origin, destination string) (int, error) {
	from, err := c.Geocode(ctx, origin)
	if err != nil {
		return 0, err
	}
	to, err := c.Geocode(ctx, destination)
	if err != nil {
		return 0, err
	}
	return c.Route(ctx, from, to)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.config.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("maps API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}
