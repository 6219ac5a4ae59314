package airquality

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ecocampus-app/ecocampus-backend/pkg/config"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
)

const (
	defaultAQIBaseURL           = "https://air-quality-api.open-meteo.com/v1"
	defaultGeocodeBaseURL       = "https://api.bigdatacloud.net/data"
	responseBodyReadLimit int64 = 1024
)

// Client wraps the Open-Meteo air quality API and the BigDataCloud reverse
// geocoder used to label the reading with a locality name.
type Client struct {
	httpClient     *http.Client
	aqiBaseURL     string
	geocodeBaseURL string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAQIBaseURL overrides the Open-Meteo base URL.
func WithAQIBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.aqiBaseURL = trimmed
		}
	}
}

// WithGeocodeBaseURL overrides the BigDataCloud base URL.
func WithGeocodeBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.geocodeBaseURL = trimmed
		}
	}
}

// NewClient builds the air quality client.
func NewClient(cfg config.AirQualityConfig, opts ...Option) *Client {
	client := &Client{
		aqiBaseURL:     defaultAQIBaseURL,
		geocodeBaseURL: defaultGeocodeBaseURL,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
	}
	if trimmed := strings.TrimSpace(cfg.AQIBaseURL); trimmed != "" {
		client.aqiBaseURL = trimmed
	}
	if trimmed := strings.TrimSpace(cfg.GeocodeBaseURL); trimmed != "" {
		client.geocodeBaseURL = trimmed
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client
}

// Reading is the normalized air quality snapshot for a location.
type Reading struct {
	AQI      int     `json:"aqi"`
	PM25     float64 `json:"pm2_5"`
	PM10     float64 `json:"pm10"`
	Locality string  `json:"locality"`
}

// CurrentReading fetches the US AQI and particulate levels for the given
// coordinates, then resolves a human locality name. A geocode failure is not
// fatal; the reading comes back with an empty locality.
func (c *Client) CurrentReading(ctx context.Context, lat, lon float64) (*Reading, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "air quality client not configured")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	query.Set("current", "us_aqi,pm2_5,pm10")

	endpoint := fmt.Sprintf("%s/air-quality?%s", strings.TrimRight(c.aqiBaseURL, "/"), query.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build air quality request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute air quality request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "air quality request failed")
	}

	var apiResp struct {
		Current struct {
			USAQI float64 `json:"us_aqi"`
			PM25  float64 `json:"pm2_5"`
			PM10  float64 `json:"pm10"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode air quality response")
	}

	reading := &Reading{
		AQI:  int(apiResp.Current.USAQI),
		PM25: apiResp.Current.PM25,
		PM10: apiResp.Current.PM10,
	}

	if locality, err := c.reverseGeocode(ctx, lat, lon); err == nil {
		reading.Locality = locality
	}

	return reading, nil
}

func (c *Client) reverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	query.Set("localityLanguage", "en")

	endpoint := fmt.Sprintf("%s/reverse-geocode-client?%s", strings.TrimRight(c.geocodeBaseURL, "/"), query.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build reverse geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("execute reverse geocode request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode status %d", resp.StatusCode)
	}

	var apiResp struct {
		City     string `json:"city"`
		Locality string `json:"locality"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode reverse geocode response: %w", err)
	}

	if apiResp.City != "" {
		return apiResp.City, nil
	}
	return apiResp.Locality, nil
}
