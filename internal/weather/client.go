// Package weather looks up current conditions from an OpenWeatherMap compatible API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "https://api.openweathermap.org"
	DefaultIconBaseURL = "http://openweathermap.org"
	DefaultTimeout     = 10 * time.Second
)

var (
	// ErrCityRequired is returned for a blank city.
	ErrCityRequired = errors.New("weather: city is required")
	// ErrMissingAPIKey is returned when the client has no API key configured.
	ErrMissingAPIKey = errors.New("weather: api key not configured")
	// ErrRateLimited is returned when the local request budget is exhausted.
	ErrRateLimited = errors.New("weather: rate limited")
	// ErrMalformedResponse is returned when the upstream body lacks the expected fields.
	ErrMalformedResponse = errors.New("weather: malformed response")
)

// StatusError reports a non-200 upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("weather: upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("weather: upstream returned status %d: %s", e.StatusCode, e.Body)
}

// Report is the current weather for a city.
type Report struct {
	Temperature float64
	Description string
	IconCode    string
	IconURL     string
}

// Options configures a Client. Zero values fall back to the package defaults.
type Options struct {
	APIKey        string
	BaseURL       string
	IconBaseURL   string
	Timeout       time.Duration
	RatePerMinute int
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

// Client queries the current weather endpoint.
type Client struct {
	apiKey      string
	baseURL     string
	iconBaseURL string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
}

type currentResponse struct {
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

// NewClient builds a Client. A non-positive RatePerMinute disables local limiting.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	iconBaseURL := strings.TrimRight(strings.TrimSpace(opts.IconBaseURL), "/")
	if iconBaseURL == "" {
		iconBaseURL = DefaultIconBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), opts.RatePerMinute)
	}

	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		iconBaseURL: iconBaseURL,
		httpClient:  httpClient,
		limiter:     limiter,
		logger:      logger.With("component", "weather_client"),
	}
}

// IconURL returns the 2x icon image location for an icon code.
func (c *Client) IconURL(code string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf("%s/img/wn/%s@2x.png", c.iconBaseURL, url.PathEscape(code))
}

// Current fetches the weather for city in metric units. Failures are never retried.
func (c *Client) Current(ctx context.Context, city string) (Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Report{}, ErrCityRequired
	}
	if c.apiKey == "" {
		return Report{}, ErrMissingAPIKey
	}
	if !c.limiter.Allow() {
		c.logger.WarnContext(ctx, "weather lookup rate limited", "city", city)
		return Report{}, ErrRateLimited
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")
	endpoint := c.baseURL + "/data/2.5/weather?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Report{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "weather upstream responded", "city", city, "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Report{}, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Main == nil || payload.Main.Temp == nil || len(payload.Weather) == 0 {
		return Report{}, ErrMalformedResponse
	}

	first := payload.Weather[0]
	return Report{
		Temperature: *payload.Main.Temp,
		Description: first.Description,
		IconCode:    first.Icon,
		IconURL:     c.IconURL(first.Icon),
	}, nil
}
