package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Polygon aggregates endpoint root.
	DefaultBaseURL = "https://api.polygon.io/v2/aggs/ticker"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// rangeSpec maps a UI range token to a Polygon aggregate window
type rangeSpec struct {
	multiplier int
	timespan   string
	lookback   time.Duration
}

var rangeSpecs = map[string]rangeSpec{
	"1D": {multiplier: 1, timespan: "day", lookback: 3 * 365 * 24 * time.Hour},
	"1W": {multiplier: 1, timespan: "week", lookback: 3 * 365 * 24 * time.Hour},
	"1M": {multiplier: 1, timespan: "month", lookback: 3 * 365 * 24 * time.Hour},
	"3M": {multiplier: 3, timespan: "month", lookback: 5 * 365 * 24 * time.Hour},
	"6M": {multiplier: 6, timespan: "month", lookback: 5 * 365 * 24 * time.Hour},
	"1Y": {multiplier: 1, timespan: "year", lookback: 10 * 365 * 24 * time.Hour},
}

// defaultRangeSpec is used for unrecognized range tokens
var defaultRangeSpec = rangeSpec{multiplier: 1, timespan: "minute", lookback: 24 * time.Hour}

// Client is a Polygon REST API client for price aggregates.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new Polygon API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetAggregates fetches price aggregates for a ticker over the window
// implied by the range token (1D, 1W, 1M, 3M, 6M, 1Y). Unknown tokens
// fall back to minute bars over the last day.
func (c *Client) GetAggregates(ctx context.Context, ticker, timeRange string) (*models.AggsResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	spec, ok := rangeSpecs[timeRange]
	if !ok {
		spec = defaultRangeSpec
	}

	to := time.Now()
	from := to.Add(-spec.lookback)

	reqURL := fmt.Sprintf("%s/%s/range/%d/%s/%s/%s?%s",
		c.baseURL,
		url.PathEscape(ticker),
		spec.multiplier,
		spec.timespan,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		url.Values{"apiKey": {c.apiKey}}.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("ticker", ticker).
			Str("range", timeRange).
			Str("timespan", spec.timespan).
			Msg("Polygon aggregates request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Polygon API error: %s (status: %d)", string(body), resp.StatusCode)
	}

	var payload struct {
		Ticker       string          `json:"ticker"`
		ResultsCount int             `json:"resultsCount"`
		Results      []models.AggBar `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &models.AggsResult{
		Ticker: ticker,
		Range:  timeRange,
		Bars:   payload.Results,
	}, nil
}
