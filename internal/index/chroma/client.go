package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for a local Chroma server.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 20
)

// Client is a Chroma REST API client implementing the index store
// contract against a single collection.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter

	mu           sync.Mutex
	collectionID string
}

var _ interfaces.IndexStore = (*Client)(nil)

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

// NewClient creates a new Chroma client bound to the named collection.
// The collection is created on first use if it does not exist.
func NewClient(collection string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		collection: collection,
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

// post performs a POST request to the API.
func (c *Client) post(ctx context.Context, path string, payload interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("Chroma API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Endpoint:   path,
		}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ensureCollection resolves the collection id, creating the collection
// if needed. The id is cached after the first call.
func (c *Client) ensureCollection(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.collectionID != "" {
		return c.collectionID, nil
	}

	payload := map[string]interface{}{
		"name":          c.collection,
		"get_or_create": true,
	}

	var result struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := c.post(ctx, "/api/v1/collections", payload, &result); err != nil {
		return "", fmt.Errorf("failed to ensure collection %s: %w", c.collection, err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("collection %s resolved without an id", c.collection)
	}

	if c.logger != nil {
		c.logger.Info().
			Str("collection", c.collection).
			Str("id", result.ID).
			Msg("Chroma collection ready")
	}

	c.collectionID = result.ID
	return c.collectionID, nil
}

// Get returns all records matching the metadata filter
func (c *Client) Get(ctx context.Context, filter map[string]string) (*interfaces.IndexResult, error) {
	collectionID, err := c.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"include": []string{"documents", "metadatas"},
	}
	if len(filter) > 0 {
		where := make(map[string]interface{}, len(filter))
		for key, value := range filter {
			where[key] = value
		}
		payload["where"] = where
	}

	var result struct {
		IDs       []string               `json:"ids"`
		Documents []string               `json:"documents"`
		Metadatas []models.ChunkMetadata `json:"metadatas"`
	}
	path := fmt.Sprintf("/api/v1/collections/%s/get", collectionID)
	if err := c.post(ctx, path, payload, &result); err != nil {
		return nil, err
	}

	return &interfaces.IndexResult{
		IDs:       result.IDs,
		Documents: result.Documents,
		Metadatas: result.Metadatas,
	}, nil
}

// Query returns the top-n records most similar to the query text
func (c *Client) Query(ctx context.Context, text string, n int) (*interfaces.QueryResult, error) {
	collectionID, err := c.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"query_texts": []string{text},
		"n_results":   n,
		"include":     []string{"documents", "metadatas"},
	}

	// Query responses are batched per query text
	var result struct {
		Documents [][]string               `json:"documents"`
		Metadatas [][]models.ChunkMetadata `json:"metadatas"`
	}
	path := fmt.Sprintf("/api/v1/collections/%s/query", collectionID)
	if err := c.post(ctx, path, payload, &result); err != nil {
		return nil, err
	}

	out := &interfaces.QueryResult{}
	if len(result.Documents) > 0 {
		out.Documents = result.Documents[0]
	}
	if len(result.Metadatas) > 0 {
		out.Metadatas = result.Metadatas[0]
	}
	return out, nil
}

// Add inserts a batch of records
func (c *Client) Add(ctx context.Context, ids []string, documents []string, metadatas []models.ChunkMetadata) error {
	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("mismatched batch lengths: %d ids, %d documents, %d metadatas",
			len(ids), len(documents), len(metadatas))
	}
	if len(ids) == 0 {
		return nil
	}

	collectionID, err := c.ensureCollection(ctx)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"ids":       ids,
		"documents": documents,
		"metadatas": metadatas,
	}
	path := fmt.Sprintf("/api/v1/collections/%s/add", collectionID)
	return c.post(ctx, path, payload, nil)
}

// Delete removes records by id
func (c *Client) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	collectionID, err := c.ensureCollection(ctx)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"ids": ids,
	}
	path := fmt.Sprintf("/api/v1/collections/%s/delete", collectionID)
	return c.post(ctx, path, payload, nil)
}
