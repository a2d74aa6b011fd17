package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/qkart/storefront/internal/domain"
	"github.com/qkart/storefront/internal/infrastructure/metrics"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxErrorBodyBytes bounds how much of an error response is read
const maxErrorBodyBytes = 64 * 1024

// Endpoint labels used for logging and metrics
const (
	endpointProducts = "GET /products"
	endpointSearch   = "GET /products/search"
	endpointGetCart  = "GET /cart"
	endpointPostCart = "POST /cart"
)

// Options configures a Client
type Options struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Burst     int
	Logger    *zap.Logger
}

// Client handles communication with the remote shop API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	debug       bool
}

// NewClient creates a new shop API client
func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		logger:      opts.Logger.Named("shopapi"),
	}
}

// SetDebug enables logging of upstream response bodies
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// ListProducts fetches the full catalog
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, endpointProducts, http.MethodGet, c.baseURL+"/products", "", nil, &products); err != nil {
		return nil, err
	}
	return nonNilProducts(products), nil
}

// SearchProducts fetches the catalog filtered by query. A 404 from the
// API comes back as domain.ErrNotFound.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	params := url.Values{}
	params.Set("value", query)
	reqURL := fmt.Sprintf("%s/products/search?%s", c.baseURL, params.Encode())

	var products []domain.Product
	if err := c.do(ctx, endpointSearch, http.MethodGet, reqURL, "", nil, &products); err != nil {
		return nil, err
	}
	return nonNilProducts(products), nil
}

// GetCart fetches the cart entries of the token's owner
func (c *Client) GetCart(ctx context.Context, token string) ([]domain.CartEntry, error) {
	var entries []domain.CartEntry
	if err := c.do(ctx, endpointGetCart, http.MethodGet, c.baseURL+"/cart", token, nil, &entries); err != nil {
		return nil, err
	}
	return nonNilEntries(entries), nil
}

// UpdateCart sets the quantity of one product and returns the updated cart.
// A quantity of zero removes the product.
func (c *Client) UpdateCart(ctx context.Context, token string, update domain.CartUpdate) ([]domain.CartEntry, error) {
	var entries []domain.CartEntry
	if err := c.do(ctx, endpointPostCart, http.MethodPost, c.baseURL+"/cart", token, update, &entries); err != nil {
		return nil, err
	}
	return nonNilEntries(entries), nil
}

// do executes one request and decodes a 200 response into out.
// Non-2xx responses become *domain.ServerError (also matching
// domain.ErrNotFound on 404); transport and decode failures wrap
// domain.ErrConnectivity.
func (c *Client) do(ctx context.Context, endpoint, method, reqURL, token string, body, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", domain.ErrConnectivity, err)
	}

	req, err := newRequest(ctx, method, reqURL, token, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(endpoint, 0, time.Since(start))
		c.logger.Warn("request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstream(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := readLimitedBody(resp.Body, maxErrorBodyBytes)
		serverErr := &domain.ServerError{
			Status:  resp.StatusCode,
			Message: extractMessage(errBody, resp.StatusCode),
		}
		c.logger.Info("shop API error",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", serverErr.Message))
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", domain.ErrNotFound, serverErr)
		}
		return serverErr
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", domain.ErrConnectivity, err)
	}
	c.debugLog(endpoint, payload)

	if err := json.Unmarshal(payload, out); err != nil {
		c.logger.Warn("decode failed", zap.String("endpoint", endpoint), zap.Error(err))
		return fmt.Errorf("%w: failed to decode response: %v", domain.ErrConnectivity, err)
	}
	return nil
}

func newRequest(ctx context.Context, method, reqURL, token string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "QKart-Storefront/1.0")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// extractMessage pulls the user-facing message out of an error body of the
// form {"success": false, "message": "..."}
func extractMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "message"); msg.Exists() && msg.String() != "" {
			return msg.String()
		}
	}
	return http.StatusText(status)
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func (c *Client) debugLog(endpoint string, payload []byte) {
	if !c.debug {
		return
	}
	c.logger.Debug("shop API response", zap.String("endpoint", endpoint), zap.ByteString("body", payload))
}

// JSON null decodes to a nil slice; a successful response is never "no data"
func nonNilProducts(p []domain.Product) []domain.Product {
	if p == nil {
		return []domain.Product{}
	}
	return p
}

func nonNilEntries(e []domain.CartEntry) []domain.CartEntry {
	if e == nil {
		return []domain.CartEntry{}
	}
	return e
}
