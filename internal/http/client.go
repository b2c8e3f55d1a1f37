// Package http provides the HTTP transport shared by all service clients.
package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/loft-iot/loft-client/internal/auth"
	"github.com/loft-iot/loft-client/pkg/loft"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultRetryMax     = 3
	defaultRetryWaitMin = 1 * time.Second
	defaultRetryWaitMax = 30 * time.Second
	defaultUserAgent    = "loft-client/1.0"
	defaultCacheTTL     = 30 * time.Second
)

// Request is a single API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    interface{}
}

// Response is the outcome of an API request. It is returned together with
// an error for non-2xx statuses, so callers can still inspect the status
// and payload.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client executes API requests with retries, authentication, optional
// response caching and optional metrics.
type Client struct {
	baseURL       string
	httpClient    *retryablehttp.Client
	tokenProvider auth.TokenProvider
	userAgent     string
	logger        loft.Logger
	debug         bool
	cache         loft.Cache
	cacheTTL      time.Duration
	metrics       *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output.
func WithLogger(logger loft.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig tunes the retry behavior.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithSkipTLSVerify disables TLS certificate verification.
func WithSkipTLSVerify(skip bool) Option {
	return func(c *Client) {
		if !skip {
			return
		}

		c.httpClient.HTTPClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // explicit opt-in
		}
	}
}

// WithCache enables response caching for GET requests. A zero ttl selects
// a default.
func WithCache(cache loft.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache

		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithMetrics attaches a metrics sink.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewClient creates a new API client for the given base URL. tokenProvider
// may be nil for unauthenticated access.
func NewClient(baseURL string, tokenProvider auth.TokenProvider, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = defaultRetryMax
	retryClient.RetryWaitMin = defaultRetryWaitMin
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.HTTPClient.Timeout = defaultTimeout
	retryClient.Logger = nil

	client := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    retryClient,
		tokenProvider: tokenProvider,
		userAgent:     defaultUserAgent,
		cacheTTL:      defaultCacheTTL,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Metrics returns the attached metrics sink, or nil.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// Do executes a request. For non-2xx responses it returns both the response
// and a *loft.APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	cacheKey := c.cacheKey(req)
	if cached := c.cacheLookup(ctx, req, cacheKey); cached != nil {
		return cached, nil
	}

	start := time.Now()

	resp, err := c.execute(ctx, req)

	if c.metrics != nil {
		c.metrics.observe(req.Method, resp, err, time.Since(start))
	}

	if err != nil {
		return resp, err
	}

	c.cacheStore(ctx, req, cacheKey, resp)

	return resp, nil
}

func (c *Client) execute(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var body io.Reader

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	if err := c.authorize(ctx, httpReq); err != nil {
		return nil, err
	}

	c.logRequest(req, fullURL)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	c.logResponse(req, resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, apiError(resp)
	}

	return resp, nil
}

func (c *Client) authorize(ctx context.Context, httpReq *retryablehttp.Request) error {
	if c.tokenProvider == nil {
		return nil
	}

	credentials, err := c.tokenProvider.ProvideToken(ctx)
	if err != nil {
		return fmt.Errorf("providing credentials: %w", err)
	}

	switch {
	case credentials == nil:
	case credentials.Bearer != "":
		httpReq.Header.Set("Authorization", "Bearer "+credentials.Bearer)
	case credentials.Basic != nil:
		httpReq.SetBasicAuth(credentials.Basic.Username, credentials.Basic.Password)
	}

	return nil
}

// apiError converts a non-2xx response into a *loft.APIError, decoding the
// error payload when one is present.
func apiError(resp *Response) error {
	apiErr := &loft.APIError{Status: resp.StatusCode}

	var info loft.ErrorInformation
	if err := json.Unmarshal(resp.Body, &info); err == nil && (info.Error != "" || info.Message != "") {
		apiErr.Info = &info
	}

	return apiErr
}

func (c *Client) cacheKey(req *Request) string {
	if c.cache == nil || req.Method != http.MethodGet {
		return ""
	}

	key := req.Path
	if len(req.Query) > 0 {
		key += "?" + req.Query.Encode()
	}

	return key
}

func (c *Client) cacheLookup(ctx context.Context, req *Request, key string) *Response {
	if key == "" {
		return nil
	}

	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("cache hit", map[string]interface{}{"key": key})
	}

	return &Response{StatusCode: http.StatusOK, Body: entry.Data}
}

func (c *Client) cacheStore(ctx context.Context, req *Request, key string, resp *Response) {
	if key == "" || resp.StatusCode != http.StatusOK {
		return
	}

	_ = c.cache.Set(ctx, key, &loft.CacheEntry{
		Data:      resp.Body,
		ExpiresAt: time.Now().Add(c.cacheTTL),
		ETag:      resp.Headers.Get("ETag"),
	})
}

func (c *Client) logRequest(req *Request, fullURL string) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method": req.Method,
		"url":    fullURL,
	})
}

func (c *Client) logResponse(req *Request, resp *Response) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"method": req.Method,
		"path":   req.Path,
		"status": resp.StatusCode,
		"size":   len(resp.Body),
	})
}

// Get executes a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post executes a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put executes a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch executes a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete executes a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}
