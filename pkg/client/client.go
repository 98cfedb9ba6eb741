package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultUserAgent      = "nimbus-go"
	defaultRequestTimeout = 30 * time.Second
)

// Response is the raw outcome of a service request. Status classification is
// left to the caller.
type Response struct {
	StatusCode int
	Body       string
	Header     http.Header
}

func New(opts ...Option) (*Client, error) {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	if options.Endpoint == "" {
		return nil, fmt.Errorf("missing endpoint")
	}

	u, err := url.Parse(options.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint: missing host in %q", options.Endpoint)
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		timeout := options.RequestTimeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := options.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	namespaces := make(map[string]struct{}, len(options.Namespaces))
	for _, ns := range options.Namespaces {
		namespaces[ns] = struct{}{}
	}

	return &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		token:      options.Token,
		userAgent:  userAgent,
		httpClient: httpClient,
		namespaces: namespaces,
	}, nil
}

// Client issues authenticated requests against a single resource collection.
// It owns the collection's base URL and carries no retry or backoff policy.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	namespaces map[string]struct{}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// AcceptedNamespaces returns the set of vendor-extension property prefixes the
// service accepts. The returned map is shared and must not be mutated.
func (c *Client) AcceptedNamespaces() map[string]struct{} {
	return c.namespaces
}

// Request performs a single blocking HTTP exchange. An empty method defaults to
// GET. The response is returned for any HTTP status; only transport failures
// are errors.
func (c *Client) Request(ctx context.Context, rawurl, method string, headers map[string]string, body string) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawurl, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug().
		Str("method", method).
		Str("url", rawurl).
		Int("status", resp.StatusCode).
		Int("response_size_bytes", len(raw)).
		Str("duration", time.Since(start).String()).
		Msg("Handled request")

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       string(raw),
		Header:     resp.Header,
	}, nil
}
