package httpx

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-cleanhttp"
)

const (
	MediaTypeJSON   = "application/json"
	contentTypeJSON = "application/json; charset=utf-8"
)

// Client issues requests against paths relative to a base URL. Headers are
// fixed at construction, so a Client can be shared between goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type options struct {
	headers    http.Header
	httpClient *http.Client
}

type Option func(*options)

// WithBasicAuthToken authenticates with an empty user name and the personal
// access token as a password.
func WithBasicAuthToken(token string) Option {
	return WithHeader("Authorization", BasicAuthHeader("", token))
}

// WithAccept replaces the default Accept media type.
func WithAccept(mediaType string) Option {
	return func(o *options) {
		o.headers.Set("Accept", mediaType)
	}
}

func WithHeader(key, value string) Option {
	return func(o *options) {
		o.headers.Set(key, value)
	}
}

// WithHTTPClient sets the underlying client. Its transport is wrapped, the
// client itself is not modified.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// NewClient returns a client for baseURL. No timeout is set unless a custom
// http.Client with one is passed.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	o := &options{headers: http.Header{}}
	o.headers.Set("Accept", MediaTypeJSON)
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		o.httpClient = cleanhttp.DefaultPooledClient()
	}

	wrapped := *o.httpClient
	wrapped.Transport = &headersTransport{
		headers: o.headers,
		wrap:    o.httpClient.Transport,
	}

	return &Client{
		baseURL:    base,
		httpClient: &wrapped,
	}, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the absolute URL for a relative path: the base URL and the path
// are concatenated as is.
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) PostJSON(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	return c.sendJSON(ctx, http.MethodPost, path, payload)
}

func (c *Client) PutJSON(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	return c.sendJSON(ctx, http.MethodPut, path, payload)
}

func (c *Client) PatchJSON(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	return c.sendJSON(ctx, "PATCH", path, payload)
}

// Do sends a request with an optional body. A body must be fully buffered,
// requests are not streamed.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload interface{}) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", method, err)
	}
	return c.Do(ctx, method, path, data)
}

// BasicAuthHeader returns the value of a Basic Authorization header.
func BasicAuthHeader(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

// normalizeBaseURL checks the URL and appends a slash when it has no path,
// so "https://host" and "https://host/" resolve relative paths the same way.
func normalizeBaseURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base URL '%s' should be absolute", baseURL)
	}
	if u.Path == "" && u.RawQuery == "" && u.Fragment == "" {
		return baseURL + "/", nil
	}
	return baseURL, nil
}

type headersTransport struct {
	headers http.Header
	wrap    http.RoundTripper
}

func (t *headersTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrip must not modify the original request.
	req = req.Clone(req.Context())
	for key, values := range t.headers {
		req.Header[key] = append([]string(nil), values...)
	}

	wrap := t.wrap
	if wrap == nil {
		wrap = http.DefaultTransport
	}
	return wrap.RoundTrip(req)
}
