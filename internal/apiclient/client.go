package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const (
	xsrfCookieName = "XSRF-TOKEN"
	xsrfHeaderName = "X-XSRF-TOKEN"
)

// Client issues same-origin JSON calls that carry cookies from its own jar.
// Each Client owns one jar, so one Client represents one browser-like session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	before     []RequestHook
	after      []ResponseHook
}

// Response is a fully read 2xx response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. The client is copied, and the copy gets its
// own jar if it has none, so one client can be shared across visitors.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		hc := *httpClient
		c.httpClient = &hc
	}
}

// WithBeforeRequest appends a hook run after headers are set and before the call is issued
func WithBeforeRequest(hook RequestHook) Option {
	return func(c *Client) {
		c.before = append(c.before, hook)
	}
}

// WithAfterResponse appends a hook run once the call has resolved, successfully or not
func WithAfterResponse(hook ResponseHook) Option {
	return func(c *Client) {
		c.after = append(c.after, hook)
	}
}

// WithLogger installs the request/response logging hooks.
// quietPaths get 401s logged at debug level.
func WithLogger(logger *slog.Logger, quietPaths ...string) Option {
	return func(c *Client) {
		c.before = append(c.before, LogRequests(logger))
		c.after = append(c.after, LogResponses(logger, quietPaths...))
	}
}

// New creates a client for the given origin
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		headers: http.Header{
			"Accept":           {"application/json"},
			"X-Requested-With": {"XMLHttpRequest"},
		},
	}
	c.before = append(c.before, c.echoXSRF)

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}

	return c, nil
}

// BaseURL returns the origin the client calls
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET for path
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST for path with an optional JSON body
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Do issues method on path. A nil body sends no body and no Content-Type.
// Non-2xx responses and transport failures are returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range c.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, hook := range c.before {
		hook(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := &Error{Method: method, Path: path, Message: err.Error(), Err: err}
		c.runAfter(req, nil, apiErr)
		return nil, apiErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := &Error{Method: method, Path: path, Message: err.Error(), Err: err}
		c.runAfter(req, nil, apiErr)
		return nil, apiErr
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       data,
			Message:    fmt.Sprintf("Request failed with status code %d", resp.StatusCode),
		}
		c.runAfter(req, result, apiErr)
		return nil, apiErr
	}

	c.runAfter(req, result, nil)
	return result, nil
}

// CookieNames lists the cookies the jar would send to the base URL
func (c *Client) CookieNames() []string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil
	}
	cookies := c.httpClient.Jar.Cookies(u)
	names := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		names = append(names, cookie.Name)
	}
	return names
}

func (c *Client) runAfter(req *http.Request, resp *Response, err error) {
	for _, hook := range c.after {
		hook(req, resp, err)
	}
}

// echoXSRF copies the XSRF-TOKEN cookie into the X-XSRF-TOKEN header.
// Sanctum rejects stateful mutating calls without it.
func (c *Client) echoXSRF(req *http.Request) {
	if req.Header.Get(xsrfHeaderName) != "" || c.httpClient.Jar == nil {
		return
	}
	for _, cookie := range c.httpClient.Jar.Cookies(req.URL) {
		if cookie.Name != xsrfCookieName {
			continue
		}
		value := cookie.Value
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		req.Header.Set(xsrfHeaderName, value)
		return
	}
}
