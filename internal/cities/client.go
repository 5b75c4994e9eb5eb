package cities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gateway performs the raw network calls against the /cities resource.
// It is implemented by *Client and can be faked in tests.
type Gateway interface {
	FetchAll(ctx context.Context) ([]City, error)
	FetchOne(ctx context.Context, id ID) (City, error)
	Create(ctx context.Context, draft Draft) (City, error)
	Remove(ctx context.Context, id ID) error
}

// Ensure Client implements Gateway at compile time.
var _ Gateway = (*Client)(nil)

// Client talks to a cities backend over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
	timeout   time.Duration
}

const (
	// DefaultBaseURL is where the development backend listens.
	DefaultBaseURL   = "http://localhost:9000"
	defaultUserAgent = "worldwise/0.1"
	resourcePath     = "cities"
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. Zero leaves requests unbounded. The
// timeout is applied to a copy of the http.Client, so a client passed with
// WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a Client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// BaseURL returns the normalized backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchAll retrieves the whole collection.
func (c *Client) FetchAll(ctx context.Context) ([]City, error) {
	const op = "fetch all"
	var payload []City
	if err := c.do(ctx, op, http.MethodGet, c.collectionURL(), nil, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = []City{}
	}
	return payload, nil
}

// FetchOne retrieves a single city.
func (c *Client) FetchOne(ctx context.Context, id ID) (City, error) {
	const op = "fetch one"
	var payload City
	if err := c.do(ctx, op, http.MethodGet, c.recordURL(id), nil, &payload); err != nil {
		return City{}, err
	}
	if payload.ID == 0 {
		return City{}, newError(op, ErrNotFound, fmt.Errorf("city %s", id))
	}
	return payload, nil
}

// Create validates draft, posts it and returns the stored city with its new id.
func (c *Client) Create(ctx context.Context, draft Draft) (City, error) {
	const op = "create"
	if err := draft.Validate(); err != nil {
		return City{}, newError(op, ErrValidation, err)
	}
	body, err := json.Marshal(draft)
	if err != nil {
		return City{}, newError(op, ErrValidation, err)
	}
	var payload City
	if err := c.do(ctx, op, http.MethodPost, c.collectionURL(), body, &payload); err != nil {
		return City{}, err
	}
	if payload.ID <= 0 {
		return City{}, newError(op, ErrDecode, fmt.Errorf("response has no id"))
	}
	return payload, nil
}

// Remove deletes a city. A city that is already gone counts as removed.
func (c *Client) Remove(ctx context.Context, id ID) error {
	const op = "remove"
	err := c.do(ctx, op, http.MethodDelete, c.recordURL(id), nil, nil)
	if err != nil && KindOf(err) == ErrNotFound {
		return nil
	}
	return err
}

func (c *Client) collectionURL() *url.URL {
	return c.baseURL.JoinPath(resourcePath)
}

func (c *Client) recordURL(id ID) *url.URL {
	return c.baseURL.JoinPath(resourcePath, id.String())
}

func (c *Client) do(ctx context.Context, op, method string, target *url.URL, body []byte, dest any) error {
	if c == nil {
		return newError(op, ErrNetwork, fmt.Errorf("client is nil"))
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return newError(op, ErrNetwork, fmt.Errorf("create request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return newError(op, ErrNetwork, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.DebugContext(ctx, "cities request",
		slog.String("method", method),
		slog.String("url", target.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
		slog.String("request_id", requestID),
	)

	if err := statusError(op, method, target, resp); err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return newError(op, ErrDecode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func statusError(op, method string, target *url.URL, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	cause := fmt.Errorf("%s %s returned status %d", method, target.Path, resp.StatusCode)
	switch resp.StatusCode {
	case http.StatusNotFound:
		return newError(op, ErrNotFound, cause)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if msg := readErrorMessage(resp.Body); msg != "" {
			cause = fmt.Errorf("%w: %s", cause, msg)
		}
		return newError(op, ErrValidation, cause)
	default:
		return newError(op, ErrNetwork, cause)
	}
}

// readErrorMessage extracts {"error": "..."} bodies, falling back to raw text.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
