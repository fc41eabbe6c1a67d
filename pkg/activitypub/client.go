package activitypub

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/smolitux/fedlink/pkg/logging"
)

// ContentType is the ActivityPub media type.
const ContentType = "application/activity+json"

// DefaultTimeout bounds each request when the client builds its own
// http.Client.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps response bodies.
const maxBodySize = 10 << 20

var (
	itemsPath        = jp.MustParseString("$.items")
	orderedItemsPath = jp.MustParseString("$.orderedItems")
)

// Client performs ActivityPub requests.
type Client struct {
	httpClient *http.Client
	headers    http.Header
	log        *slog.Logger
	maxBody    int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.httpClient = &http.Client{
			Transport:     cl.httpClient.Transport,
			CheckRedirect: cl.httpClient.CheckRedirect,
			Jar:           cl.httpClient.Jar,
			Timeout:       d,
		}
	}
}

// WithMaxBodySize caps how many response bytes are read. Non-positive
// values keep the default.
func WithMaxBodySize(n int64) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxBody = n
		}
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(cl *Client) {
		cl.headers.Add(key, value)
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(cl *Client) {
		if log != nil {
			cl.log = log
		}
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		headers:    http.Header{},
		log:        logging.Nop(),
		maxBody:    maxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch GETs rawURL and returns the decoded JSON body.
func (c *Client) Fetch(ctx context.Context, rawURL string, headers http.Header) (any, error) {
	body, err := c.get(ctx, rawURL, headers)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidBody)
	}
	v, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return v, nil
}

// Search GETs endpoint with q=query and returns the items array of the
// response unchanged. Collections that only carry orderedItems are also
// accepted. A response without either array yields nil.
func (c *Client) Search(ctx context.Context, endpoint, query string, headers http.Header) ([]any, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	v, err := c.Fetch(ctx, u.String(), headers)
	if err != nil {
		return nil, err
	}
	return extractItems(v), nil
}

func extractItems(v any) []any {
	for _, path := range []jp.Expr{itemsPath, orderedItemsPath} {
		for _, found := range path.Get(v) {
			if items, ok := found.([]any); ok {
				return items
			}
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, rawURL string, headers http.Header) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = mergeHeaders(c.headers, headers)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", u.Redacted(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("activitypub request",
		"url", u.Redacted(),
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &StatusError{
			URL:        u.Redacted(),
			StatusCode: resp.StatusCode,
			Status:     strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, u.Redacted(), c.maxBody)
	}
	return body, nil
}

// mergeHeaders layers defaults, client headers and request headers. Later
// layers replace earlier values for the same key.
func mergeHeaders(client, request http.Header) http.Header {
	h := http.Header{}
	h.Set("Accept", ContentType)
	for _, layer := range []http.Header{client, request} {
		for k, vs := range layer {
			h[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
		}
	}
	return h
}
