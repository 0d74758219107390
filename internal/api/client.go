// Package api is a read-only client for the SolarEdge monitoring API.
//
// Every endpoint returns a *Response holding the raw body plus the decoded
// value. Depending on the client options the value is passed through the
// date parser, localized to the site's time zone and flattened into a table.
//
// A Client memoizes the read endpoints that describe a site. The memo is
// not safe for concurrent use: share a Client across goroutines only with
// external locking, or give each goroutine its own.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/internal/memo"
	"github.com/huangsam/solaredge/schema"
	"golang.org/x/time/rate"
)

// DefaultVersion is reported in the User-Agent when no version is set.
const DefaultVersion = "dev"

var (
	// ErrMissingAPIKey is returned when a client is built without an API key.
	ErrMissingAPIKey = errors.New("must provide a SolarEdge api_key value")

	// ErrMissingSiteID is returned when a command needs a site and none was given.
	ErrMissingSiteID = errors.New("must provide a site_id value")

	// ErrTransport wraps network failures and timeouts.
	ErrTransport = errors.New("transport failure")
)

// Client calls the monitoring API on behalf of one API key.
type Client struct {
	apiKey    string
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *log.Logger
	limiter   *rate.Limiter
	stores    contract.CacheManager
	now       func() time.Time

	datetime      bool
	tabular       bool
	timezoneCache bool

	memoSize  int
	responses *memo.Cache[*Response]
	timezones *memo.Cache[string]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API host.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger used for request and decode diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithCacheManager supplies the persistent timezone cache and request history.
func WithCacheManager(mgr contract.CacheManager) Option {
	return func(c *Client) { c.stores = mgr }
}

// WithMemoSize bounds the memo to size entries per kind using LRU eviction.
// Zero keeps the memo unbounded, which means repeated calls never miss.
func WithMemoSize(size int) Option {
	return func(c *Client) { c.memoSize = size }
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithDatetime toggles parsing of date-like strings into instants.
func WithDatetime(enabled bool) Option {
	return func(c *Client) { c.datetime = enabled }
}

// WithTabular toggles building Response.Table.
func WithTabular(enabled bool) Option {
	return func(c *Client) { c.tabular = enabled }
}

// WithTimezoneCache toggles the persistent site timezone cache.
func WithTimezoneCache(enabled bool) Option {
	return func(c *Client) { c.timezoneCache = enabled }
}

// WithVersion sets the version advertised in the User-Agent header.
func WithVersion(version string) Option {
	return func(c *Client) { c.userAgent = UserAgent(version) }
}

// withClock overrides the clock used for request history.
func withClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// UserAgent is the User-Agent header sent by a client built at version.
func UserAgent(version string) string {
	return "solaredge-interface/" + version
}

// NewClient builds a client. The API key is required.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:        apiKey,
		baseURL:       contract.DefaultBaseURL,
		userAgent:     UserAgent(DefaultVersion),
		http:          &http.Client{Timeout: contract.DefaultTimeout},
		logger:        log.Default(),
		now:           time.Now,
		datetime:      true,
		tabular:       true,
		timezoneCache: true,
		memoSize:      contract.DefaultMemoSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	if c.responses, err = memo.New[*Response](c.memoSize); err != nil {
		return nil, err
	}
	if c.timezones, err = memo.New[string](c.memoSize); err != nil {
		return nil, err
	}
	return c, nil
}

// MemoStats reports memo hits and misses across response and timezone lookups.
func (c *Client) MemoStats() (hits, misses int) {
	rh, rm := c.responses.Stats()
	th, tm := c.timezones.Stats()
	return rh + th, rm + tm
}

// call describes one HTTP GET against the API.
type call struct {
	endpoint string
	path     []string
	query    url.Values
	siteID   string
}

// fetch performs the request and returns the raw response. Only transport
// failures are errors; any status code is returned as is.
func (c *Client) fetch(ctx context.Context, req call) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	query := url.Values{}
	query.Set("api_key", c.apiKey)
	for key, values := range req.query {
		query[key] = values
	}
	target := joinURL(c.baseURL, req.path...) + "?" + query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", req.endpoint, err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	start := c.now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.record(req, redactURL(target), 0, c.now().Sub(start), start, true)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	elapsed := c.now().Sub(start)
	if err != nil {
		c.record(req, redactURL(target), httpResp.StatusCode, elapsed, start, true)
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	finalURL := redactURL(httpResp.Request.URL.String())
	c.logger.Debug("http-response", "url", finalURL, "status", httpResp.StatusCode, "elapsed", elapsed)
	c.record(req, finalURL, httpResp.StatusCode, elapsed, start, httpResp.StatusCode >= http.StatusBadRequest)

	return &Response{
		URL:        finalURL,
		Request:    httpResp.Request,
		Header:     httpResp.Header,
		Cookies:    httpResp.Cookies(),
		StatusCode: httpResp.StatusCode,
		Text:       string(body),
		Elapsed:    elapsed,
	}, nil
}

// record stores the call in the request history when one is configured.
func (c *Client) record(req call, target string, status int, elapsed time.Duration, at time.Time, failed bool) {
	if c.stores == nil {
		return
	}
	history := c.stores.GetHistoryStore()
	if history == nil {
		return
	}
	rec := schema.RequestRecord{
		Endpoint:    req.endpoint,
		URL:         target,
		StatusCode:  int32(status),
		ElapsedMs:   elapsed.Milliseconds(),
		RequestedAt: at.UTC(),
		Failed:      failed,
	}
	if req.siteID != "" {
		siteID := req.siteID
		rec.SiteID = &siteID
	}
	if _, err := history.RecordRequest(rec); err != nil {
		c.logger.Warn("failed to record request", "endpoint", req.endpoint, "err", err)
	}
}

// joinURL joins parts with single slashes.
func joinURL(base string, parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, strings.TrimRight(base, "/"))
	for _, part := range parts {
		segments = append(segments, strings.Trim(part, "/"))
	}
	return strings.Join(segments, "/")
}

// redactURL drops the api_key query parameter.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := u.Query()
	if !query.Has("api_key") {
		return raw
	}
	query.Del("api_key")
	u.RawQuery = query.Encode()
	return u.String()
}
