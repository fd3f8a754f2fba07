// Package fetch loads images by URL for classification requests.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"syscall"
	"time"

	"github.com/okian/swatch/internal/domain/analysis"
	"github.com/okian/swatch/pkg/logger"
	"github.com/okian/swatch/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 12 << 20
	defaultRetries  = 2
	defaultBackoff  = 200 * time.Millisecond
	maxBackoff      = 5 * time.Second
)

var (
	// ErrTooLarge is wrapped in analysis.ErrBadRequest when the body exceeds the limit.
	ErrTooLarge = errors.New("image exceeds size limit")
	// ErrForbiddenHost is wrapped in analysis.ErrBadRequest when a URL resolves to a
	// loopback, private, link-local or otherwise non-public address.
	ErrForbiddenHost = errors.New("image host is not public")
)

// sharedAddressSpace is the carrier-grade NAT range, which netip does not class as private.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Client is an HTTP image fetcher. It implements analysis.Fetcher.
type Client struct {
	http     *http.Client
	maxBytes int64
	retries  int
	backoff  time.Duration
	metrics  *metrics.Manager
	log      logger.Logger

	allowPrivate bool
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithMaxBytes caps the accepted body size.
func WithMaxBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithRetries sets how many times a transient failure is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithBackoff sets the first retry delay; later delays double.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// WithAllowPrivateHosts lets URLs reach loopback and private networks.
// Off by default so callers cannot point the service at internal endpoints.
func WithAllowPrivateHosts(allow bool) Option {
	return func(c *Client) {
		c.allowPrivate = allow
	}
}

// WithHTTPClient replaces the underlying client, keeping the configured timeout.
// The host check lives in the default transport, so h must enforce its own.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			timeout := c.http.Timeout
			c.http = h
			if c.http.Timeout == 0 {
				c.http.Timeout = timeout
			}
		}
	}
}

// WithMetrics records fetch latency and failures on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		maxBytes: defaultMaxBytes,
		retries:  defaultRetries,
		backoff:  defaultBackoff,
		metrics:  metrics.Default(),
		log:      logger.Get().Named("fetch"),
	}
	// The check runs on the resolved address, after DNS, for every dial and redirect.
	dialer := &net.Dialer{Timeout: defaultTimeout, KeepAlive: 30 * time.Second, Control: c.checkAddr}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	c.http = &http.Client{Timeout: defaultTimeout, Transport: transport}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// attemptError carries whether a failed attempt may be retried.
type attemptError struct {
	reason    string
	retryable bool
	err       error
}

func (e *attemptError) Error() string { return e.err.Error() }
func (e *attemptError) Unwrap() error { return e.err }

// Fetch downloads rawURL. Network and upstream failures wrap
// analysis.ErrFetchFailed; unusable URLs and oversized bodies wrap
// analysis.ErrBadRequest.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: image url must be an absolute http(s) url", analysis.ErrBadRequest)
	}

	start := time.Now()
	delay := c.backoff
	var last *attemptError
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.log.Debug(ctx, "retrying image fetch",
				logger.String("host", u.Host),
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay))
			select {
			case <-ctx.Done():
				c.record(start, "canceled")
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, maxBackoff)
		}

		body, aerr := c.attempt(ctx, u.String())
		if aerr == nil {
			c.record(start, "")
			return body, nil
		}
		last = aerr
		if ctx.Err() != nil {
			c.record(start, "canceled")
			return nil, ctx.Err()
		}
		if !aerr.retryable {
			break
		}
	}

	c.record(start, last.reason)
	c.log.Warn(ctx, "image fetch failed",
		logger.String("host", u.Host),
		logger.String("reason", last.reason),
		logger.Error(last))
	if errors.Is(last, ErrTooLarge) || errors.Is(last, ErrForbiddenHost) {
		return nil, fmt.Errorf("%w: %w", analysis.ErrBadRequest, last)
	}
	return nil, fmt.Errorf("%w: %w", analysis.ErrFetchFailed, last)
}

func (c *Client) attempt(ctx context.Context, target string) ([]byte, *attemptError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &attemptError{reason: "request", err: err}
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.http.Do(req)
	if errors.Is(err, ErrForbiddenHost) {
		return nil, &attemptError{reason: "forbidden_host", err: err}
	}
	if err != nil {
		return nil, &attemptError{reason: "network", retryable: true, err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		return nil, &attemptError{
			reason:    "status_" + strconv.Itoa(resp.StatusCode),
			retryable: retryable,
			err:       fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	if resp.ContentLength > c.maxBytes {
		return nil, &attemptError{reason: "too_large", err: ErrTooLarge}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &attemptError{reason: "read", retryable: true, err: err}
	}
	if int64(len(body)) > c.maxBytes {
		return nil, &attemptError{reason: "too_large", err: ErrTooLarge}
	}
	return body, nil
}

func (c *Client) record(start time.Time, reason string) {
	if c.metrics != nil {
		c.metrics.RecordFetch(time.Since(start), reason)
	}
}

func (c *Client) checkAddr(_, address string, _ syscall.RawConn) error {
	if c.allowPrivate {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !publicAddr(ip) {
		return fmt.Errorf("%w: %s", ErrForbiddenHost, ip)
	}
	return nil
}

func publicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsGlobalUnicast() && !ip.IsPrivate() && !sharedAddressSpace.Contains(ip)
}
