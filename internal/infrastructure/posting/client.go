package posting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/skillmatch/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the per-request timeout when none is configured
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the fetcher to job boards
	DefaultUserAgent = "Mozilla/5.0 (compatible; SkillMatch/1.0)"

	maxAttempts  = 3
	maxBodyBytes = 5 << 20
)

// Error describes a failed posting fetch. Cause is one of the domain sentinels.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures a Client
type Options struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerMinute int // 0 disables client-side limiting

	// AllowPrivateNetworks lets the client connect to loopback, private and
	// link-local addresses. Postings come from user-supplied URLs, so keep it off
	// unless every caller is trusted.
	AllowPrivateNetworks bool
}

// Client downloads job postings and reduces them to their main text
type Client struct {
	httpClient  *http.Client
	userAgent   string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	debug       bool
}

// NewClient creates a posting client
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60), opts.RequestsPerMinute)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: newTransport(opts.AllowPrivateNetworks),
		},
		userAgent:   opts.UserAgent,
		rateLimiter: limiter,
		backoff:     exponentialBackoff,
	}
}

// blockedAddressError is returned by the dialer for addresses outside the public internet
type blockedAddressError struct {
	addr netip.Addr
}

func (e *blockedAddressError) Error() string {
	return fmt.Sprintf("address %s is not publicly routable", e.addr)
}

// Ranges that the netip predicates do not cover but that still lead into private infrastructure
var nonPublicPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("64:ff9b::/96"),
}

// checkDialAddress rejects a resolved ip:port that is not publicly routable
func checkDialAddress(address string) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("unexpected dial address %q: %w", address, err)
	}

	addr := addrPort.Addr().Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() || addr.IsMulticast() {
		return &blockedAddressError{addr: addr}
	}
	for _, prefix := range nonPublicPrefixes {
		if prefix.Contains(addr) {
			return &blockedAddressError{addr: addr}
		}
	}
	return nil
}

// newTransport checks every connection after DNS resolution, which covers redirects too.
// The guarded transport ignores proxy settings since a proxy would dial on its behalf.
func newTransport(allowPrivateNetworks bool) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if allowPrivateNetworks {
		return transport
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			return checkDialAddress(address)
		},
	}
	transport.DialContext = dialer.DialContext
	transport.Proxy = nil
	return transport
}

// SetDebug enables or disables verbose logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

func (c *Client) debugLog(format string, args ...any) {
	if c.debug {
		log.Printf("[FETCH] "+format, args...)
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt: 500ms, 1s, 2s
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// FetchPosting downloads rawURL and returns the posting text.
// HTML pages are reduced to their job description; plain text is returned as-is.
func (c *Client) FetchPosting(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", &Error{URL: rawURL, Message: "invalid URL", Cause: domain.ErrInvalidRequest}
	}

	c.debugLog("FetchPosting called with url: %q", rawURL)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, c.backoff(attempt-1)); err != nil {
				return "", &Error{URL: rawURL, Message: "cancelled", Cause: fmt.Errorf("%w: %v", domain.ErrFetchFailure, err)}
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			log.Printf("[FETCH] Rate limiter error: %v", err)
			return "", &Error{URL: rawURL, Message: "rate limiter", Cause: fmt.Errorf("%w: %v", domain.ErrFetchFailure, err)}
		}

		body, contentType, status, err := c.doRequest(ctx, rawURL)
		var blocked *blockedAddressError
		if errors.As(err, &blocked) {
			log.Printf("[FETCH] Refused %q: %v", rawURL, blocked)
			return "", &Error{URL: rawURL, Message: "refused", Cause: fmt.Errorf("%w: %v", domain.ErrInvalidRequest, blocked)}
		}
		if err != nil {
			log.Printf("[FETCH] Request error (attempt %d): %v", attempt, err)
			lastErr = &Error{URL: rawURL, Message: "HTTP request failed", Cause: fmt.Errorf("%w: %v", domain.ErrFetchFailure, err)}
			if ctx.Err() != nil {
				return "", lastErr
			}
			continue
		}

		switch {
		case status == http.StatusOK:
			text, err := postingText(body, contentType)
			if err != nil {
				return "", &Error{URL: rawURL, Message: "unreadable page", Cause: fmt.Errorf("%w: %v", domain.ErrFetchFailure, err)}
			}
			c.debugLog("Fetched %d bytes, %d bytes of text from %q", len(body), len(text), rawURL)
			return text, nil
		case status == http.StatusNotFound:
			return "", &Error{URL: rawURL, Message: "HTTP status 404", Cause: domain.ErrPostingNotFound}
		case status == http.StatusTooManyRequests || status >= 500:
			log.Printf("[FETCH] Upstream error (attempt %d) - Status: %d", attempt, status)
			lastErr = &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", status), Cause: domain.ErrFetchFailure}
		default:
			return "", &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", status), Cause: domain.ErrFetchFailure}
		}
	}

	log.Printf("[FETCH] All retries failed for url: %q", rawURL)
	return "", lastErr
}

// doRequest executes a GET and returns the capped body
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", 0, err
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), resp.StatusCode, nil
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func postingText(body []byte, contentType string) (string, error) {
	if strings.HasPrefix(strings.ToLower(contentType), "text/plain") {
		return string(body), nil
	}
	return ExtractMainText(string(body), JobPostingSelectors())
}
