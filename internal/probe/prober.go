package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// DefaultUserAgent identifies the auditor to pixel servers.
	DefaultUserAgent = "pixelaudit/1.0"

	// DefaultMaxRedirects matches the redirect limit of common HTTP clients.
	DefaultMaxRedirects = 10

	// bodyDrainLimit is how much of a response body is read before closing.
	// Pixels are tiny; anything larger is not worth downloading.
	bodyDrainLimit = 64 << 10
)

// Prober probes a single URL.
// Implementations must be safe for concurrent use and must not panic;
// every failure to obtain a response is returned as err.
type Prober interface {
	Probe(ctx context.Context, url string) (statusCode int, err error)
}

// ProberFunc adapts an ordinary function to the Prober interface.
type ProberFunc func(ctx context.Context, url string) (int, error)

// Probe calls f(ctx, url).
func (f ProberFunc) Probe(ctx context.Context, url string) (int, error) {
	return f(ctx, url)
}

// HTTPProber probes URLs with real HTTP requests.
type HTTPProber struct {
	client       *http.Client
	method       string
	userAgent    string
	headers      map[string]string
	maxRedirects int
	proxyAddress string
	logger       *slog.Logger
}

// Option configures an HTTPProber.
type Option func(*HTTPProber)

// WithUserAgent sets the User-Agent header sent with every probe.
func WithUserAgent(ua string) Option {
	return func(p *HTTPProber) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// WithProxy routes every probe through the SOCKS5 proxy at addr ("host:port").
func WithProxy(addr string) Option {
	return func(p *HTTPProber) {
		p.proxyAddress = addr
	}
}

// WithHeaders adds fixed headers to every probe, including redirected requests.
func WithHeaders(headers map[string]string) Option {
	return func(p *HTTPProber) {
		p.headers = headers
	}
}

// WithMaxRedirects sets how many redirects are followed. Exceeding the limit
// is an error. With 0, the first response is used as-is, so a 3xx counts as
// success.
func WithMaxRedirects(n int) Option {
	return func(p *HTTPProber) {
		if n >= 0 {
			p.maxRedirects = n
		}
	}
}

// WithMethod sets the request method, GET or HEAD.
func WithMethod(method string) Option {
	return func(p *HTTPProber) {
		p.method = strings.ToUpper(method)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *HTTPProber) {
		p.logger = logger
	}
}

// NewHTTPProber creates an HTTPProber.
// It fails only for an invalid proxy address or method; it does not contact
// the proxy. Use CheckProxy for that.
func NewHTTPProber(opts ...Option) (*HTTPProber, error) {
	p := &HTTPProber{
		method:       http.MethodGet,
		userAgent:    DefaultUserAgent,
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	if p.method != http.MethodGet && p.method != http.MethodHead {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, p.method)
	}

	transport, err := p.newTransport()
	if err != nil {
		return nil, err
	}

	var rt http.RoundTripper = transport
	if len(p.headers) > 0 {
		rt = &headerInjectingTransport{base: transport, headers: p.headers}
	}

	maxRedirects := p.maxRedirects
	p.client = &http.Client{
		Transport: rt,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if maxRedirects == 0 {
				return http.ErrUseLastResponse
			}
			if len(via) > maxRedirects {
				return fmt.Errorf("%w: stopped after %d redirects", ErrTooManyRedirects, maxRedirects)
			}
			return nil
		},
	}
	return p, nil
}

// newTransport builds the connection pool, dialing through the proxy when
// one is configured.
func (p *HTTPProber) newTransport() (*http.Transport, error) {
	transport := &http.Transport{
		Proxy:               nil,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if p.proxyAddress == "" {
		transport.DialContext = (&net.Dialer{Timeout: 30 * time.Second}).DialContext
		return transport, nil
	}

	if !isValidProxyAddress(p.proxyAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, p.proxyAddress)
	}
	dialer, err := proxy.SOCKS5("tcp", p.proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// Probe requests url and returns the final status code.
// Invalid URLs, DNS and connection errors, and deadline expiry are all
// returned as err.
func (p *HTTPProber) Probe(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, p.method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, bodyDrainLimit)); err != nil {
		// The status line already arrived; a broken body does not change it.
		p.logger.Debug("failed to drain response body", "url", url, "error", err)
	}

	return resp.StatusCode, nil
}

// Close releases idle connections.
func (p *HTTPProber) Close() {
	p.client.CloseIdleConnections()
}

// ProxyAddress returns the configured proxy address, or "" for direct connections.
func (p *HTTPProber) ProxyAddress() string {
	return p.proxyAddress
}

// isValidProxyAddress reports whether address is "host:port" with a port
// in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || port == "" {
		return false
	}
	portNum, err := net.LookupPort("tcp", port)
	if err != nil {
		return false
	}
	return portNum >= 1 && portNum <= 65535
}

// headerInjectingTransport sets fixed headers on every outgoing request.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
