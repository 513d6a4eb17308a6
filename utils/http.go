package utils

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/proxy"

	"zippyfetch/internal"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/120.0"

// HTTPClientConfig contains configuration for the HTTP client
type HTTPClientConfig struct {
	// Timeout bounds connecting, the TLS handshake and the wait for response
	// headers. It is also the longest a body read or write may stall. It does
	// not cap a whole transfer, so slow streams keep going while bytes flow.
	Timeout   time.Duration
	ProxyURL  string
	UserAgent string

	// Transport replaces the tuned default transport when set.
	Transport http.RoundTripper
}

// DefaultTimeout is used when HTTPClientConfig.Timeout is not positive
const DefaultTimeout = 60 * time.Second

// HTTPClient wraps http.Client with browser-like defaults and request logging
type HTTPClient struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	mutex     sync.RWMutex
}

type noRedirectKey struct{}

// WithoutRedirects marks ctx so requests made with it return 3xx responses
// as-is instead of following them.
func WithoutRedirects(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRedirectKey{}, true)
}

func redirectsDisabled(ctx context.Context) bool {
	disabled, _ := ctx.Value(noRedirectKey{}).(bool)
	return disabled
}

// NewHTTPClient creates a new HTTP client with default configuration
func NewHTTPClient() *HTTPClient {
	client, _ := NewHTTPClientWithConfig(&HTTPClientConfig{})
	return client
}

// NewHTTPClientWithConfig creates a new HTTP client with custom configuration
func NewHTTPClientWithConfig(config *HTTPClientConfig) (*HTTPClient, error) {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	roundTripper := config.Transport
	if roundTripper == nil {
		dialer := &net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}
		transport := &http.Transport{
			DialContext:           stallGuard(dialer.DialContext, timeout),
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		}

		if config.ProxyURL != "" {
			if err := configureProxy(transport, config.ProxyURL, timeout); err != nil {
				return nil, err
			}
		}
		roundTripper = transport
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	client := &http.Client{
		Transport: roundTripper,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if redirectsDisabled(req.Context()) {
				return http.ErrUseLastResponse
			}
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return &HTTPClient{
		client:    client,
		userAgent: userAgent,
		timeout:   timeout,
	}, nil
}

// Timeout returns the per-stage timeout the client was built with
func (c *HTTPClient) Timeout() time.Duration {
	return c.timeout
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// stallGuard wraps dial so every connection it returns fails a read or write
// that makes no progress within timeout
func stallGuard(dial dialFunc, timeout time.Duration) dialFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dial(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		return &stallConn{Conn: conn, timeout: timeout}, nil
	}
}

// stallConn pushes its deadline forward before each read and write
type stallConn struct {
	net.Conn
	timeout time.Duration
}

func (c *stallConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *stallConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}

// configureProxy sets up proxy configuration for the transport
func configureProxy(transport *http.Transport, proxyURL string, timeout time.Duration) error {
	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %w", err)
	}

	switch parsedURL.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(parsedURL)
	case "socks5":
		var auth *proxy.Auth
		if parsedURL.User != nil {
			password, _ := parsedURL.User.Password()
			auth = &proxy.Auth{User: parsedURL.User.Username(), Password: password}
		}
		forward := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
		dialer, err := proxy.SOCKS5("tcp", parsedURL.Host, auth, forward)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 proxy: %w", err)
		}
		if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = stallGuard(contextDialer.DialContext, timeout)
		} else {
			transport.DialContext = stallGuard(func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}, timeout)
		}
	default:
		return fmt.Errorf("unsupported proxy scheme: %s", parsedURL.Scheme)
	}

	return nil
}

// Do sends req after filling in browser-like default headers. The response
// is returned whatever its status; callers decide what counts as failure.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.GetCurrentUserAgent())
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	}

	logger := internal.GetLogger()
	logger.LogHTTPRequest(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	logger.LogHTTPResponse(resp)
	return resp, nil
}

// GetCurrentUserAgent returns the current user agent string
func (c *HTTPClient) GetCurrentUserAgent() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.userAgent
}

// SetUserAgent sets a custom user agent string
func (c *HTTPClient) SetUserAgent(userAgent string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.userAgent = userAgent
}
