package ping_worker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/NordCoder/pinmon/internal/domain/check"
)

type Config struct {
	Timeout   time.Duration
	UserAgent string
	RootCAs   *x509.CertPool
}

const (
	dialTimeout         = 10 * time.Second
	tlsHandshakeTimeout = 10 * time.Second
)

// Client issues single GET requests over connections pinned to an IP.
// Every request gets its own transport, nothing is pooled between checks.
type Client struct {
	cfg Config
}

// LoadRootCAs returns the system pool extended with the PEM certificates
// in path. An empty path means the system pool alone (nil).
func LoadRootCAs(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, nil
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ca file: %w", err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("ca file %s: no certificates found", path)
	}
	return pool, nil
}

func New(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// Get requests rawURL over a connection to ip. The caller must close the
// response body; doing so also releases the connection.
func (cl *Client) Get(ctx context.Context, rawURL string, ip netip.Addr, opts check.RequestOptions) (*http.Response, error) {
	return cl.Do(ctx, rawURL, Pin(ip), opts)
}

func (cl *Client) Do(ctx context.Context, rawURL string, r Resolver, opts check.RequestOptions) (*http.Response, error) {
	transport := cl.transport(r, opts)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = cl.cfg.Timeout
	}
	client := &http.Client{
		Timeout:       timeout,
		Transport:     otelhttp.NewTransport(transport),
		CheckRedirect: redirectPolicy(opts),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		transport.CloseIdleConnections()
		return nil, err
	}
	if cl.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cl.cfg.UserAgent)
	}
	for k, v := range opts.Headers {
		if strings.EqualFold(k, "Host") {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		transport.CloseIdleConnections()
		return nil, err
	}
	resp.Body = &releasingBody{ReadCloser: resp.Body, release: transport.CloseIdleConnections}
	return resp, nil
}

func (cl *Client) transport(r Resolver, opts check.RequestOptions) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: -1,
	}
	return &http.Transport{
		// a proxy would connect to the hostname instead of the pinned ip
		Proxy:                 nil,
		DialContext:           DialContext(r, dialer),
		DisableKeepAlives:     true,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.SkipVerify(),
			MinVersion:         tls.VersionTLS12,
			RootCAs:            cl.cfg.RootCAs,
		},
	}
}

func redirectPolicy(opts check.RequestOptions) func(*http.Request, []*http.Request) error {
	if !opts.FollowRedirects() {
		return func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	limit := opts.RedirectLimit()
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) >= limit {
			return fmt.Errorf("stopped after %d redirects", limit)
		}
		return nil
	}
}

type releasingBody struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}
