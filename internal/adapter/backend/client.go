package backend

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/price-tracker/internal/core/domain"
	"github.com/niksmo/price-tracker/internal/core/port"
)

var _ port.Backend = (*Client)(nil)

const (
	RequestIDHeader = "X-Request-ID"

	defaultTimeout = 10 * time.Second
	maxDrain       = 64 << 10
)

var ErrEmptyBaseURL = errors.New("base url is empty")

type Opt func(*clientOpts) error

type clientOpts struct {
	timeout    time.Duration
	tlsConfig  *tls.Config
	httpClient *http.Client
}

func TimeoutOpt(d time.Duration) Opt {
	return func(o *clientOpts) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		o.timeout = d
		return nil
	}
}

func TLSOpt(cfg *tls.Config) Opt {
	return func(o *clientOpts) error {
		if cfg == nil {
			return errors.New("tls config is nil")
		}
		o.tlsConfig = cfg
		return nil
	}
}

func HTTPClientOpt(cl *http.Client) Opt {
	return func(o *clientOpts) error {
		if cl == nil {
			return errors.New("http client is nil")
		}
		o.httpClient = cl
		return nil
	}
}

// A Client consumes the price tracker REST API.
//
// Every failure is wrapped with [domain.ErrFetchFailure].
type Client struct {
	baseURL *url.URL
	timeout time.Duration
	cl      *http.Client
}

func NewClient(baseURL string, opts ...Opt) (Client, error) {
	const op = "backend.NewClient"

	if baseURL == "" {
		return Client{}, fmt.Errorf("%s: %w", op, ErrEmptyBaseURL)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return Client{}, fmt.Errorf("%s: %w", op, err)
	}

	options := clientOpts{timeout: defaultTimeout}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return Client{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	cl := options.httpClient
	if cl == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if options.tlsConfig != nil {
			transport.TLSClientConfig = options.tlsConfig
		}
		cl = &http.Client{Transport: transport}
	}

	return Client{baseURL: u, timeout: options.timeout, cl: cl}, nil
}

func (c Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.FetchProducts"

	var ps []product
	if err := c.do(ctx, http.MethodGet, &ps, "products"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]domain.Product, len(ps))
	for i, p := range ps {
		out[i] = p.toDomain()
	}
	return out, nil
}

func (c Client) FetchHistory(
	ctx context.Context, productID string,
) ([]domain.HistoryEntry, error) {
	const op = "Client.FetchHistory"

	var hs []historyEntry
	err := c.do(ctx, http.MethodGet, &hs,
		"products", url.PathEscape(productID), "history")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]domain.HistoryEntry, len(hs))
	for i, h := range hs {
		out[i] = h.toDomain()
	}
	return out, nil
}

// RequestScrape asks the backend to start scraping. Success means the
// request was accepted, not that scraping is complete.
func (c Client) RequestScrape(ctx context.Context) error {
	const op = "Client.RequestScrape"

	if err := c.do(ctx, http.MethodPost, nil, "scrape"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Ping reports whether the backend answers HTTP at all. Any status code
// counts as reachable.
func (c Client) Ping(ctx context.Context) error {
	const op = "Client.Ping"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodHead, "products")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.cl.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrFetchFailure, err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c Client) newRequest(
	ctx context.Context, method string, path ...string,
) (*http.Request, error) {
	u := c.baseURL.JoinPath(path...)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c Client) do(
	ctx context.Context, method string, v any, path ...string,
) error {
	const op = "Client.do"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, path...)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrFetchFailure, err)
	}

	log := slog.With(
		"op", op,
		"method", method,
		"url", req.URL.String(),
		"requestID", req.Header.Get(RequestIDHeader),
	)

	start := time.Now()
	resp, err := c.cl.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrFetchFailure, err)
	}
	defer c.closeBody(resp.Body)

	log.Debug("response received",
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %s",
			domain.ErrFetchFailure, resp.Status)
	}

	if v == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w",
			domain.ErrFetchFailure, err)
	}
	return nil
}

func (c Client) closeBody(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrain))
	_ = body.Close()
}
