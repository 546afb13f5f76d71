// Package provider implements the client for the upstream exchange-rate API.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Options configures the Client.
type Options struct {
	// Timeout bounds a single request (default 10s).
	Timeout time.Duration
	// APIKey is sent as the access_key query parameter when set.
	APIKey string
	// MaxRequestsPerSecond throttles outbound calls; 0 disables throttling.
	MaxRequestsPerSecond float64
}

// Client fetches latest exchange rates from the upstream API.
type Client struct {
	base    string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a client for the given latest-rates endpoint.
func New(base string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if opts.MaxRequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.MaxRequestsPerSecond), 1)
	}

	return &Client{
		base:   strings.TrimRight(base, "/"),
		apiKey: opts.APIKey,
		http: &http.Client{
			Timeout: timeout,
			// Outbound spans so upstream calls show up under the request trace.
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: limiter,
	}
}

// latestPayload is the upstream wire format.
type latestPayload struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Latest fetches the latest rates for the given base currency.
// Rates are converted to decimals via their string representation so the
// upstream's JSON numbers do not pick up binary float artifacts.
func (c *Client) Latest(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Sentinel: ErrThrottled, Operation: "latest", Err: err}
		}
	}

	q := url.Values{}
	q.Set("base", base)
	if c.apiKey != "" {
		q.Set("access_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &Error{Sentinel: ErrBadResponse, Operation: "latest", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		sentinel := ErrUnavailable
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			sentinel = ErrTimeout
		}
		return nil, &Error{Sentinel: sentinel, Operation: "latest", Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, &Error{
			Sentinel:  ErrUpstream,
			Operation: "latest",
			Status:    res.StatusCode,
			Body:      strings.TrimSpace(string(body)),
		}
	}

	// Decode via json.Number to keep the exact decimal text.
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	var raw struct {
		Base  string                 `json:"base"`
		Rates map[string]json.Number `json:"rates"`
	}
	if err := dec.Decode(&raw); err != nil {
		return nil, &Error{Sentinel: ErrBadResponse, Operation: "latest", Err: err}
	}
	if raw.Rates == nil {
		return nil, &Error{Sentinel: ErrBadResponse, Operation: "latest", Body: "missing rates field"}
	}

	rates := make(map[string]decimal.Decimal, len(raw.Rates))
	for code, num := range raw.Rates {
		d, err := decimal.NewFromString(num.String())
		if err != nil {
			return nil, &Error{Sentinel: ErrBadResponse, Operation: "latest", Body: "rate " + code, Err: err}
		}
		rates[strings.ToUpper(code)] = d
	}
	return rates, nil
}

// HealthCheck probes the upstream endpoint for readiness checks.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base, nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode >= http.StatusInternalServerError {
		return &Error{Sentinel: ErrUpstream, Operation: "healthcheck", Status: res.StatusCode}
	}
	return nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
