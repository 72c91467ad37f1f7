// internal/adapters/upstream/client.go
package upstream

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"dealership_api/internal/adapters/observability"
)

const maxBody = 4 << 20

// Param is one query parameter. Order is kept when the URL is built.
type Param struct {
	Key   string
	Value string
}

type Options struct {
	Service string        // metrics/log label, e.g. "dealers"
	Timeout time.Duration // per attempt
	RPS     int
	Retries int // extra attempts for GET; POST is never retried
}

type Client struct {
	base    string
	service string
	hc      *http.Client
	rl      *rate.Limiter
	retries int
}

func New(base string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", base)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 50
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Service == "" {
		opts.Service = u.Host
	}
	return &Client{
		base:    strings.TrimRight(u.String(), "/"),
		service: opts.Service,
		hc:      &http.Client{Timeout: opts.Timeout},
		rl:      rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS),
		retries: opts.Retries,
	}, nil
}

// URL joins base and path and appends the escaped, &-joined query.
func (c *Client) URL(path string, params ...Param) string {
	u := c.base + "/" + strings.TrimLeft(path, "/")
	if len(params) == 0 {
		return u
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	return u + "?" + strings.Join(parts, "&")
}

// Get fetches path and decodes the JSON body into out. Every failure comes
// back as *Error.
func (c *Client) Get(ctx context.Context, path string, params []Param, out any) error {
	target := c.URL(path, params...)
	log.Debug().Str("service", c.service).Str("url", target).Msg("upstream GET")

	if err := c.rl.Wait(ctx); err != nil {
		return c.unavailable(target, err)
	}

	var lastErr *Error
	for i := 0; i <= c.retries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return c.unavailable(target, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "dealership-api/1.0")

		status, body, wait, err := c.do(req, path)
		if err != nil {
			if ctx.Err() != nil {
				return c.unavailable(target, ctx.Err())
			}
			lastErr = c.unavailable(target, err)
			if i < c.retries && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastErr
		}

		switch {
		case status >= 200 && status < 300:
			return c.decode(target, status, body, out)

		case status == http.StatusTooManyRequests || status >= 500:
			lastErr = c.statusErr(target, status, body)
			if wait == 0 {
				wait = backoff(i)
			}
			if i < c.retries && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return c.unavailable(target, ctx.Err())
			}
			return lastErr

		default:
			return c.statusErr(target, status, body)
		}
	}
	return lastErr
}

// Post sends body as JSON. A non-2xx answer is an error carrying the
// upstream status. out may be nil when the echo is not needed.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	target := c.URL(path)
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: KindDecode, Service: c.service, URL: target, Status: http.StatusInternalServerError,
			Message: "request body could not be encoded", Err: err}
	}
	log.Debug().Str("service", c.service).Str("url", target).Msg("upstream POST")

	if err := c.rl.Wait(ctx); err != nil {
		return c.unavailable(target, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return c.unavailable(target, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dealership-api/1.0")

	status, respBody, _, err := c.do(req, path)
	if err != nil {
		return c.unavailable(target, err)
	}
	if status < 200 || status >= 300 {
		return c.statusErr(target, status, respBody)
	}
	if out == nil {
		return nil
	}
	return c.decode(target, status, respBody, out)
}

// do runs one attempt and always drains and closes the body.
func (c *Client) do(req *http.Request, path string) (int, []byte, time.Duration, error) {
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(c.service, endpointLabel(path), 0, time.Since(start))
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	observability.ObserveExternal(c.service, endpointLabel(path), resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, body, retryAfter(resp), nil
}

func (c *Client) decode(target string, status int, body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		log.Warn().Str("service", c.service).Str("url", target).Msg("empty response received")
		return &Error{Kind: KindEmpty, Service: c.service, URL: target, Status: status,
			Message: c.service + " service returned an empty response"}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		log.Warn().Err(err).Str("service", c.service).Str("url", target).Msg("response is not valid JSON")
		return &Error{Kind: KindDecode, Service: c.service, URL: target, Status: status,
			Message: c.service + " service returned malformed data", Err: err}
	}
	return nil
}

func (c *Client) unavailable(target string, err error) *Error {
	log.Error().Err(err).Str("service", c.service).Str("url", target).Msg("upstream request failed")
	return &Error{Kind: KindUnavailable, Service: c.service, URL: target, Status: http.StatusServiceUnavailable,
		Message: c.service + " service error or network error", Err: err}
}

func (c *Client) statusErr(target string, status int, body []byte) *Error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 512 {
		detail = detail[:512]
	}
	log.Error().Int("status", status).Str("service", c.service).Str("url", target).Str("body", detail).
		Msg("upstream returned non-2xx")
	return &Error{Kind: KindStatus, Service: c.service, URL: target, Status: status,
		Message: fmt.Sprintf("%s service error: status %d", c.service, status)}
}

// endpointLabel keeps metric cardinality bounded: "/fetchReviews/dealer/15" -> "fetchReviews".
func endpointLabel(path string) string {
	p := strings.TrimLeft(path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "root"
	}
	return p
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns 100ms, 200ms, 400ms... with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
