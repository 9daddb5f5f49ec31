// Package gateway is the single chokepoint for every backend call. It
// attaches the bearer token, logs each exchange, classifies failures into
// apierror kinds and, when fallback mode is enabled, answers reads against
// undeployed endpoints with synthesized data tagged as such.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bizconsole/internal/apierror"
	"bizconsole/internal/fallback"
	"bizconsole/internal/model"
)

const maxBodyBytes = 8 << 20

// TokenSource supplies the bearer token for outbound calls. An empty string
// means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Fallback bool
	Session  TokenSource
	Breaker  BreakerConfig
	Metrics  *Metrics
	// HTTPClient overrides the transport; its Timeout is replaced by Timeout.
	HTTPClient *http.Client
	// Now is the clock handed to the synthesizer.
	Now func() time.Time
}

// Client is safe for concurrent use.
type Client struct {
	baseURL  string
	fallback bool
	session  TokenSource
	http     *http.Client
	breaker  *Breaker
	metrics  *Metrics
	now      func() time.Time

	// collections records, per resource, whether its list endpoint is
	// missing (true) or deployed (false).
	mu          sync.Mutex
	collections map[fallback.Resource]bool
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	hc := &http.Client{}
	if opts.HTTPClient != nil {
		clone := *opts.HTTPClient
		hc = &clone
	}
	hc.Timeout = opts.Timeout
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		fallback: opts.Fallback,
		session:  opts.Session,
		http:     hc,
		breaker:  NewBreaker(opts.Breaker),
		metrics:  opts.Metrics,
		now:      opts.Now,

		collections: map[fallback.Resource]bool{},
	}
	c.breaker.onChange = func(s BreakerState) {
		c.metrics.breaker(s)
		log.Warn().Str("state", s.String()).Msg("gateway: circuit breaker state changed")
	}
	return c
}

// BaseURL returns the resolved backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// FallbackEnabled reports whether 404s on reads are absorbed.
func (c *Client) FallbackEnabled() bool { return c.fallback }

// BreakerState exposes the breaker for health output.
func (c *Client) BreakerState() BreakerState { return c.breaker.State() }

// Request describes one call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Do sends req and decodes a successful body into out (which may be nil).
// It makes exactly one attempt. The returned DataSource is SourceFallback
// only when a 404 on a read was answered by the synthesizer.
func (c *Client) Do(ctx context.Context, req Request, out any) (model.DataSource, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	op := method + " " + req.Path
	route := fallback.Resolve(req.Path)
	resource := string(route.Resource)
	if resource == "" {
		resource = "other"
	}

	var payload io.Reader
	if req.Body != nil {
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return "", fmt.Errorf("%s: encode body: %w", op, err)
		}
		payload = bytes.NewReader(buf)
	}

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return "", fmt.Errorf("%s: build request: %w", op, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.session != nil {
		if tok := c.session.Token(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	log.Debug().Str("method", method).Str("url", target).Str("request_id", requestID).Msg("gateway: request")

	start := time.Now()
	var (
		status int
		body   []byte
	)
	execErr := c.breaker.Execute(func() error {
		resp, err := c.http.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		status = resp.StatusCode
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return err
		}
		if status >= http.StatusInternalServerError {
			return errServerStatus
		}
		return nil
	})
	elapsed := time.Since(start)

	switch {
	case errors.Is(execErr, ErrBreakerOpen):
		c.metrics.observe(method, resource, "breaker_open", elapsed.Seconds())
		log.Warn().Str("kind", apierror.NetworkUnreachable.String()).Str("url", target).Str("request_id", requestID).Msg("gateway: circuit open, request not sent")
		return "", apierror.Network(op, execErr)
	case execErr != nil && !errors.Is(execErr, errServerStatus):
		c.metrics.observe(method, resource, "network_error", elapsed.Seconds())
		log.Warn().Err(execErr).Str("kind", apierror.NetworkUnreachable.String()).Str("url", target).Str("request_id", requestID).Msg("gateway: no response")
		return "", apierror.Network(op, execErr)
	}

	if status >= 200 && status < 300 {
		c.metrics.observe(method, resource, "ok", elapsed.Seconds())
		if isCollection(route) && safeMethod(method) {
			c.noteCollection(route.Resource, false)
		}
		log.Debug().Int("status", status).Str("url", target).Dur("latency", elapsed).Str("request_id", requestID).Msg("gateway: response")
		if out != nil && len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, out); err != nil {
				return "", apierror.Decode(op, status, body, err)
			}
		}
		return model.SourceLive, nil
	}

	apiErr := apierror.Classify(op, status, body)
	if apiErr.Kind == apierror.EndpointNotFound && c.fallback && safeMethod(method) && c.undeployed(ctx, route) {
		if data, ok := fallback.For(req.Path, c.now()); ok {
			if err := reencode(data, out); err != nil {
				return "", apierror.Decode(op, status, nil, err)
			}
			c.metrics.observe(method, resource, "fallback", elapsed.Seconds())
			c.metrics.fallback(resource)
			if isCollection(route) {
				c.noteCollection(route.Resource, true)
			}
			log.Info().Str("source", string(model.SourceFallback)).Str("url", target).Str("request_id", requestID).Msg("gateway: endpoint missing, serving synthesized data")
			return model.SourceFallback, nil
		}
	}

	c.metrics.observe(method, resource, apiErr.Kind.String(), elapsed.Seconds())
	log.Warn().Str("kind", apiErr.Kind.String()).Int("status", status).Str("url", target).Str("request_id", requestID).Msg("gateway: request failed")
	return "", apiErr
}

var errServerStatus = errors.New("server error status")

// undeployed reports whether a 404 on route means the endpoint is missing
// rather than the record. A 404 for a single record only counts when the
// resource's list endpoint is itself missing; that is checked once with a
// GET on the collection and remembered.
func (c *Client) undeployed(ctx context.Context, route fallback.Route) bool {
	if route.ID == 0 || route.Resource == fallback.ResourceUnknown {
		return true
	}
	c.mu.Lock()
	missing, known := c.collections[route.Resource]
	c.mu.Unlock()
	if known {
		return missing
	}
	src, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/" + string(route.Resource) + "/"}, nil)
	if err != nil {
		return false
	}
	return src.IsFallback()
}

func (c *Client) noteCollection(res fallback.Resource, missing bool) {
	c.mu.Lock()
	c.collections[res] = missing
	c.mu.Unlock()
}

func isCollection(r fallback.Route) bool {
	return r.Resource != fallback.ResourceUnknown && r.ID == 0 && r.Action == ""
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead
}

// reencode routes synthesized data through the same JSON decoding as a live
// body so both paths produce identical shapes.
func reencode(data, out any) error {
	if out == nil {
		return nil
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, out)
}
