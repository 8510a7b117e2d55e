// Package naver provides a client for the Naver Maps Platform geocoding,
// reverse-geocoding and driving-directions APIs.
package naver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/NERVsystems/navermcp/pkg/metrics"
	"github.com/NERVsystems/navermcp/pkg/version"
)

const (
	// DefaultBaseURL is the NCP API gateway serving the Maps APIs
	DefaultBaseURL = "https://maps.apigw.ntruss.com"

	// DefaultTimeout bounds a single upstream call
	DefaultTimeout = 5 * time.Second

	// API paths relative to the base URL
	GeocodePath        = "/map-geocode/v2/geocode"
	ReverseGeocodePath = "/map-reversegeocode/v2/gc"
	DirectionsPath     = "/map-direction/v1/driving"
	Directions15Path   = "/map-direction-15/v1/driving"

	// Credential headers
	HeaderClientID     = "x-ncp-apigw-api-key-id"
	HeaderClientSecret = "x-ncp-apigw-api-key"

	// Operation names used in errors, logs and metrics
	OpGeocode            = "geocode"
	OpReverseGeocode     = "reverseGeocode"
	OpRoute              = "route"
	OpRouteWithWaypoints = "routeWithWaypoints"

	maxBodyBytes = 8 << 20
	tracerName   = "github.com/NERVsystems/navermcp/pkg/naver"
)

// Config holds the provider settings. A zero BaseURL or Timeout falls back to
// the defaults.
type Config struct {
	ClientID            string
	ClientSecret        string
	BaseURL             string
	Timeout             time.Duration
	Retries             int // read from the environment but not used
	UseDummyDataOnError bool
}

// HasCredentials reports whether both credential values are present.
func (c Config) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Client calls the Naver Maps APIs. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer

	mu  sync.RWMutex
	cfg Config

	credentialWarning rate.Sometimes
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the given configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(&http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			}),
		},
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
		cfg:    cfg.withDefaults(),
		credentialWarning: rate.Sometimes{
			First:    1,
			Interval: time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reload replaces the configuration. Calls already in flight keep the
// snapshot they started with.
func (c *Client) Reload(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg.withDefaults()
}

// Config returns a snapshot of the current configuration.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// fallbackEnabled reports whether a failed geocoding call should be answered
// with synthetic data.
func (c *Client) fallbackEnabled(requested bool) bool {
	return requested || c.Config().UseDummyDataOnError
}

// get performs an authenticated GET against path and decodes the JSON
// response into out. Every failure is returned as an *APIError.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	cfg := c.Config()
	if !cfg.HasCredentials() {
		c.credentialWarning.Do(func() {
			c.logger.Warn("Naver API credentials are not configured, requests will be rejected upstream",
				"client_id", presence(cfg.ClientID),
				"client_secret", presence(cfg.ClientSecret))
		})
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "naver."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("naver.path", path)))
	defer span.End()

	reqURL := cfg.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return c.fail(span, &APIError{
			Op:       op,
			Kind:     KindRequest,
			Message:  err.Error(),
			Guidance: GuidanceInvalidParams,
			Err:      err,
		})
	}
	req.Header.Set(HeaderClientID, cfg.ClientID)
	req.Header.Set(HeaderClientSecret, cfg.ClientSecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	c.logger.Debug("naver request", "op", op, "path", path)

	metrics.UpstreamRequestsTotal.WithLabelValues(op).Inc()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return c.fail(span, newNetworkError(op, err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.fail(span, newNetworkError(op, err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.fail(span, newStatusError(op, resp.StatusCode, body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return c.fail(span, newDecodeError(op, err))
	}

	c.logger.Debug("naver response",
		"op", op,
		"status", resp.StatusCode,
		"duration", time.Since(start))
	return nil
}

// fail records a classified failure on the span, the metrics and the log.
func (c *Client) fail(span trace.Span, err *APIError) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(err.Kind))
	metrics.UpstreamFailuresTotal.WithLabelValues(err.Op, string(err.Kind)).Inc()
	c.logger.Error("naver request failed",
		"op", err.Op,
		"kind", err.Kind,
		"status", err.StatusCode,
		"error", err.Message)
	return err
}

func presence(v string) string {
	if v == "" {
		return "missing"
	}
	return "set"
}
