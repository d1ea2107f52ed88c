// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classifier talks to the family prediction service. Classify
// and IsAvailable never return errors: every fault becomes a
// types.Failure or false, because an unreachable service is an expected
// outcome for a field client.
package classifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/pdiddy/sporeid/internal/codec"
	"github.com/pdiddy/sporeid/internal/httputil"
	"github.com/pdiddy/sporeid/pkg/types"
)

// Service endpoints, relative to the configured base URL.
const (
	PredictPath  = "/predict"
	HealthPath   = "/health"
	FamiliesPath = "/familias"
)

// Defaults applied by New to zero-valued ServerConfig fields.
const (
	DefaultBaseURL        = "http://10.0.2.2:5000"
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 10 * time.Second
	DefaultHealthTimeout  = 3 * time.Second
	DefaultFamiliesTTL    = 10 * time.Minute
	DefaultUserAgent      = "sporeid/0.1"
)

// Client performs round trips to the prediction service. It holds only
// configuration, HTTP clients and the family cache, and is safe for
// concurrent use; concurrent calls are independent round trips.
type Client struct {
	baseURL string
	cfg     types.ServerConfig
	predict *http.Client
	health  *http.Client
	logger  *slog.Logger

	families *cache.Cache
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the diagnostics logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient replaces both the predict and health HTTP clients.
// Timeouts enforced by the replaced transports no longer apply.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.predict = hc
			c.health = hc
		}
	}
}

// New validates cfg, fills defaults and returns a Client.
func New(cfg types.ServerConfig, opts ...Option) (*Client, error) {
	cfg = withDefaults(cfg)

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", cfg.BaseURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be http(s)://host[:port]", cfg.BaseURL)
	}
	if cfg.HealthTimeout >= cfg.ConnectTimeout || cfg.HealthTimeout >= cfg.ReadTimeout {
		return nil, fmt.Errorf("health timeout %v must be shorter than connect (%v) and read (%v) timeouts",
			cfg.HealthTimeout, cfg.ConnectTimeout, cfg.ReadTimeout)
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
		predict: httputil.NewClient(httputil.Timeouts{
			Connect: cfg.ConnectTimeout,
			Read:    cfg.ReadTimeout,
		}),
		health: httputil.NewClient(httputil.Timeouts{
			Connect: cfg.HealthTimeout,
			Read:    cfg.HealthTimeout,
		}),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		families: cache.New(cfg.FamiliesTTL, 2*cfg.FamiliesTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func withDefaults(cfg types.ServerConfig) types.ServerConfig {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = DefaultHealthTimeout
	}
	if cfg.FamiliesTTL <= 0 {
		cfg.FamiliesTTL = DefaultFamiliesTTL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return cfg
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}
}

// Config returns the effective configuration, defaults included.
func (c *Client) Config() types.ServerConfig { return c.cfg }

// Close releases idle connections.
func (c *Client) Close() {
	c.predict.CloseIdleConnections()
	c.health.CloseIdleConnections()
}

// Classify sends in to POST /predict in a single attempt and returns the
// decoded Success, or a Failure describing what went wrong: a non-200
// status yields "server error: <code>" without parsing the body, and a
// transport fault yields the fault description.
func (c *Client) Classify(ctx context.Context, in types.MeasurementInput) types.ClassificationResult {
	reqID := uuid.NewString()
	logger := c.logger.With("request_id", reqID, "endpoint", PredictPath)

	body, err := codec.Encode(in)
	if err != nil {
		logger.Error("encoding request", "error", err)
		return types.Failure{Message: err.Error(), Kind: types.FailureEncoding}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PredictPath, bytes.NewReader(body))
	if err != nil {
		return types.Failure{Message: fmt.Sprintf("creating request: %v", err), Kind: types.FailureTransport}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	c.setCommonHeaders(req)

	start := time.Now()
	resp, err := httputil.Do(ctx, c.predict, req, c.cfg.ReadTimeout)
	if err != nil {
		logger.Warn("prediction request failed", "error", err, "elapsed", time.Since(start))
		return types.Failure{Message: err.Error(), Kind: types.FailureTransport}
	}

	if resp.StatusCode != http.StatusOK {
		logger.Warn("prediction service returned error status", "status", resp.StatusCode)
		return types.Failure{
			Message: fmt.Sprintf("server error: %d", resp.StatusCode),
			Kind:    types.FailureServer,
		}
	}

	res := codec.DecodeResponse(resp.Body)
	switch r := res.(type) {
	case types.Success:
		logger.Debug("prediction received", "family", r.Family, "confidence", r.Confidence, "elapsed", time.Since(start))
	case types.Failure:
		logger.Warn("undecodable prediction response", "error", r.Message)
	}
	return res
}

// IsAvailable probes GET /health within the health timeout. It reports
// true only for a 200 response; faults and other statuses are false.
func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, http.NoBody)
	if err != nil {
		return false
	}
	c.setCommonHeaders(req)

	status, err := httputil.Status(ctx, c.health, req)
	if err != nil {
		c.logger.Debug("health probe failed", "error", err)
		return false
	}
	if status != http.StatusOK {
		c.logger.Debug("health probe returned error status", "status", status)
		return false
	}
	return true
}
