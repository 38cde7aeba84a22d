package tripo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tripolabs/tripo-go/internal/metrics"
	"github.com/tripolabs/tripo-go/types"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.tripo3d.ai/v2/openapi"

// Config holds the client configuration. The API key must be supplied
// explicitly; use config.FromEnv to source it from the environment at the
// call site.
type Config struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`

	// RequestsPerSecond enables client-side rate limiting when > 0.
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`

	// S3Endpoint overrides the object-store endpoint used by
	// UploadFileS3, for tests and self-hosted stores.
	S3Endpoint string `json:"s3_endpoint,omitempty" yaml:"s3_endpoint,omitempty"`
}

// Client is the Tripo3D API client. It is stateless beyond its read-only
// configuration and safe to share across goroutines.
type Client struct {
	cfg       Config
	baseURL   *url.URL
	client    *http.Client
	logger    *zap.Logger
	limiter   *rate.Limiter
	collector *metrics.Collector
}

// Option customizes a Client beyond its Config.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithMetrics registers Prometheus instrumentation for API calls,
// downloads, and watch streams on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) { c.collector = metrics.NewCollector(reg) }
}

// New creates a Client. It fails with AUTHENTICATION_MISSING when the API
// key is empty, before any network I/O. A nil logger is replaced by a nop
// logger.
func New(cfg Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, types.NewError(types.ErrAuthenticationMissing, "no API key provided")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, types.NewError(types.ErrValidationFailure, "invalid base URL").WithCause(err)
	}

	c := &Client{
		cfg:     cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// envelope is the server's response wrapper: content nests under "data".
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) endpointURL(endpoint string) string {
	return c.baseURL.String() + "/" + strings.TrimLeft(endpoint, "/")
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}

// do performs one authenticated round trip and decodes the data envelope
// into out. No retries happen at this layer.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return types.NewError(types.ErrValidationFailure, "encoding request body").WithCause(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpointURL(endpoint), reader)
	if err != nil {
		return types.NewError(types.ErrValidationFailure, "building request").WithCause(err)
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, method, endpoint, out)
}

// send dispatches a prepared request, applying rate limiting, metrics, and
// error mapping.
func (c *Client) send(req *http.Request, method, endpoint string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return types.NewError(types.ErrNetworkFailure, "rate limiter wait aborted").WithCause(err)
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.collector.ObserveRequest(method, endpoint, 0, time.Since(start))
		return types.NewError(types.ErrNetworkFailure, "request failed").
			WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()
	c.collector.ObserveRequest(method, endpoint, resp.StatusCode, time.Since(start))

	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapAPIError(resp.StatusCode, readErrMsg(resp.Body))
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return types.NewError(types.ErrDecodeFailure, "decoding response envelope").WithCause(err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return types.NewError(types.ErrDecodeFailure, "decoding response data").WithCause(err)
	}
	return nil
}

// serverError is the error shape the API returns on non-2xx statuses.
type serverError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Suggest string `json:"suggestion,omitempty"`
}

func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, 64<<10))
	var se serverError
	if err := json.Unmarshal(data, &se); err == nil && se.Message != "" {
		if se.Code != 0 {
			return fmt.Sprintf("%s (code %d)", se.Message, se.Code)
		}
		return se.Message
	}
	return strings.TrimSpace(string(data))
}

func mapAPIError(status int, msg string) *types.Error {
	switch status {
	case http.StatusUnauthorized:
		return types.NewError(types.ErrUnauthorized, msg).WithHTTPStatus(status)
	case http.StatusForbidden:
		return types.NewError(types.ErrForbidden, msg).WithHTTPStatus(status)
	case http.StatusTooManyRequests:
		return types.NewError(types.ErrRateLimited, msg).WithHTTPStatus(status).WithRetryable(true)
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return types.NewError(types.ErrInvalidRequest, msg).WithHTTPStatus(status)
	default:
		return types.NewError(types.ErrUpstreamError, msg).
			WithHTTPStatus(status).
			WithRetryable(status >= 500)
	}
}
