// Package backend is the REST client for the order/product backend of record.
// Every call goes through the http.Client handed to New, which in production
// carries the session Guard as its transport.
package backend

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
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/shared"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 8 << 20

var tracer = otel.Tracer("github.com/mehmetnuribasa/boreksan/internal/infrastructure/backend")

// ErrUnavailable wraps transport failures: the backend could not be reached
// or did not answer.
var ErrUnavailable = errors.New("order backend unavailable")

// Config holds client configuration
type Config struct {
	BaseURL      string
	RateLimit    float64 // requests per second, 0 disables limiting
	Burst        int
	LoginPath    string
	RegisterPath string
	LogoutPath   string
	Location     *time.Location
}

// Client talks to the order backend
type Client struct {
	http     *http.Client
	baseURL  *url.URL
	limiter  *rate.Limiter
	location *time.Location
	paths    authPaths
	metrics  *metrics.Collectors
	logger   *zap.Logger
}

type authPaths struct {
	login, register, logout string
}

// Option configures a Client
type Option func(*Client)

// WithMetrics records every backend call
func WithMetrics(m *metrics.Collectors) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client. httpClient should carry the session guard and the
// cookie jar that receives the refresh cookie at login.
func New(cfg Config, httpClient *http.Client, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		http:     httpClient,
		baseURL:  base,
		location: cfg.Location,
		paths: authPaths{
			login:    orDefault(cfg.LoginPath, "auth/login"),
			register: orDefault(cfg.RegisterPath, "auth/register"),
			logout:   orDefault(cfg.LogoutPath, "auth/logout"),
		},
		logger: zap.NewNop(),
	}
	if c.location == nil {
		c.location = time.Local
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// JoinURL resolves path against the API base URL
func JoinURL(baseURL, path string) (string, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return "", err
	}
	return base.JoinPath(path).String(), nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %q", raw)
	}
	return u, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// call describes one backend request. route is the path template used as a
// metric label, path the concrete path.
type call struct {
	method string
	route  string
	path   string
	query  url.Values
	body   any
}

func (c *Client) do(ctx context.Context, in call, out any) (err error) {
	ctx, span := tracer.Start(ctx, in.method+" "+in.route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", in.method),
			attribute.String("http.route", in.route),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	u := c.baseURL.JoinPath(in.path)
	if len(in.query) > 0 {
		u.RawQuery = in.query.Encode()
	}

	var body io.Reader
	if in.body != nil {
		data, err := json.Marshal(in.body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveBackendCall(in.method, in.route, 0, time.Since(start))
		return fmt.Errorf("%s %s: %w: %w", in.method, in.route, ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveBackendCall(in.method, in.route, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s %s: reading response: %w", in.method, in.route, err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := decodeAPIError(resp.StatusCode, data)
		c.logger.Debug("backend call failed",
			zap.String("method", in.method),
			zap.String("route", in.route),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
		)
		if resp.StatusCode == http.StatusUnauthorized && !c.isAuthPath(in.path) {
			return fmt.Errorf("%w: %w", shared.ErrSessionExpired, apiErr)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", in.method, in.route, err)
	}
	return nil
}

func (c *Client) isAuthPath(path string) bool {
	return path == c.paths.login || path == c.paths.register
}

// APIError is a non-2xx answer from the backend
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the backend
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// decodeAPIError understands {"message","error_code","details"} bodies and
// the field -> message maps returned for validation failures.
func decodeAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{Status: status}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch k {
		case "message":
			apiErr.Message = s
		case "error_code":
			apiErr.Code = s
		case "details", "error", "timestamp", "path", "status":
		default:
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string]string)
			}
			apiErr.Fields[k] = s
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
