// Package session keeps outbound backend calls authenticated: it stamps the
// operator's access token on every request and renews it once when the
// backend answers 401.
package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshTimeout bounds one renewal call
const DefaultRefreshTimeout = 15 * time.Second

// Guard is an http.RoundTripper that attaches the bearer token and performs
// at most one refresh-and-replay per request.
type Guard struct {
	next           http.RoundTripper
	store          TokenStore
	refresher      Refresher
	bypass         []string
	onExpired      func(ctx context.Context)
	refreshTimeout time.Duration
	metrics        *metrics.Collectors
	logger         *zap.Logger
	flight         singleflight.Group
}

// GuardOption configures a Guard
type GuardOption func(*Guard)

// WithBypassPaths lists endpoints whose 401 means bad credentials rather
// than an expired session. Paths match as URL path suffixes.
func WithBypassPaths(paths ...string) GuardOption {
	return func(g *Guard) {
		g.bypass = append(g.bypass, paths...)
	}
}

// WithExpiredHook is called after a failed renewal has cleared the token
func WithExpiredHook(fn func(ctx context.Context)) GuardOption {
	return func(g *Guard) {
		g.onExpired = fn
	}
}

// WithRefreshTimeout bounds one renewal call. The renewal is shared by every
// waiting request and does not end when one of them gives up.
func WithRefreshTimeout(d time.Duration) GuardOption {
	return func(g *Guard) {
		g.refreshTimeout = d
	}
}

// WithMetrics records renewal outcomes
func WithMetrics(m *metrics.Collectors) GuardOption {
	return func(g *Guard) {
		g.metrics = m
	}
}

// WithLogger sets the logger for the guard
func WithLogger(logger *zap.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

// NewGuard wraps next. A nil next uses http.DefaultTransport.
func NewGuard(next http.RoundTripper, store TokenStore, refresher Refresher, opts ...GuardOption) *Guard {
	if next == nil {
		next = http.DefaultTransport
	}
	g := &Guard{
		next:           next,
		store:          store,
		refresher:      refresher,
		refreshTimeout: DefaultRefreshTimeout,
		logger:         zap.NewNop(),
		onExpired:      func(context.Context) {},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RoundTrip implements http.RoundTripper.
func (g *Guard) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	body, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	token, err := g.store.Token(ctx)
	if err != nil {
		return nil, err
	}

	retried := false
	for {
		resp, err := g.send(req, token, body)
		if err != nil || resp.StatusCode != http.StatusUnauthorized || retried || g.bypassed(req) {
			return resp, err
		}
		retried = true

		fresh, err := g.renew(ctx, token)
		if err != nil {
			if ctx.Err() != nil {
				// the caller gave up; the session itself is still fine
				drain(resp)
				return nil, ctx.Err()
			}
			g.expire(ctx, req, err)
			return resp, nil
		}
		drain(resp)
		token = fresh
	}
}

func (g *Guard) send(req *http.Request, token string, body func() (io.ReadCloser, error)) (*http.Response, error) {
	out := req.Clone(req.Context())
	if body != nil {
		rc, err := body()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		out.Body = rc
	}
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	return g.next.RoundTrip(out)
}

// renew coalesces concurrent renewals into one refresh call. A request that
// failed with a token another request has already replaced reuses the new one.
// The refresh runs detached from ctx, so a caller that stops waiting neither
// cancels it for the others nor turns its own cancellation into a rejection.
func (g *Guard) renew(ctx context.Context, stale string) (string, error) {
	ch := g.flight.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout)
		defer cancel()

		if current, err := g.store.Token(rctx); err == nil && current != "" && current != stale {
			return current, nil
		}

		token, err := g.refresher.Refresh(rctx)
		g.metrics.TokenRefresh(err == nil)
		if err != nil {
			return "", err
		}
		if err := g.store.SetToken(rctx, token); err != nil {
			return "", err
		}
		g.logger.Debug("access token renewed")
		return token, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (g *Guard) expire(ctx context.Context, req *http.Request, cause error) {
	if err := g.store.Clear(ctx); err != nil {
		g.logger.Error("failed to clear session token", zap.Error(err))
	}
	g.logger.Warn("session expired, login required",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Error(cause),
	)
	g.onExpired(ctx)
}

func (g *Guard) bypassed(req *http.Request) bool {
	path := strings.TrimSuffix(req.URL.Path, "/")
	for _, p := range g.bypass {
		p = "/" + strings.Trim(p, "/")
		if path == p || strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

// replayableBody returns a function yielding a fresh copy of the request
// body for every attempt. The original body is closed.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		_ = req.Body.Close()
		return req.GetBody, nil
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to buffer request body: %w", err)
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
