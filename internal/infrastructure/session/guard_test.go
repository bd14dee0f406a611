package session

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend answers API calls from a scripted list of statuses and serves
// the refresh endpoint when the refresh cookie is present.
type fakeBackend struct {
	server     *httptest.Server
	mu         sync.Mutex
	statuses   []int
	apiCalls   int
	authSeen   []string
	bodiesSeen []string
	refreshes  atomic.Int32
	refreshOK  atomic.Bool
	validToken string
}

func newFakeBackend(t *testing.T, statuses ...int) *fakeBackend {
	b := &fakeBackend{statuses: statuses, validToken: "fresh-token"}
	b.refreshOK.Store(true)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshes.Add(1)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{}`, string(body))
		assert.Empty(t, r.Header.Get("Authorization"), "refresh relies on the cookie only")

		cookie, err := r.Cookie("refreshToken")
		if !b.refreshOK.Load() || err != nil || cookie.Value != "r1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		time.Sleep(10 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"accessToken":"`+b.validToken+`"}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.apiCalls++
		b.authSeen = append(b.authSeen, r.Header.Get("Authorization"))
		b.bodiesSeen = append(b.bodiesSeen, string(body))
		status := http.StatusOK
		if len(b.statuses) > 0 {
			status, b.statuses = b.statuses[0], b.statuses[1:]
		}
		b.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, http.StatusText(status))
	})
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) url(path string) string {
	return b.server.URL + "/api/" + path
}

func (b *fakeBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.apiCalls
}

func (b *fakeBackend) auth() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.authSeen...)
}

func (b *fakeBackend) bodies() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodiesSeen...)
}

type harness struct {
	client  *http.Client
	store   *MemoryStore
	expired atomic.Int32
}

func newHarness(t *testing.T, b *fakeBackend, token string) *harness {
	return newHarnessFor(t, b.server.URL, token)
}

func newHarnessFor(t *testing.T, serverURL, token string) *harness {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	u, _ := url.Parse(serverURL)
	jar.SetCookies(u, []*http.Cookie{{Name: "refreshToken", Value: "r1", Path: "/"}})

	h := &harness{store: NewMemoryStore()}
	require.NoError(t, h.store.SetToken(context.Background(), token))

	refresher := NewHTTPRefresher(&http.Client{Jar: jar}, serverURL+"/api/auth/refresh")
	guard := NewGuard(nil, h.store, refresher,
		WithBypassPaths("auth/login", "auth/register"),
		WithExpiredHook(func(context.Context) { h.expired.Add(1) }),
	)
	h.client = &http.Client{Transport: guard, Jar: jar}
	return h
}

func (h *harness) get(t *testing.T, rawURL string) *http.Response {
	resp, err := h.client.Get(rawURL)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGuard_StampsToken(t *testing.T) {
	b := newFakeBackend(t)
	h := newHarness(t, b, "old-token")

	resp := h.get(t, b.url("orders"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Bearer old-token"}, b.auth())
	assert.Equal(t, int32(0), b.refreshes.Load())
}

func TestGuard_NoTokenNoHeader(t *testing.T) {
	b := newFakeBackend(t)
	h := newHarness(t, b, "")

	h.get(t, b.url("products"))

	assert.Equal(t, []string{""}, b.auth())
}

func TestGuard_RefreshesAndReplaysOnce(t *testing.T) {
	b := newFakeBackend(t, http.StatusUnauthorized, http.StatusOK)
	h := newHarness(t, b, "old-token")

	req, err := http.NewRequest(http.MethodPost, b.url("orders/daily-update"),
		strings.NewReader(`{"shopName":"A","productId":1,"targetQuantity":5}`))
	require.NoError(t, err)
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "renewal is transparent to the caller")
	assert.Equal(t, int32(1), b.refreshes.Load())
	assert.Equal(t, []string{"Bearer old-token", "Bearer fresh-token"}, b.auth())
	bodies := b.bodies()
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1], "body is replayed")

	token, _ := h.store.Token(context.Background())
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, int32(0), h.expired.Load())
}

func TestGuard_SecondUnauthorizedIsFinal(t *testing.T) {
	b := newFakeBackend(t, http.StatusUnauthorized, http.StatusUnauthorized, http.StatusOK)
	h := newHarness(t, b, "old-token")

	resp := h.get(t, b.url("orders"))

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), b.refreshes.Load(), "no second refresh")
	assert.Equal(t, 2, b.calls(), "one attempt and one retry")
}

func TestGuard_LoginIsNeverRefreshed(t *testing.T) {
	for _, path := range []string{"auth/login", "auth/register"} {
		t.Run(path, func(t *testing.T) {
			b := newFakeBackend(t, http.StatusUnauthorized)
			h := newHarness(t, b, "")

			resp, err := h.client.Post(b.url(path), "application/json", strings.NewReader(`{"username":"x","password":"y"}`))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, int32(0), b.refreshes.Load())
			assert.Equal(t, 1, b.calls())
		})
	}
}

func TestGuard_RefreshFailureExpiresSession(t *testing.T) {
	b := newFakeBackend(t, http.StatusUnauthorized, http.StatusOK)
	b.refreshOK.Store(false)
	h := newHarness(t, b, "old-token")

	resp := h.get(t, b.url("orders"))

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "original failure reaches the caller")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
	assert.Equal(t, 1, b.calls(), "no replay after a failed renewal")
	assert.Equal(t, int32(1), h.expired.Load())

	token, _ := h.store.Token(context.Background())
	assert.Empty(t, token, "token is cleared")
}

func TestGuard_ConcurrentRequestsShareOneRenewal(t *testing.T) {
	mux := http.NewServeMux()
	var refreshes atomic.Int32
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		time.Sleep(20 * time.Millisecond)
		_, _ = io.WriteString(w, `{"accessToken":"fresh-token"}`)
	})
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	h := newHarnessFor(t, server.URL, "old-token")

	const workers = 8
	var wg sync.WaitGroup
	codes := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := h.client.Get(server.URL + "/api/orders")
			if !assert.NoError(t, err) {
				return
			}
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), refreshes.Load())
	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
}

func TestGuard_BufferedBodyWithoutGetBody(t *testing.T) {
	b := newFakeBackend(t, http.StatusUnauthorized, http.StatusOK)
	h := newHarness(t, b, "old-token")

	req, err := http.NewRequest(http.MethodPost, b.url("orders"), io.NopCloser(strings.NewReader(`{"items":[]}`)))
	require.NoError(t, err)
	require.Nil(t, req.GetBody)

	resp, err := h.client.Transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{`{"items":[]}`, `{"items":[]}`}, b.bodies())
}

// heldRefresher blocks every renewal until release is closed
type heldRefresher struct {
	release chan struct{}
	calls   atomic.Int32
}

func (r *heldRefresher) Refresh(ctx context.Context) (string, error) {
	r.calls.Add(1)
	select {
	case <-r.release:
		return "fresh-token", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newFreshTokenServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGuard_CallerCancellationKeepsSession(t *testing.T) {
	server := newFreshTokenServer(t)
	store := NewMemoryStore()
	require.NoError(t, store.SetToken(context.Background(), "old-token"))
	refresher := &heldRefresher{release: make(chan struct{})}
	var expired atomic.Int32
	guard := NewGuard(nil, store, refresher,
		WithExpiredHook(func(context.Context) { expired.Add(1) }),
	)
	client := &http.Client{Transport: guard}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/orders", nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, expired.Load(), "a caller timing out is not a rejected renewal")
	token, _ := store.Token(context.Background())
	assert.Equal(t, "old-token", token)

	// the renewal carries on without the caller and lands in the store
	close(refresher.release)
	assert.Eventually(t, func() bool {
		token, _ := store.Token(context.Background())
		return token == "fresh-token"
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, expired.Load())
}

func TestGuard_WaiterGivesUpAlone(t *testing.T) {
	server := newFreshTokenServer(t)
	store := NewMemoryStore()
	require.NoError(t, store.SetToken(context.Background(), "old-token"))
	refresher := &heldRefresher{release: make(chan struct{})}
	guard := NewGuard(nil, store, refresher)
	client := &http.Client{Transport: guard}

	patient := make(chan int, 1)
	go func() {
		resp, err := client.Get(server.URL + "/api/orders")
		if !assert.NoError(t, err) {
			patient <- 0
			return
		}
		resp.Body.Close()
		patient <- resp.StatusCode
	}()
	assert.Eventually(t, func() bool { return refresher.calls.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/products", nil)
	require.NoError(t, err)
	impatient := make(chan error, 1)
	go func() {
		_, err := client.Do(req)
		impatient <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-impatient, context.Canceled)

	close(refresher.release)
	assert.Equal(t, http.StatusOK, <-patient)
	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestGuard_RefreshTimeout(t *testing.T) {
	server := newFreshTokenServer(t)
	store := NewMemoryStore()
	require.NoError(t, store.SetToken(context.Background(), "old-token"))
	var expired atomic.Int32
	guard := NewGuard(nil, store, &heldRefresher{release: make(chan struct{})},
		WithRefreshTimeout(20*time.Millisecond),
		WithExpiredHook(func(context.Context) { expired.Add(1) }),
	)

	resp, err := (&http.Client{Transport: guard}).Get(server.URL + "/api/orders")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), expired.Load(), "a renewal that never answers ends the session")
}
