package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrRefreshRejected is returned when the backend refuses to renew the session
var ErrRefreshRejected = errors.New("session refresh rejected")

// Refresher obtains a new access token
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// HTTPRefresher renews the access token with the refresh cookie the backend
// set at login. The cookie lives in the client's jar; the refresher never
// reads or attaches it itself.
type HTTPRefresher struct {
	client *http.Client
	url    string
}

// NewHTTPRefresher creates a refresher posting to refreshURL. client must not
// route through a Guard, and should share the cookie jar used for login.
func NewHTTPRefresher(client *http.Client, refreshURL string) *HTTPRefresher {
	return &HTTPRefresher{client: client, url: refreshURL}
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (r *HTTPRefresher) Refresh(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, strings.NewReader("{}"))
	if err != nil {
		return "", fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status %d", ErrRefreshRejected, resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrRefreshRejected)
	}
	return body.AccessToken, nil
}
