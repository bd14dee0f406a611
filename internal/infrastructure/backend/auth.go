package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mehmetnuribasa/boreksan/internal/domain/shared"
)

// Login exchanges credentials for an access token. The refresh cookie set by
// the backend lands in the client's cookie jar.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out authResponse
	creds := Credentials{Username: username, Password: password}
	err := c.do(ctx, call{method: http.MethodPost, route: c.paths.login, path: c.paths.login, body: creds}, &out)
	if IsUnauthorized(err) {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("login response carried no access token")
	}
	return out.AccessToken, nil
}

// Logout ends the session on the backend
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodPost, route: c.paths.logout, path: c.paths.logout, body: struct{}{}}, nil)
}
