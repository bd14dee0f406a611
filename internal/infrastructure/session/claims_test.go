package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims Claims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestInspect(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("reads subject, role and expiry", func(t *testing.T) {
		token := signed(t, Claims{
			Role: "ADMIN",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "admin",
				ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
			},
		})

		info, err := Inspect(token, now)
		require.NoError(t, err)
		assert.Equal(t, "admin", info.Subject)
		assert.Equal(t, "ADMIN", info.Role)
		assert.False(t, info.Expired)
		assert.True(t, info.ExpiresAt.Equal(now.Add(15*time.Minute)))
	})

	t.Run("expired token is still readable", func(t *testing.T) {
		token := signed(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "lale",
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		}})

		info, err := Inspect(token, now)
		require.NoError(t, err)
		assert.True(t, info.Expired)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := Inspect("not-a-jwt", now)
		assert.Error(t, err)
	})
}

func TestHTTPRefresher(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr error
	}{
		{name: "success", status: http.StatusOK, body: `{"accessToken":"n1"}`, want: "n1"},
		{name: "rejected", status: http.StatusForbidden, body: `{}`, wantErr: ErrRefreshRejected},
		{name: "empty token", status: http.StatusOK, body: `{"accessToken":""}`, wantErr: ErrRefreshRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewHTTPRefresher(srv.Client(), srv.URL+"/auth/refresh").Refresh(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
