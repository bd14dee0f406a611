package desk

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mehmetnuribasa/boreksan/internal/domain/shared"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/logger"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/session"
	"go.uber.org/zap"
)

// Authenticator logs the desk in and out of the order backend
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
}

// SessionState is what the UI needs to decide between the board and the
// login screen
type SessionState struct {
	LoggedIn bool          `json:"loggedIn"`
	Expired  bool          `json:"expired"`
	Token    *session.Info `json:"token,omitempty"`
}

// SessionService holds the single operator session of the desk
type SessionService struct {
	auth   Authenticator
	store  session.TokenStore
	now    func() time.Time
	logger *zap.Logger

	mu       sync.Mutex
	expired  bool
	operator string
}

// NewSessionService creates a SessionService
func NewSessionService(auth Authenticator, store session.TokenStore, now func() time.Time, l *zap.Logger) *SessionService {
	if now == nil {
		now = time.Now
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &SessionService{auth: auth, store: store, now: now, logger: l}
}

// Login exchanges credentials for an access token and stores it
func (s *SessionService) Login(ctx context.Context, username, password string) (*SessionState, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "username and password are required")
	}

	token, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetToken(ctx, token); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.expired = false
	s.operator = username
	s.mu.Unlock()

	logger.WithLogger(ctx, s.logger).Info("operator logged in", zap.String("username", username))
	return s.State(ctx)
}

// Logout ends the backend session and forgets the token. The local token is
// cleared even if the backend call fails.
func (s *SessionService) Logout(ctx context.Context) error {
	err := s.auth.Logout(ctx)
	if err != nil && !errors.Is(err, shared.ErrSessionExpired) {
		logger.WithLogger(ctx, s.logger).Warn("backend logout failed", zap.Error(err))
	}

	s.mu.Lock()
	s.expired = false
	s.operator = ""
	s.mu.Unlock()

	return s.store.Clear(ctx)
}

// MarkExpired records that the refresh token was rejected. It is installed
// as the session guard's expiry hook.
func (s *SessionService) MarkExpired(ctx context.Context) {
	s.mu.Lock()
	s.expired = true
	s.mu.Unlock()
	logger.WithLogger(ctx, s.logger).Warn("operator session expired")
}

// Operator returns the name of the logged-in operator
func (s *SessionService) Operator() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.operator
}

// State describes the current session
func (s *SessionService) State(ctx context.Context) (*SessionState, error) {
	token, err := s.store.Token(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	state := &SessionState{Expired: s.expired}
	s.mu.Unlock()

	if token == "" {
		return state, nil
	}
	info, err := session.Inspect(token, s.now())
	if err != nil {
		logger.WithLogger(ctx, s.logger).Warn("stored access token is unreadable", zap.Error(err))
		state.LoggedIn = true
		return state, nil
	}
	state.LoggedIn = true
	state.Token = info
	return state, nil
}
