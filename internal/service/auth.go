package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/templui/securefiles/internal/apiclient"
	"github.com/templui/securefiles/internal/model"
	"github.com/templui/securefiles/internal/session"
)

type AuthState int

const (
	Unauthenticated AuthState = iota
	Authenticated
)

func (s AuthState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// AuthService owns the current session. It is the only writer of the
// session store.
type AuthService struct {
	client *apiclient.Client
	store  *session.Store

	mu      sync.RWMutex
	session *model.Session
}

func NewAuthService(client *apiclient.Client, store *session.Store) *AuthService {
	return &AuthService{
		client: client,
		store:  store,
	}
}

// Restore adopts a previously saved session without contacting the server.
// Reports whether one was found.
func (s *AuthService) Restore(ctx context.Context) bool {
	sess, ok := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
	return ok
}

// Login exchanges credentials for a token pair and persists the session.
// Credentials are sent as entered; the server is the only validator.
func (s *AuthService) Login(ctx context.Context, creds model.Credentials) error {
	pair, err := s.client.Login(ctx, creds)
	if err != nil {
		return err
	}

	sess := model.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         model.User{Email: creds.Email},
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return err
	}

	s.mu.Lock()
	s.session = &sess
	s.mu.Unlock()

	slog.Info("logged in", "email", sess.User.Email)
	return nil
}

// Register creates an account. It does not sign in.
func (s *AuthService) Register(ctx context.Context, creds model.Credentials) error {
	if err := s.client.Register(ctx, creds); err != nil {
		return err
	}
	slog.Info("registered account", "email", creds.Email)
	return nil
}

// Logout forgets the session. The in-memory state is cleared even when the
// store cannot be, in which case the store error is returned.
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		slog.Error("failed to clear stored session", "error", err)
		return err
	}
	return nil
}

// Invalidate logs out after the server rejected the session and returns a
// *SessionError wrapping cause.
func (s *AuthService) Invalidate(ctx context.Context, cause error) error {
	slog.Warn("session rejected by server, logging out", "error", cause)
	_ = s.Logout(ctx)
	return &SessionError{Err: cause}
}

// Refresh trades the refresh token for a new pair, keeping the user.
// Never called implicitly.
func (s *AuthService) Refresh(ctx context.Context) error {
	current := s.Session()
	if current == nil {
		return ErrNotAuthenticated
	}

	pair, err := s.client.Refresh(ctx, current.RefreshToken)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return s.Invalidate(ctx, err)
		}
		return err
	}

	next := model.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         current.User,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to save refreshed session: %w", err)
	}

	s.mu.Lock()
	s.session = &next
	s.mu.Unlock()

	slog.Debug("session refreshed", "email", next.User.Email, "expires_at", next.ExpiresAt())
	return nil
}

func (s *AuthService) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Unauthenticated
	}
	return Authenticated
}

// Session returns a copy of the current session, or nil.
func (s *AuthService) Session() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	sess := *s.session
	return &sess
}

func (s *AuthService) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return model.User{}, false
	}
	return s.session.User, true
}
