// Package session persists the client's session across process restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/templui/securefiles/internal/model"
)

// Fixed storage keys.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

var keys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

var ErrIncompleteSession = errors.New("session is missing a token or user")

type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Save persists all three parts of the session atomically.
func (s *Store) Save(ctx context.Context, sess model.Session) error {
	if !sess.Valid() {
		return ErrIncompleteSession
	}

	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	err = s.kv.SetAll(ctx, map[string]string{
		KeyAccessToken:  sess.AccessToken,
		KeyRefreshToken: sess.RefreshToken,
		KeyUser:         string(user),
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Load returns the stored session, or false if any key is missing, empty or
// malformed. It never returns a partial session and never fails: storage
// errors are logged and reported as no session.
func (s *Store) Load(ctx context.Context) (*model.Session, bool) {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		value, err := s.kv.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, ErrKeyNotFound) {
				slog.Warn("failed to read session", "key", key, "error", err)
			}
			return nil, false
		}
		values[key] = value
	}

	var user model.User
	if err := json.Unmarshal([]byte(values[KeyUser]), &user); err != nil {
		slog.Warn("stored session user is malformed, ignoring session", "error", err)
		return nil, false
	}

	sess := &model.Session{
		AccessToken:  values[KeyAccessToken],
		RefreshToken: values[KeyRefreshToken],
		User:         user,
	}
	if !sess.Valid() {
		return nil, false
	}

	return sess, true
}

// Clear removes every session key. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	err := s.kv.Delete(ctx, keys...)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
