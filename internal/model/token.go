package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// TokenPair is returned by /auth/login and /auth/refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is the persisted authentication state of one client.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// Valid reports whether every part of the session is present.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != "" && s.User.Email != ""
}

// Token returns the access token in the form used to sign requests.
func (s *Session) Token() *oauth2.Token {
	if s == nil || s.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       s.ExpiresAt(),
	}
}

// ExpiresAt reads the exp claim of the access token without verifying the
// signature. Zero if the token is not a JWT or carries no expiry.
// Informational only: stale tokens are discovered by the server.
func (s *Session) ExpiresAt() time.Time {
	if s == nil || s.AccessToken == "" {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims)
	if err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// IsExpired is true only when the token carries an expiry in the past.
func (s *Session) IsExpired() bool {
	exp := s.ExpiresAt()
	return !exp.IsZero() && time.Now().After(exp)
}
