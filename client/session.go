// Package client is the API client the travel-blog front end embeds:
// it holds the current token pair and cached profile, attaches the
// bearer credential to outgoing calls, and self-heals when the session
// goes stale.
package client

import (
	"errors"
	"sync"

	"github.com/trektales/trektalesbackend/models"
)

var ErrSessionExpired = errors.New("session expired")

// Session is the browser-side holder of the token pair and a
// denormalized copy of the user profile.
type Session struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	user         *models.User
}

func (s *Session) Set(user *models.User, accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

// Clear wipes all session material. Called on logout and whenever the
// server says the session is no longer valid.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
}

func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != ""
}
