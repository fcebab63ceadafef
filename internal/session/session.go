// Package session owns the client-side authentication state: the current
// user, the bearer token, and its expiry. The session is an explicit value
// with a load/save/clear lifecycle; nothing in this repo reaches for it as a
// package global.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dayplan-cli/internal/model"
)

// TokenTTL matches the backend's 7-day token cookie.
const TokenTTL = 7 * 24 * time.Hour

const sessionFileName = "session.json"

type Session struct {
	User      model.User `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// SignedIn reports whether the session holds an unexpired token.
func (s *Session) SignedIn() bool {
	return s != nil && s.Token != "" && time.Now().Before(s.ExpiresAt)
}

// UserID is the string form the AI endpoints expect.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return strconv.Itoa(s.User.ID)
}

// New builds a session for a freshly issued token.
func New(user model.User, token string) *Session {
	return &Session{User: user, Token: token, ExpiresAt: time.Now().Add(TokenTTL)}
}

func sessionPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionFileName), nil
}

// Load reads the persisted session. A missing file or an expired token
// yields (nil, nil): signed out, no error.
func Load() (*Session, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if !s.SignedIn() {
		// Expired tokens demote to signed-out; clean up eagerly.
		_ = Clear()
		return nil, nil
	}
	return &s, nil
}

func Save(s *Session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	// 0600: the file contains a bearer token.
	return atomicWriteFile(dir, "session.json.*.tmp", path, b, 0o600)
}

// Clear removes the persisted session (logout, expiry, 401).
func Clear() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
