// Package session holds the authenticated identity of the console process:
// the bearer token and a minimal user profile. A Session is created once at
// startup from a Store and passed explicitly to the gateway.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bizconsole/internal/model"
)

// Profile is the minimal user record persisted alongside the token.
type Profile struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Role      model.Role `json:"role"`
}

// State is what a Store persists.
type State struct {
	Token   string    `json:"token"`
	User    Profile   `json:"user"`
	SavedAt time.Time `json:"saved_at"`
}

// Store persists State. Load reports false when nothing is stored.
type Store interface {
	Load(ctx context.Context) (State, bool, error)
	Save(ctx context.Context, st State) error
	Clear(ctx context.Context) error
}

// Claims are the access-token claims the console reads. The signature is not
// checked client side; the backend remains the authority.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ParseClaims decodes token claims without verifying the signature.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("session: parse token: %w", err)
	}
	return claims, nil
}

// Session is safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	store  Store
	state  State
	claims *Claims
	now    func() time.Time
}

// New loads any persisted state from store.
func New(ctx context.Context, store Store) (*Session, error) {
	s := &Session{store: store, now: time.Now}
	st, ok, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	if ok {
		s.set(st)
	}
	return s, nil
}

// must be called under lock (or before the session is shared)
func (s *Session) set(st State) {
	s.state = st
	s.claims = nil
	if st.Token != "" {
		if c, err := ParseClaims(st.Token); err == nil {
			s.claims = c
		}
	}
}

// Token returns the bearer token, or "" when absent or expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Token == "" || s.expiredLocked() {
		return ""
	}
	return s.state.Token
}

func (s *Session) expiredLocked() bool {
	if s.claims == nil || s.claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(s.claims.ExpiresAt.Time)
}

// Authenticated reports whether a usable token is held.
func (s *Session) Authenticated() bool { return s.Token() != "" }

// User returns the stored profile.
func (s *Session) User() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User, s.state.Token != ""
}

// Role prefers the token's role claim over the stored profile.
func (s *Session) Role() model.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims != nil && s.claims.Role != "" {
		return model.Role(s.claims.Role)
	}
	return s.state.User.Role
}

// ExpiresAt returns the token expiry, zero if unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil || s.claims.ExpiresAt == nil {
		return time.Time{}
	}
	return s.claims.ExpiresAt.Time
}

// Login persists a freshly issued token and profile.
func (s *Session) Login(ctx context.Context, token string, user model.User) error {
	st := State{
		Token: token,
		User: Profile{
			ID:        user.ID,
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
		SavedAt: s.now(),
	}
	if err := s.store.Save(ctx, st); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	s.mu.Lock()
	s.set(st)
	s.mu.Unlock()
	return nil
}

// Logout clears the persisted state.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	s.mu.Lock()
	s.set(State{})
	s.mu.Unlock()
	return nil
}
