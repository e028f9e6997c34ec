// Package appctx holds the process-wide theme and session. It is built once
// at startup; the setters are the only way to change it.
package appctx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"expertcof/internal/auth"
	"expertcof/internal/preferences"
)

var ErrSignedOut = errors.New("not signed in")

// Refresher turns a stored token into a refreshing source.
type Refresher interface {
	TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource
}

// Context is safe for concurrent use.
type Context struct {
	mu        sync.RWMutex
	store     preferences.Store
	refresher Refresher
	state     preferences.State
}

// New loads the saved state. refresher may be nil, in which case an expired
// token means signed out.
func New(store preferences.Store, refresher Refresher) (*Context, error) {
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Context{store: store, refresher: refresher, state: st}, nil
}

// Theme returns the current theme.
func (c *Context) Theme() preferences.Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Theme.OrDefault()
}

// UserID returns the signed-in user, or "".
func (c *Context) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state.Session == nil {
		return ""
	}
	return c.state.Session.UserID
}

// Email returns the signed-in user's email, or "".
func (c *Context) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state.Session == nil {
		return ""
	}
	return c.state.Session.Email
}

// LastAnalysisID returns the analysis most recently opened.
func (c *Context) LastAnalysisID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.LastAnalysisID
}

// Token returns a valid access token, refreshing and saving it when needed.
func (c *Context) Token(ctx context.Context) (*oauth2.Token, error) {
	c.mu.RLock()
	sess := c.state.Session
	c.mu.RUnlock()
	if sess == nil || sess.AccessToken == "" {
		return nil, ErrSignedOut
	}

	tok := tokenFromSession(sess)
	if tok.Valid() {
		return tok, nil
	}
	if c.refresher == nil || tok.RefreshToken == "" {
		return nil, ErrSignedOut
	}
	fresh, err := c.refresher.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Session == nil {
		return nil, ErrSignedOut
	}
	updated := sessionFromToken(fresh, sess)
	next := c.state
	next.Session = updated
	if err := c.store.Save(next); err != nil {
		return nil, err
	}
	c.state = next
	return fresh, nil
}

// SignIn records a new session.
func (c *Context) SignIn(tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return ErrSignedOut
	}
	return c.update(func(st *preferences.State) {
		st.Session = sessionFromToken(tok, nil)
	})
}

// SignOut forgets the session.
func (c *Context) SignOut() error {
	return c.update(func(st *preferences.State) {
		st.Session = nil
		st.LastAnalysisID = ""
	})
}

// SetTheme persists theme.
func (c *Context) SetTheme(theme preferences.Theme) error {
	return c.update(func(st *preferences.State) { st.Theme = theme })
}

// ToggleTheme flips and persists the theme.
func (c *Context) ToggleTheme() (preferences.Theme, error) {
	var next preferences.Theme
	err := c.update(func(st *preferences.State) {
		next = st.Theme.Toggle()
		st.Theme = next
	})
	return next, err
}

// SetLastAnalysisID remembers the analysis the user opened.
func (c *Context) SetLastAnalysisID(id string) error {
	return c.update(func(st *preferences.State) { st.LastAnalysisID = id })
}

// update applies fn to a copy and keeps it only if the save succeeds.
func (c *Context) update(fn func(*preferences.State)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.state
	fn(&next)
	if err := c.store.Save(next); err != nil {
		return err
	}
	c.state = next
	return nil
}

func tokenFromSession(s *preferences.Session) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
}

// sessionFromToken keeps identity from prev when the refreshed token lacks it.
func sessionFromToken(tok *oauth2.Token, prev *preferences.Session) *preferences.Session {
	s := &preferences.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		UserID:       auth.UserID(tok),
		Email:        auth.Email(tok),
	}
	if prev != nil {
		if s.UserID == "" {
			s.UserID = prev.UserID
		}
		if s.Email == "" {
			s.Email = prev.Email
		}
		if s.RefreshToken == "" {
			s.RefreshToken = prev.RefreshToken
		}
	}
	return s
}
