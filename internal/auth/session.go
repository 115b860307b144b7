// Package auth implements the session gate guarding the admin surface and
// the OAuth login flow that establishes sessions.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/halvard/skald/internal/models"
)

const sessionUserKey = "user_id"

// Sessions binds browser cookies to authenticated user IDs for a bounded
// duration.
type Sessions struct {
	store *sessions.CookieStore
	name  string
}

// NewSessions creates a cookie-backed session store. maxAge is in seconds.
func NewSessions(secret, name string, maxAge int) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store, name: name}
}

// SignIn binds the request's session cookie to a user ID.
func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, _ := s.store.Get(r, s.name)
	sess.Values[sessionUserKey] = userID
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("auth: save session: %w", err)
	}
	return nil
}

// SignOut expires the session cookie.
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, s.name)
	sess.Options.MaxAge = -1
	delete(sess.Values, sessionUserKey)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("auth: clear session: %w", err)
	}
	return nil
}

// UserID returns the user ID bound to the request's session, if any.
func (s *Sessions) UserID(r *http.Request) (string, bool) {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		return "", false
	}
	id, ok := sess.Values[sessionUserKey].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

type userCtxKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFrom extracts the authenticated user from the context.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*models.User)
	return u, ok
}
