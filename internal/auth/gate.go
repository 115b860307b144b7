package auth

import (
	"log/slog"
	"net/http"

	"github.com/halvard/skald/internal/models"
)

// UserSource resolves session user IDs to user records.
type UserSource interface {
	GetByID(id string) (*models.User, error)
}

// localUser is the synthetic identity injected when authentication is
// disabled (local development mode).
var localUser = &models.User{
	ID:        "local",
	Email:     "editor@localhost",
	FirstName: "Local",
	LastName:  "Editor",
}

// Gate is the single authentication boundary wrapping every admin operation.
// A missing or invalid session short-circuits with 401 before the wrapped
// handler runs, so an unauthenticated call can have no partial side effects.
type Gate struct {
	sessions *Sessions
	users    UserSource
	enabled  bool
}

// NewGate creates the session gate. With enabled=false every request passes
// through carrying the local development identity.
func NewGate(sessions *Sessions, users UserSource, enabled bool) *Gate {
	return &Gate{sessions: sessions, users: users, enabled: enabled}
}

// Require is chi-style middleware enforcing an authenticated session.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.enabled {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), localUser)))
			return
		}

		id, ok := g.sessions.UserID(r)
		if !ok {
			unauthorized(w)
			return
		}
		user, err := g.users.GetByID(id)
		if err != nil {
			slog.Warn("auth: session user not found", slog.String("user_id", id))
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// CurrentUser resolves the session user without enforcing authentication.
// Used by GET /api/auth/user, which must answer 401 itself.
func (g *Gate) CurrentUser(r *http.Request) (*models.User, bool) {
	if !g.enabled {
		return localUser, true
	}
	id, ok := g.sessions.UserID(r)
	if !ok {
		return nil, false
	}
	user, err := g.users.GetByID(id)
	if err != nil {
		return nil, false
	}
	return user, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
