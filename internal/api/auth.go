package api

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/halvard/skald/internal/auth"
)

const stateCookie = "oauth_state"

// AuthHandler implements the login endpoints around the session gate.
type AuthHandler struct {
	gate     *auth.Gate
	sessions *auth.Sessions
	oauth    *auth.OAuth
	adminURL string
	loginURL string
}

// NewAuthHandler creates the auth endpoints. oauth may be nil when
// authentication runs in disabled mode.
func NewAuthHandler(gate *auth.Gate, sessions *auth.Sessions, oauth *auth.OAuth) *AuthHandler {
	return &AuthHandler{
		gate:     gate,
		sessions: sessions,
		oauth:    oauth,
		adminURL: "/admin/",
		loginURL: "/admin/login",
	}
}

// CurrentUser handles GET /api/auth/user.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.gate.CurrentUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Login handles GET /api/auth/login: sets the CSRF state cookie and
// redirects to the provider consent page.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /api/auth/callback. A failed login establishes no
// session; the browser is sent back to the login page with a coarse reason
// code.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if err := validateState(r); err != nil {
		h.loginFailed(w, r, "state_mismatch", err)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.loginFailed(w, r, "missing_code", fmt.Errorf("callback without code parameter"))
		return
	}

	user, err := h.oauth.HandleCallback(r.Context(), code)
	if err != nil {
		h.loginFailed(w, r, "exchange_failed", err)
		return
	}

	if err := h.sessions.SignIn(w, r, user.ID); err != nil {
		h.loginFailed(w, r, "session_failed", err)
		return
	}

	slog.Info("editor signed in", slog.String("user_id", user.ID), slog.String("email", user.Email))
	http.Redirect(w, r, h.adminURL, http.StatusTemporaryRedirect)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		slog.Error("sign out failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, reason string, err error) {
	slog.Warn("login failed", slog.String("reason", reason), slog.String("error", err.Error()))
	http.Redirect(w, r, h.loginURL+"?error="+reason, http.StatusTemporaryRedirect)
}

func generateState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "fallback-state"
	}
	return base64.URLEncoding.EncodeToString(b)
}

func validateState(r *http.Request) error {
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		return fmt.Errorf("missing %s cookie", stateCookie)
	}
	state := r.URL.Query().Get("state")
	if state == "" || state != cookie.Value {
		return fmt.Errorf("state mismatch")
	}
	return nil
}
