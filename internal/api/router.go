package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/halvard/skald/internal/auth"
	"github.com/halvard/skald/internal/builder"
	"github.com/halvard/skald/internal/poststore"
	"github.com/halvard/skald/internal/render"
)

// Deps carries everything the API routes need.
type Deps struct {
	Posts    *poststore.Store
	Build    builder.Runner
	Renderer *render.Renderer
	Gate     *auth.Gate
	Sessions *auth.Sessions
	OAuth    *auth.OAuth // nil in disabled auth mode
	Limiter  *RateLimiter
}

// NewRouter creates a chi router with all API routes mounted.
// Every admin route sits behind the session gate; the rate limiter, when
// configured, covers the whole surface.
func NewRouter(d Deps) chi.Router {
	h := NewHandler(d.Posts, d.Build, d.Renderer)
	ah := NewAuthHandler(d.Gate, d.Sessions, d.OAuth)

	r := chi.NewRouter()
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/user", ah.CurrentUser)
		r.Post("/logout", ah.Logout)
		if d.OAuth != nil {
			r.Get("/login", ah.Login)
			r.Get("/callback", ah.Callback)
		}
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(d.Gate.Require)

		r.Get("/posts", h.ListPosts)
		r.Post("/posts", h.CreatePost)
		r.Get("/posts/search", h.SearchPosts)
		r.Get("/posts/{slug}", h.GetPost)
		r.Put("/posts/{slug}", h.UpdatePost)
		r.Delete("/posts/{slug}", h.DeletePost)
		r.Get("/posts/{slug}/preview", h.PreviewPost)

		r.Get("/stats", h.Stats)
		r.Post("/build", h.ForceBuild)
	})

	return r
}
