package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/halvard/skald/internal/apperr"
	"github.com/halvard/skald/internal/auth"
	"github.com/halvard/skald/internal/builder"
	"github.com/halvard/skald/internal/poststore"
	"github.com/halvard/skald/internal/render"
)

const maxBodyBytes = 1 << 20

// Handler holds the admin API route handlers.
type Handler struct {
	posts    *poststore.Store
	build    builder.Runner
	renderer *render.Renderer
}

// NewHandler creates a Handler over the post store and build runner.
func NewHandler(posts *poststore.Store, build builder.Runner, renderer *render.Renderer) *Handler {
	return &Handler{posts: posts, build: build, renderer: renderer}
}

// authorID returns the authenticated editor's ID from the request context.
// The session gate guarantees a user is present on admin routes.
func authorID(r *http.Request) string {
	if u, ok := auth.UserFrom(r.Context()); ok {
		return u.ID
	}
	return "unknown"
}

// scheduleRebuild dispatches a best-effort rebuild decoupled from the
// request/response lifecycle. Its outcome is logged, never surfaced to the
// HTTP response: the content mutation has already succeeded and is not
// rolled back on build failure.
func (h *Handler) scheduleRebuild(trigger, slug string) {
	go func() {
		slog.Info("rebuild scheduled",
			slog.String("trigger", trigger),
			slog.String("slug", slug))
		res := h.build.Build(context.Background())
		if !res.Success {
			slog.Warn("rebuild after content change failed",
				slog.String("trigger", trigger),
				slog.String("slug", slug),
				slog.String("error", res.Error))
		}
	}()
}

// ListPosts handles GET /api/admin/posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts := h.posts.ListAll()
	writeJSON(w, http.StatusOK, map[string]any{
		"posts": posts,
		"total": len(posts),
	})
}

// GetPost handles GET /api/admin/posts/{slug}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.posts.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("post not found"))
			return
		}
		slog.Error("get post failed", slog.String("slug", slug), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// CreatePost handles POST /api/admin/posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	post, err := h.posts.Create(req.Input(authorID(r)))
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("a post with this slug already exists"))
			return
		}
		slog.Error("create post failed", slog.String("title", req.Title), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	if post.Published() {
		h.scheduleRebuild("create", post.Slug)
	}
	writeJSON(w, http.StatusCreated, post)
}

// UpdatePost handles PUT /api/admin/posts/{slug}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	slug := chi.URLParam(r, "slug")

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	post, err := h.posts.Update(slug, req.Patch(authorID(r)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("post not found"))
			return
		}
		slog.Error("update post failed", slog.String("slug", slug), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	if post.Published() {
		h.scheduleRebuild("update", post.Slug)
	}
	writeJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/admin/posts/{slug}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	// Whether the public site needs a rebuild depends on the state the
	// post had before removal.
	wasPublished := false
	if post, err := h.posts.GetBySlug(slug); err == nil {
		wasPublished = post.Published()
	}

	if err := h.posts.Delete(slug); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("post not found"))
			return
		}
		slog.Error("delete post failed", slog.String("slug", slug), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	if wasPublished {
		h.scheduleRebuild("delete", slug)
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": slug})
}

// PreviewPost handles GET /api/admin/posts/{slug}/preview.
func (h *Handler) PreviewPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.posts.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("post not found"))
			return
		}
		slog.Error("preview failed", slog.String("slug", slug), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	html, err := h.renderer.HTML(post.Content)
	if err != nil {
		slog.Error("preview render failed", slog.String("slug", slug), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{Slug: slug, HTML: html})
}

// Stats handles GET /api/admin/stats. Totals are derived by filtering the
// full post list in memory; no separate counters are maintained.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	all := h.posts.ListAll()

	stats := StatsResponse{TotalPosts: len(all)}
	var last time.Time
	for _, p := range all {
		if p.Published() {
			stats.PublishedPosts++
		} else {
			stats.DraftPosts++
		}
		if p.UpdatedAt.After(last) {
			last = p.UpdatedAt
		}
	}
	if !last.IsZero() {
		stats.LastUpdate = &last
	}
	writeJSON(w, http.StatusOK, stats)
}

// SearchPosts handles GET /api/admin/posts/search?q=.
func (h *Handler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	results := h.posts.Search(q)
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"total":   len(results),
	})
}

// ForceBuild handles POST /api/admin/build, surfacing the builder result
// verbatim. A busy builder answers 409; a failed build answers 500. The
// build runs on its own timeout, detached from the request context: a client
// disconnect must not abort a build already rewriting the public site.
func (h *Handler) ForceBuild(w http.ResponseWriter, r *http.Request) {
	res := h.build.Build(context.Background())
	switch {
	case res.Success:
		writeJSON(w, http.StatusOK, res)
	case res.Error == apperr.ErrBuildBusy.Error():
		writeJSON(w, http.StatusConflict, res)
	default:
		writeJSON(w, http.StatusInternalServerError, res)
	}
}
