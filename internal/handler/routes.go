package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/middleware"
)

// Routes bundles the handlers and guard dependencies mounted by Register.
type Routes struct {
	Handler   *Handler
	Posts     *PostHandler
	Sessions  *SessionHandler
	Metrics   *MetricsHandler
	Finder    middleware.PostFinder
	RateLimit middleware.RateLimitConfig
	Logger    *slog.Logger
}

// Register mounts the application routes with their guard chains.
// The authenticate middleware must already be installed on r.
func (rt Routes) Register(r chi.Router) {
	requireAuth := middleware.RequireAuthentication()
	loadPost := middleware.LoadPost(rt.Finder, rt.Logger)

	ownerOf := func(op auth.Operation) func(chi.Router) chi.Router {
		return func(r chi.Router) chi.Router {
			return r.With(middleware.Guard(requireAuth, loadPost, middleware.RequireOwner(op)))
		}
	}

	r.Get("/", rt.Posts.Index)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", rt.Posts.Index)
		r.With(middleware.Guard(requireAuth)).Get("/new", rt.Posts.New)
		r.With(middleware.Guard(requireAuth)).Post("/", rt.Posts.Create)

		r.With(middleware.Guard(loadPost)).Get("/{id}", rt.Posts.Show)
		ownerOf(auth.OpEdit)(r).Get("/{id}/edit", rt.Posts.Edit)
		ownerOf(auth.OpUpdate)(r).Patch("/{id}", rt.Posts.Update)
		ownerOf(auth.OpUpdate)(r).Put("/{id}", rt.Posts.Update)
		ownerOf(auth.OpDestroy)(r).Delete("/{id}", rt.Posts.Destroy)
	})

	r.Get("/login", rt.Sessions.New)
	r.With(middleware.RateLimitIP(rt.RateLimit)).Post("/login", rt.Sessions.Create)
	r.With(middleware.Guard(requireAuth)).Delete("/logout", rt.Sessions.Destroy)

	if rt.Metrics != nil {
		r.Get("/metrics", rt.Metrics.Metrics)
	}

	r.NotFound(rt.Handler.NotFound)
	r.MethodNotAllowed(rt.Handler.MethodNotAllowed)
}
