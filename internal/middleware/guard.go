package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/model"
	"github.com/inkpost/inkpost/internal/service"
	"github.com/inkpost/inkpost/internal/web"
)

// GuardFunc is one step of a guard chain. It either returns the request
// to pass on (possibly with an enriched context) and true, or writes a
// response and returns false to stop the chain.
type GuardFunc func(w http.ResponseWriter, r *http.Request) (*http.Request, bool)

// Guard runs guards in order before the handler. The first guard that
// returns false short-circuits the chain.
func Guard(guards ...GuardFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, g := range guards {
				var ok bool
				r, ok = g(w, r)
				if !ok {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthentication stops anonymous callers.
// HTML clients are redirected to the login page, API clients get 401.
func RequireAuthentication() GuardFunc {
	return func(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
		if auth.UserFromContext(r.Context()) == nil {
			web.Unauthenticated(w, r)
			return r, false
		}
		return r, true
	}
}

// PostFinder loads a post by ID.
type PostFinder interface {
	Get(ctx context.Context, id string) (*model.Post, error)
}

type postContextKey struct{}

// LoadPost resolves the {id} route parameter to a post and stores it in
// the request context. Missing posts get the static 404.
func LoadPost(finder PostFinder, logger *slog.Logger) GuardFunc {
	return func(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
		id := chi.URLParam(r, "id")

		post, err := finder.Get(r.Context(), id)
		if err != nil {
			if !errors.Is(err, service.ErrPostNotFound) {
				logger.Error("failed to load post",
					slog.String("post_id", id),
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				web.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				return r, false
			}
			web.NotFound(w, r)
			return r, false
		}

		ctx := context.WithValue(r.Context(), postContextKey{}, post)
		return r.WithContext(ctx), true
	}
}

// PostFromContext returns the post stored by LoadPost.
func PostFromContext(ctx context.Context) *model.Post {
	post, _ := ctx.Value(postContextKey{}).(*model.Post)
	return post
}

// RequireOwner applies the authorization gate for op to the loaded post.
// Must run after LoadPost so a missing post is reported as 404 first.
func RequireOwner(op auth.Operation) GuardFunc {
	return func(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
		post := PostFromContext(r.Context())
		user := auth.UserFromContext(r.Context())

		if auth.Authorize(user, post, op) != auth.Allow {
			web.NotAuthorized(w, r)
			return r, false
		}
		return r, true
	}
}
