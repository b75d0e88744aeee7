package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/handler/dto"
	"github.com/inkpost/inkpost/internal/middleware"
	"github.com/inkpost/inkpost/internal/service"
	"github.com/inkpost/inkpost/internal/web"
)

// Flash notices for post writes.
const (
	NoticePostCreated   = "Post was successfully created."
	NoticePostUpdated   = "Post was successfully updated."
	NoticePostDestroyed = "Post was successfully destroyed."
)

var (
	errMissingPostParam = errors.New("param is missing or the value is empty: post")
	errInvalidJSON      = errors.New("invalid JSON body")
)

// PostHandler handles post endpoints.
type PostHandler struct {
	service *service.PostService
	logger  *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{service: svc, logger: logger}
}

// Index handles GET /posts and GET /.
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	web.WriteJSON(w, http.StatusOK, dto.PostListEnvelope{
		Posts: dto.FromPosts(posts),
		Flash: web.PopFlash(w, r),
	})
}

// Show handles GET /posts/{id}. The post is loaded by the LoadPost guard.
func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	post := middleware.PostFromContext(r.Context())
	if post == nil {
		web.NotFound(w, r)
		return
	}

	web.WriteJSON(w, http.StatusOK, dto.PostEnvelope{
		Post:  dto.FromPost(post),
		Flash: web.PopFlash(w, r),
	})
}

// New handles GET /posts/new.
func (h *PostHandler) New(w http.ResponseWriter, r *http.Request) {
	web.WriteJSON(w, http.StatusOK, dto.PostFormResponse{
		Form: dto.Form{
			Action: web.PostsPath,
			Method: "post",
			Fields: dto.PostFields,
		},
		Flash: web.PopFlash(w, r),
	})
}

// Edit handles GET /posts/{id}/edit.
func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	post := middleware.PostFromContext(r.Context())
	if post == nil {
		web.NotFound(w, r)
		return
	}

	web.WriteJSON(w, http.StatusOK, dto.PostFormResponse{
		Form: dto.Form{
			Action: dto.PostURL(post.ID),
			Method: "patch",
			Fields: dto.PostFields,
		},
		Values: dto.PostFormValues{
			Title:     post.Title,
			Body:      post.Body,
			Published: post.Published,
		},
		Flash: web.PopFlash(w, r),
	})
}

// Create handles POST /posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := decodePostInput(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	user := auth.UserFromContext(r.Context())

	post, err := h.service.Create(r.Context(), user, input)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("post_created",
		"post_id", post.ID,
		"user_id", post.UserID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	location := dto.PostURL(post.ID)
	if web.WantsJSON(r) {
		w.Header().Set("Location", location)
		web.WriteJSON(w, http.StatusCreated, dto.PostEnvelope{Post: dto.FromPost(post)})
		return
	}
	web.SetNotice(w, NoticePostCreated)
	web.Redirect(w, r, location)
}

// Update handles PATCH and PUT /posts/{id}.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	input, err := decodePostInput(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	user := auth.UserFromContext(r.Context())

	post, err := h.service.Update(r.Context(), user, id, input)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("post_updated",
		"post_id", post.ID,
		"user_id", post.UserID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	if web.WantsJSON(r) {
		web.WriteJSON(w, http.StatusOK, dto.PostEnvelope{Post: dto.FromPost(post)})
		return
	}
	web.SetNotice(w, NoticePostUpdated)
	web.Redirect(w, r, dto.PostURL(post.ID))
}

// Destroy handles DELETE /posts/{id}.
func (h *PostHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := auth.MustUserFromContext(r.Context())

	if err := h.service.Destroy(r.Context(), user, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("post_deleted",
		"post_id", id,
		"user_id", user.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	if web.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	web.SetNotice(w, NoticePostDestroyed)
	web.Redirect(w, r, web.PostsPath)
}

// decodePostInput reads the post params from a JSON or form body.
// Only title, body and published are picked up.
func decodePostInput(r *http.Request) (service.PostInput, error) {
	if isJSONBody(r) {
		var req dto.CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return service.PostInput{}, errInvalidJSON
		}
		if req.Post == nil {
			return service.PostInput{}, errMissingPostParam
		}
		input := service.PostInput{
			Title: req.Post.Title,
			Body:  req.Post.Body,
		}
		if req.Post.Published != nil {
			published := bool(*req.Post.Published)
			input.Published = &published
		}
		return input, nil
	}

	if err := r.ParseForm(); err != nil {
		return service.PostInput{}, errMissingPostParam
	}

	var input service.PostInput
	found := false
	if v, ok := lastFormValue(r, "post[title]"); ok {
		input.Title = &v
		found = true
	}
	if v, ok := lastFormValue(r, "post[body]"); ok {
		input.Body = &v
		found = true
	}
	if v, ok := lastFormValue(r, "post[published]"); ok {
		published := dto.ParseFormBool(v)
		input.Published = &published
		found = true
	}
	if !found && !hasFormPrefix(r, "post[") {
		return service.PostInput{}, errMissingPostParam
	}
	return input, nil
}

// lastFormValue returns the last submitted value for key. A checkbox
// posts a hidden "0" before its "1", so the last one wins.
func lastFormValue(r *http.Request, key string) (string, bool) {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

func hasFormPrefix(r *http.Request, prefix string) bool {
	for key := range r.PostForm {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func isJSONBody(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
