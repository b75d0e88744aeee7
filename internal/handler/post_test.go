package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostHandler_IndexAnonymous(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/posts"} {
		rec := s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)

		body := decodeBody(t, rec)
		posts, ok := body["posts"].([]any)
		require.True(t, ok, "posts should be a JSON array on %s", path)
		assert.Empty(t, posts)
	}
}

func TestPostHandler_AnonymousWritesRedirectToLogin(t *testing.T) {
	s := newTestServer(t)

	t.Run("new form stores return-to", func(t *testing.T) {
		rec := s.do(t, httptest.NewRequest(http.MethodGet, "/posts/new", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.NotNil(t, responseCookie(rec, "return_to"))
	})

	t.Run("create via form", func(t *testing.T) {
		rec := s.do(t, formRequest(http.MethodPost, "/posts", url.Values{"post[title]": {"Hi"}}))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("create via JSON", func(t *testing.T) {
		rec := s.do(t, jsonRequest(t, http.MethodPost, "/posts", map[string]any{
			"post": map[string]any{"title": "Hi"},
		}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHENTICATED", decodeBody(t, rec)["code"])
	})

	posts, err := s.store.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostHandler_CreateJSON(t *testing.T) {
	s := newTestServer(t)
	userID := s.register(t, "a@x.com")
	other := s.register(t, "b@x.com")
	token := s.login(t, "a@x.com")

	req := jsonRequest(t, http.MethodPost, "/posts", map[string]any{
		"post": map[string]any{
			"title":     "Hello",
			"body":      "World",
			"published": true,
			"user_id":   other,
			"id":        "chosen-by-client",
		},
		"admin": true,
	})
	rec := s.do(t, withBearer(req, token))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	post := decodeBody(t, rec)["post"].(map[string]any)
	assert.Equal(t, "Hello", post["title"])
	assert.Equal(t, "World", post["body"])
	assert.Equal(t, true, post["published"])
	assert.Equal(t, userID, post["user_id"], "owner must come from the session, not the body")
	assert.NotEqual(t, "chosen-by-client", post["id"])
	assert.Equal(t, "/posts/"+post["id"].(string), rec.Header().Get("Location"))

	view := s.do(t, httptest.NewRequest(http.MethodGet, "/posts/"+post["id"].(string), nil))
	require.Equal(t, http.StatusOK, view.Code)
	viewed := decodeBody(t, view)["post"].(map[string]any)
	assert.Equal(t, "Hello", viewed["title"])
	assert.Equal(t, "World", viewed["body"])
	assert.Equal(t, userID, viewed["user_id"])

	assert.Equal(t, uint64(1), s.metrics.Snapshot().PostsCreated)
}

func TestPostHandler_CreateFormWithFlash(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com")
	token := s.login(t, "a@x.com")

	form := url.Values{
		"post[title]":     {"From a form"},
		"post[body]":      {"Typed in a textarea"},
		"post[published]": {"0", "1"},
		"post[user_id]":   {"someone-else"},
	}
	rec := s.do(t, withSessionCookie(formRequest(http.MethodPost, "/posts", form), token))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/posts/"), location)

	flash := responseCookie(rec, "flash")
	require.NotNil(t, flash)

	show := httptest.NewRequest(http.MethodGet, location, nil)
	show.AddCookie(flash)
	view := s.do(t, show)
	require.Equal(t, http.StatusOK, view.Code)

	body := decodeBody(t, view)
	post := body["post"].(map[string]any)
	assert.Equal(t, "From a form", post["title"])
	assert.Equal(t, true, post["published"])
	assert.Equal(t, map[string]any{"notice": NoticePostCreated}, body["flash"])

	cleared := responseCookie(view, "flash")
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestPostHandler_CreateValidation(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com")
	token := s.login(t, "a@x.com")

	t.Run("blank fields", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/posts", map[string]any{
			"post": map[string]any{"title": "  ", "body": ""},
		})
		rec := s.do(t, withBearer(req, token))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "VALIDATION_FAILED", body["code"])
		fields := body["fields"].(map[string]any)
		assert.Contains(t, fields, "title")
		assert.Contains(t, fields, "body")
	})

	t.Run("missing post param", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/posts", map[string]any{"title": "top level"})
		rec := s.do(t, withBearer(req, token))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing form param", func(t *testing.T) {
		req := formRequest(http.MethodPost, "/posts", url.Values{"title": {"x"}})
		rec := s.do(t, withSessionCookie(req, token))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := s.do(t, withBearer(req, token))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	posts, err := s.store.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostHandler_ShowUnknown(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/posts/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "resource not found", decodeBody(t, rec)["error"])
}

func TestPostHandler_EditForm(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com")
	token := s.login(t, "a@x.com")
	id := s.createPost(t, token, "Editable")

	req := withBearer(httptest.NewRequest(http.MethodGet, "/posts/"+id+"/edit", nil), token)
	rec := s.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	form := body["form"].(map[string]any)
	assert.Equal(t, "/posts/"+id, form["action"])
	assert.Equal(t, "patch", form["method"])
	assert.Equal(t, "Editable", body["values"].(map[string]any)["title"])
}

func TestPostHandler_UpdateOwner(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com")
	token := s.login(t, "a@x.com")
	id := s.createPost(t, token, "Before")

	req := jsonRequest(t, http.MethodPatch, "/posts/"+id, map[string]any{
		"post": map[string]any{"title": "After", "published": "1"},
	})
	rec := s.do(t, withBearer(req, token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	post := decodeBody(t, rec)["post"].(map[string]any)
	assert.Equal(t, "After", post["title"])
	assert.Equal(t, "body of Before", post["body"], "fields absent from the request stay unchanged")
	assert.Equal(t, true, post["published"])

	t.Run("invalid update persists nothing", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPut, "/posts/"+id, map[string]any{
			"post": map[string]any{"title": ""},
		})
		rec := s.do(t, withBearer(req, token))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		stored, err := s.store.GetPostByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "After", stored.Title)
	})

	t.Run("form update via method override", func(t *testing.T) {
		form := url.Values{"_method": {"patch"}, "post[body]": {"Edited in a form"}}
		rec := s.do(t, withSessionCookie(formRequest(http.MethodPost, "/posts/"+id, form), token))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/posts/"+id, rec.Header().Get("Location"))

		stored, err := s.store.GetPostByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Edited in a form", stored.Body)
	})
}

func TestPostHandler_DestroyOwner(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com")
	token := s.login(t, "a@x.com")
	id := s.createPost(t, token, "Short lived")

	rec := s.do(t, withSessionCookie(formRequest(http.MethodPost, "/posts/"+id, url.Values{"_method": {"delete"}}), token))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/posts", rec.Header().Get("Location"))
	assert.NotNil(t, responseCookie(rec, "flash"))

	again := s.do(t, withBearer(jsonRequest(t, http.MethodDelete, "/posts/"+id, nil), token))
	assert.Equal(t, http.StatusNotFound, again.Code)

	view := s.do(t, httptest.NewRequest(http.MethodGet, "/posts/"+id, nil))
	assert.Equal(t, http.StatusNotFound, view.Code)
}

func TestPostHandler_NonOwnerIsRejected(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "a@x.com")
	s.register(t, "b@x.com")
	tokenA := s.login(t, "a@x.com")
	tokenB := s.login(t, "b@x.com")
	id := s.createPost(t, tokenA, "Mine")

	t.Run("HTML clients are redirected with an alert", func(t *testing.T) {
		for _, req := range []*http.Request{
			httptest.NewRequest(http.MethodGet, "/posts/"+id+"/edit", nil),
			formRequest(http.MethodPatch, "/posts/"+id, url.Values{"post[title]": {"Hijacked"}}),
			formRequest(http.MethodPost, "/posts/"+id, url.Values{"_method": {"delete"}}),
		} {
			rec := s.do(t, withSessionCookie(req, tokenB))
			assert.Equal(t, http.StatusSeeOther, rec.Code, req.Method)
			assert.Equal(t, "/posts", rec.Header().Get("Location"))
			assert.NotNil(t, responseCookie(rec, "flash"))
		}
	})

	t.Run("API clients get 403", func(t *testing.T) {
		patch := jsonRequest(t, http.MethodPatch, "/posts/"+id, map[string]any{
			"post": map[string]any{"title": "Hijacked"},
		})
		rec := s.do(t, withBearer(patch, tokenB))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Not authorized.", decodeBody(t, rec)["error"])

		del := s.do(t, withBearer(jsonRequest(t, http.MethodDelete, "/posts/"+id, nil), tokenB))
		assert.Equal(t, http.StatusForbidden, del.Code)
	})

	stored, err := s.store.GetPostByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Mine", stored.Title)

	t.Run("anyone can view", func(t *testing.T) {
		rec := s.do(t, httptest.NewRequest(http.MethodGet, "/posts/"+id, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing post is 404 before the gate", func(t *testing.T) {
		rec := s.do(t, withBearer(jsonRequest(t, http.MethodDelete, "/posts/missing", nil), tokenB))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPostHandler_UnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
