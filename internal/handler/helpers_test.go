package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost/internal/metrics"
	"github.com/inkpost/inkpost/internal/middleware"
	"github.com/inkpost/inkpost/internal/repository/memory"
	"github.com/inkpost/inkpost/internal/service"
	"github.com/inkpost/inkpost/internal/web"
)

const (
	testCookieName = "session_id"
	testPassword   = "correct horse battery"
)

type testServer struct {
	router  http.Handler
	store   *memory.Store
	metrics *metrics.InMemoryRecorder
	users   *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	recorder := metrics.NewInMemory()

	authService := service.NewAuthService(store, store, nil, time.Minute, logger, recorder)
	userService := service.NewUserService(store, nil, logger)
	postService := service.NewPostService(store, logger, recorder)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.MethodOverride)
	r.Use(middleware.Authenticate(middleware.AuthConfig{
		Logger:     logger,
		Resolver:   authService,
		CookieName: testCookieName,
	}))

	Routes{
		Handler:  New(),
		Posts:    NewPostHandler(postService, logger),
		Sessions: NewSessionHandler(authService, web.CookieConfig{SessionName: testCookieName}, logger),
		Metrics:  NewMetricsHandler(recorder),
		Finder:   postService,
		Logger:   logger,
	}.Register(r)

	return &testServer{router: r, store: store, metrics: recorder, users: userService}
}

// register creates a user directly through the service.
func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	user, err := s.users.Register(context.Background(), email, testPassword)
	require.NoError(t, err)
	return user.ID
}

// login signs in as an API client and returns the session token.
func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, jsonRequest(t, http.MethodPost, "/login", map[string]string{
		"email_address": email,
		"password":      testPassword,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// createPost creates a post as token and returns its ID.
func (s *testServer) createPost(t *testing.T, token, title string) string {
	t.Helper()
	req := jsonRequest(t, http.MethodPost, "/posts", map[string]any{
		"post": map[string]any{"title": title, "body": "body of " + title},
	})
	withBearer(req, token)

	rec := s.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Post struct {
			ID string `json:"id"`
		} `json:"post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Post.ID
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func withSessionCookie(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	return req
}

// responseCookie returns the named cookie set on the response, if any.
func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
