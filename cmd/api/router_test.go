package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tovakustatus-backend/pkg/container"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("STORE_SEED", "true")
	t.Setenv("SITE_URL", "https://example.org")

	c, err := container.NewContainer()
	require.NoError(t, err)
	t.Cleanup(c.Cleanup)
	return SetupRouter(c)
}

func call(r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, env := call(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestRouter_HealthAndPublicReads(t *testing.T) {
	r := newTestRouter(t)

	w, _ := call(r, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	for _, path := range []string{
		"/api/v1/talents/all",
		"/api/v1/projects/all",
		"/api/v1/events/all",
		"/api/v1/events/status/upcoming",
		"/api/v1/blogs/all",
		"/api/v1/settings",
	} {
		w, env := call(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.True(t, env.Success, path)
	}

	w, _ = call(r, http.MethodGet, "/sitemap.xml", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://example.org/talents/1")
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)

	w, _ := call(r, http.MethodPost, "/api/v1/talents", "", map[string]any{"name": "Zuri", "talentType": "Dance"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = call(r, http.MethodGet, "/api/v1/newsletter/all", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_LoginCreateLogout(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r)

	w, env := call(r, http.MethodPost, "/api/v1/talents", token, map[string]any{
		"name":       "Zuri",
		"age":        15,
		"talentType": "Dance",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, _ = call(r, http.MethodGet, "/api/v1/talents/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(r, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The token is still validly signed but no longer matches the session.
	w, _ = call(r, http.MethodDelete, "/api/v1/talents/"+created.ID, token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_ViewsAndNewsletter(t *testing.T) {
	r := newTestRouter(t)

	w, env := call(r, http.MethodPost, "/api/v1/blogs/1/views", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var post struct {
		Views int `json:"views"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.Positive(t, post.Views)

	w, _ = call(r, http.MethodPost, "/api/v1/newsletter", "", map[string]string{"email": "a@example.org", "name": "A"})
	assert.Equal(t, http.StatusCreated, w.Code)
	w, _ = call(r, http.MethodPost, "/api/v1/newsletter", "", map[string]string{"email": "A@example.org", "name": "A"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
