package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tovakustatus-backend/internal/domains/content"
	"tovakustatus-backend/internal/infrastructure/memory"
	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/internal/model"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	n := 0
	store := localstore.New(memory.NewStore(), localstore.WithIDGenerator(func() string {
		n++
		return "new-" + strconv.Itoa(n)
	}))
	require.NoError(t, store.Initialize(context.Background()))

	talents := NewHandler(content.NewService("talent", localstore.NewRepository[model.Talent](store, localstore.KeyTalents)))
	projects := NewHandler(content.NewService("project", localstore.NewRepository[model.Project](store, localstore.KeyProjects)))
	events := NewEventHandler(content.NewEventService(content.NewService("event", localstore.NewRepository[model.Event](store, localstore.KeyEvents))))

	r := gin.New()
	r.GET("/talents/all", talents.List)
	r.GET("/talents/:id", talents.Get)
	r.POST("/talents", talents.Create)
	r.PATCH("/talents/:id", talents.Update)
	r.DELETE("/talents/:id", talents.Delete)
	r.POST("/talents/:id/views", talents.RecordView)
	r.POST("/projects/:id/views", projects.RecordView)
	r.GET("/events/status/:status", events.ListByStatus)
	r.PATCH("/events/:id", events.Update)
	return r
}

func do(r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestTalentCRUD(t *testing.T) {
	r := setup(t)

	w, env := do(r, http.MethodPost, "/talents", map[string]any{
		"name": "Amani", "age": 14, "talentType": "Music", "status": "Active",
		"imageUrl": map[string]string{"secure_url": "https://cdn/amani.jpg"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.Talent
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "new-1", created.ID)
	assert.Equal(t, model.MediaURL("https://cdn/amani.jpg"), created.ImageURL)

	w, env = do(r, http.MethodPatch, "/talents/new-1", map[string]any{"status": "Alumni"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.Talent
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Alumni", updated.Status)
	assert.Equal(t, "Amani", updated.Name)

	w, _ = do(r, http.MethodPatch, "/talents/missing", map[string]any{"status": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(r, http.MethodPost, "/talents/new-1/views", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, model.Views(1), updated.Views)

	w, _ = do(r, http.MethodDelete, "/talents/new-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(r, http.MethodDelete, "/talents/new-1", nil)
	assert.Equal(t, http.StatusOK, w.Code, "deleting twice is a no-op")
	w, _ = do(r, http.MethodGet, "/talents/new-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreate_ValidationNeverPersists(t *testing.T) {
	r := setup(t)
	_, env := do(r, http.MethodGet, "/talents/all", nil)
	var before []model.Talent
	require.NoError(t, json.Unmarshal(env.Data, &before))

	w, env := do(r, http.MethodPost, "/talents", map[string]any{"name": "", "age": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "name")
	assert.Contains(t, env.Error.Details, "age")

	_, env = do(r, http.MethodGet, "/talents/all", nil)
	var after []model.Talent
	require.NoError(t, json.Unmarshal(env.Data, &after))
	assert.Len(t, after, len(before))
}

func TestEventStatusFilter(t *testing.T) {
	r := setup(t)

	upcoming := func() []model.Event {
		_, env := do(r, http.MethodGet, "/events/status/upcoming", nil)
		var out []model.Event
		require.NoError(t, json.Unmarshal(env.Data, &out))
		return out
	}
	ids := func(events []model.Event) []string {
		var out []string
		for _, e := range events {
			out = append(out, e.ID)
		}
		return out
	}

	assert.NotContains(t, ids(upcoming()), "2")

	w, _ := do(r, http.MethodPatch, "/events/2", map[string]any{"status": "upcoming"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, ids(upcoming()), "2")

	w, _ = do(r, http.MethodPatch, "/events/2", map[string]any{"status": "someday"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(r, http.MethodGet, "/events/status/someday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordView_NotViewable(t *testing.T) {
	r := setup(t)
	w, _ := do(r, http.MethodPost, "/projects/1/views", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
