package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tovakustatus-backend/internal/infrastructure/memory"
	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/internal/model"
)

func newService(t *testing.T) *Service {
	t.Helper()
	store := localstore.New(memory.NewStore())
	require.NoError(t, store.Initialize(context.Background()))
	return NewService(localstore.NewRepository[model.NewsletterSubscriber](store, localstore.KeySubscribers))
}

func TestSubscribe(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	sub, err := svc.Subscribe(ctx, SubscribeRequest{Email: " A@B.com ", Name: "A"})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "a@b.com", sub.Email)

	_, err = svc.Subscribe(ctx, SubscribeRequest{Email: "a@b.COM", Name: "Again"})
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	_, err = svc.Subscribe(ctx, SubscribeRequest{Email: "not-an-email", Name: "X"})
	assert.ErrorIs(t, err, ErrValidation)

	subs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "A", subs[0].Name)
}

func TestExport(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, err := svc.Subscribe(ctx, SubscribeRequest{Email: "a@b.com", Name: "A"})
	require.NoError(t, err)

	f, err := svc.Export(ctx)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ID", "Name", "Email", "Subscribed At"}, rows[0])
	assert.Equal(t, "a@b.com", rows[1][2])
}

func TestHandler_SubscribeConflictAndExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(newService(t))
	r := gin.New()
	r.POST("/newsletter", h.Subscribe)
	r.GET("/newsletter/export", h.Export)

	post := func() int {
		body, _ := json.Marshal(map[string]string{"email": "a@b.com", "name": "A"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/newsletter", bytes.NewReader(body)))
		return w.Code
	}
	assert.Equal(t, http.StatusCreated, post())
	assert.Equal(t, http.StatusConflict, post())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/newsletter/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSubscribe_ConcurrentSameEmailStoresOnce(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var conflicts atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Subscribe(ctx, SubscribeRequest{Email: "same@b.com", Name: "Same"})
			if errors.Is(err, ErrAlreadySubscribed) {
				conflicts.Add(1)
				return
			}
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	subs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
	assert.Equal(t, int32(31), conflicts.Load())
}
