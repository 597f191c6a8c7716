package job

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tovakustatus-backend/internal/domains/sitemap"
	"tovakustatus-backend/internal/infrastructure/memory"
	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/internal/shared"
)

type recordingUploader struct {
	key         string
	body        []byte
	contentType string
}

func (r *recordingUploader) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	r.key, r.body, r.contentType = key, data, contentType
	return "mem://" + key, nil
}

type failingRenderer struct{}

func (failingRenderer) Render(context.Context) ([]byte, error) {
	return nil, errors.New("store offline")
}

func TestGenerate_UploadsRenderedSitemap(t *testing.T) {
	store := localstore.New(memory.NewStore())
	require.NoError(t, store.Initialize(context.Background()))
	up := &recordingUploader{}

	h := NewGenerateHandler(sitemap.NewGenerator("https://example.org", store), up)
	require.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeGenerateSitemap, nil)))

	assert.Equal(t, shared.SitemapObjectKey, up.key)
	assert.Equal(t, "application/xml", up.contentType)
	assert.Contains(t, string(up.body), "https://example.org/talents/1")
}

func TestGenerate_RenderErrorIsRetryable(t *testing.T) {
	up := &recordingUploader{}
	h := NewGenerateHandler(failingRenderer{}, up)

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeGenerateSitemap, nil))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, up.key)
}
