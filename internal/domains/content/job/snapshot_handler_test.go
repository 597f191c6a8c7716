package job

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tovakustatus-backend/internal/infrastructure/memory"
	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/internal/shared"
)

type fakeObjects struct {
	objects   map[string][]byte
	uploadErr error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.objects[key] = data
	return "mem://" + key, nil
}

func (f *fakeObjects) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeObjects) RemoveObjects(_ context.Context, keys []string) error {
	for _, k := range keys {
		delete(f.objects, k)
	}
	return nil
}

func newHandler(t *testing.T) (*SnapshotHandler, *fakeObjects) {
	t.Helper()
	store := localstore.New(memory.NewStore())
	require.NoError(t, store.Initialize(context.Background()))
	objects := newFakeObjects()
	h := NewSnapshotHandler(store, objects)
	h.now = func() time.Time { return time.Date(2026, 3, 1, 2, 30, 0, 0, time.UTC) }
	return h, objects
}

func TestSnapshot_WritesEveryCollection(t *testing.T) {
	h, objects := newHandler(t)

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeSnapshotContent, nil))
	require.NoError(t, err)

	body, ok := objects.objects["snapshots/20260301T023000Z.json"]
	require.True(t, ok)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	for _, key := range localstore.CollectionKeys {
		assert.Contains(t, snap.Collections, key)
	}
	assert.NotEmpty(t, snap.Settings)
	assert.True(t, snap.TakenAt.Equal(h.now()))
}

func TestSnapshot_PrunesBeyondKeep(t *testing.T) {
	h, objects := newHandler(t)
	objects.objects["snapshots/20260101T000000Z.json"] = []byte("{}")
	objects.objects["snapshots/20260201T000000Z.json"] = []byte("{}")
	objects.objects["sitemap.xml"] = []byte("<urlset/>")

	payload, _ := json.Marshal(shared.SnapshotContentPayload{Keep: 2})
	require.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeSnapshotContent, payload)))

	keys, _ := objects.List(context.Background(), shared.SnapshotPrefix)
	assert.Equal(t, []string{
		"snapshots/20260201T000000Z.json",
		"snapshots/20260301T023000Z.json",
	}, keys)
	assert.Contains(t, objects.objects, "sitemap.xml")
}

func TestSnapshot_BadPayloadSkipsRetry(t *testing.T) {
	h, _ := newHandler(t)

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeSnapshotContent, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestSnapshot_UploadFailureIsReturned(t *testing.T) {
	h, objects := newHandler(t)
	objects.uploadErr = errors.New("bucket gone")

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeSnapshotContent, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket gone")
}
