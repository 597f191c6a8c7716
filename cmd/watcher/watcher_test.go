package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tovakustatus-backend/internal/client/query"
	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/internal/model"
	"tovakustatus-backend/pkg/scheduler"
)

func newQueryClient(t *testing.T, fetch query.Fetcher) (*query.Client, *scheduler.Manual) {
	t.Helper()
	sched := scheduler.NewManual()
	qc := query.NewClient(fetch, query.Options{
		Retries:   -1,
		Scheduler: sched,
		Sleep:     func(context.Context, time.Duration) error { return nil },
	})
	require.NoError(t, qc.Start(context.Background()))
	t.Cleanup(qc.Stop)
	return qc, sched
}

func TestWatcher_TracksCountsAcrossPolls(t *testing.T) {
	var calls atomic.Int32
	qc, sched := newQueryClient(t, func(ctx context.Context, key query.Key) (json.RawMessage, error) {
		if calls.Add(1) == 1 {
			return json.RawMessage(`[{"id":"1"},{"id":"2"}]`), nil
		}
		return json.RawMessage(`[{"id":"1"},{"id":"2"},{"id":"3"}]`), nil
	})

	w := NewWatcher(qc, []query.Key{{"events", "all"}})
	w.Start(context.Background())
	assert.Equal(t, 2, w.Counts()["events/all"])

	sched.Fire("query:poll")
	assert.Equal(t, 3, w.Counts()["events/all"])
}

func TestWatcher_FallsBackToSeedWhenOffline(t *testing.T) {
	qc, _ := newQueryClient(t, func(context.Context, query.Key) (json.RawMessage, error) {
		return nil, errors.New("connection refused")
	})

	w := NewWatcher(qc, []query.Key{{"blogs", "all"}, {"settings"}})
	w.Start(context.Background())

	seed := localstore.DefaultSeed()[localstore.KeyBlogPosts].([]model.BlogPost)
	counts := w.Counts()
	assert.Equal(t, len(seed), counts["blogs/all"])
	assert.NotContains(t, counts, "settings")
}

func TestWatcher_StopDropsSubscriptions(t *testing.T) {
	var calls atomic.Int32
	qc, sched := newQueryClient(t, func(context.Context, query.Key) (json.RawMessage, error) {
		calls.Add(1)
		return json.RawMessage(`[]`), nil
	})

	w := NewWatcher(qc, []query.Key{{"talents", "all"}})
	w.Start(context.Background())
	require.Equal(t, int32(1), calls.Load())

	w.Stop()
	sched.Fire("query:poll")
	assert.Equal(t, int32(1), calls.Load())
}

func TestCountItems(t *testing.T) {
	n, ok := countItems(json.RawMessage(`[1,2,3]`))
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = countItems(json.RawMessage(`{"siteName":"x"}`))
	assert.False(t, ok)
}
