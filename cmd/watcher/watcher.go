package main

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"tovakustatus-backend/internal/client/query"
	"tovakustatus-backend/internal/localstore"
)

// seedKeys maps the first read segment to the local store key holding the
// bundled seed data for that collection.
var seedKeys = map[string]string{
	"talents":  localstore.KeyTalents,
	"projects": localstore.KeyProjects,
	"events":   localstore.KeyEvents,
	"blogs":    localstore.KeyBlogPosts,
}

// Watcher keeps live item counts (the dashboard badges) for a set of list
// reads, refreshed by the query client's polling.
type Watcher struct {
	query *query.Client
	keys  []query.Key

	mu     sync.RWMutex
	counts map[string]int
	unsubs []func()
}

func NewWatcher(q *query.Client, keys []query.Key) *Watcher {
	return &Watcher{query: q, keys: keys, counts: make(map[string]int)}
}

// Start primes every key once (falling back to seed data when the API is
// unreachable) and subscribes to subsequent refreshes.
func (w *Watcher) Start(ctx context.Context) {
	for _, key := range w.keys {
		key := key
		unsub := w.query.Subscribe(key, func(res query.Result) {
			if res.Err != nil {
				log.Warn().Err(res.Err).Str("key", key.String()).Msg("watch: refresh failed")
				return
			}
			w.update(key, res.Data)
		})

		w.mu.Lock()
		w.unsubs = append(w.unsubs, unsub)
		w.mu.Unlock()

		raw, err := w.query.Fetch(ctx, key, seedFallback(key))
		if err != nil {
			log.Warn().Err(err).Str("key", key.String()).Msg("watch: initial load failed")
			continue
		}
		w.update(key, raw)
	}
}

// Stop drops all subscriptions; in-flight results are discarded.
func (w *Watcher) Stop() {
	w.mu.Lock()
	unsubs := w.unsubs
	w.unsubs = nil
	w.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}

// Counts returns a copy of the latest badge counts keyed by read key.
func (w *Watcher) Counts() map[string]int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]int, len(w.counts))
	for k, v := range w.counts {
		out[k] = v
	}
	return out
}

func (w *Watcher) update(key query.Key, raw json.RawMessage) {
	n, ok := countItems(raw)
	if !ok {
		log.Debug().Str("key", key.String()).Msg("watch: payload is not a list")
		return
	}

	w.mu.Lock()
	prev, seen := w.counts[key.String()]
	w.counts[key.String()] = n
	w.mu.Unlock()

	if !seen || prev != n {
		log.Info().Str("key", key.String()).Int("count", n).Int("previous", prev).Msg("watch: badge updated")
	}
}

func countItems(raw json.RawMessage) (int, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, false
	}
	return len(items), true
}

// seedFallback serves the bundled seed collection for "<collection>/all"
// reads; other keys get no fallback.
func seedFallback(key query.Key) query.FetchOption {
	return query.WithFallback(func(context.Context) (any, error) {
		if len(key) != 2 || key[1] != "all" {
			return nil, query.ErrUnavailable
		}
		storeKey, ok := seedKeys[key[0]]
		if !ok {
			return nil, query.ErrUnavailable
		}
		return localstore.DefaultSeed()[storeKey], nil
	})
}
