// Package query is the keyed read cache in front of the remote API. Reads
// sharing a key share one cached result and one in-flight request; fresh
// results are served without a network call; subscribed keys are re-polled
// on a fixed interval; failures degrade to cached, snapshot or fallback data.
package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"tovakustatus-backend/internal/client/remote"
)

// Fetcher performs the network read for key and returns the raw payload.
type Fetcher func(ctx context.Context, key Key) (json.RawMessage, error)

// FromRemote adapts a remote client: GET {base}/{key segments}.
func FromRemote(rc *remote.Client) Fetcher {
	return func(ctx context.Context, key Key) (json.RawMessage, error) {
		return rc.GetRaw(ctx, key)
	}
}

// SnapshotStore persists the last good payload per key as an offline fallback.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, key string) (json.RawMessage, bool, error)
	SaveSnapshot(ctx context.Context, key string, data json.RawMessage) error
}

type Source string

const (
	SourceNetwork  Source = "network"
	SourceCache    Source = "cache"
	SourceSnapshot Source = "snapshot"
	SourceFallback Source = "fallback"
)

// Result is delivered to subscribers after every refresh of their key.
type Result struct {
	Key    Key
	Data   json.RawMessage
	Source Source
	Err    error
}

type subscription struct {
	fn     func(Result)
	active atomic.Bool
}

type entry struct {
	key        Key
	data       json.RawMessage
	hasData    bool
	fetchedAt  time.Time
	stale      bool
	gen        uint64 // bumped by Invalidate
	dataGen    uint64 // gen the cached data was fetched under
	lastErr    error
	lastAccess time.Time
	subs       map[uint64]*subscription
}

type Client struct {
	fetch Fetcher
	opts  Options

	mu      sync.Mutex
	entries map[string]*entry
	nextSub uint64
	group   singleflight.Group

	runCtx  context.Context
	cancels []func()
}

func NewClient(fetch Fetcher, opts Options) *Client {
	opts.withDefaults()
	return &Client{
		fetch:   fetch,
		opts:    opts,
		entries: make(map[string]*entry),
		runCtx:  context.Background(),
	}
}

// entryLocked returns the entry for key, creating it. Caller holds c.mu.
func (c *Client) entryLocked(key Key) *entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: append(Key(nil), key...), subs: make(map[uint64]*subscription)}
		c.entries[id] = e
	}
	e.lastAccess = c.opts.Now()
	return e
}

// Fetch returns the payload for key. A fresh cached value is returned
// without touching the network.
func (c *Client) Fetch(ctx context.Context, key Key, opts ...FetchOption) (json.RawMessage, error) {
	cfg := fetchConfig{staleTime: c.opts.StaleTime}
	for _, opt := range opts {
		opt(&cfg)
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	if e.hasData && !e.stale && c.opts.Now().Sub(e.fetchedAt) < cfg.staleTime {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	data, err := c.load(ctx, key)
	if err == nil {
		return data, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("query %s: %w", key, ctx.Err())
	}
	return c.degrade(ctx, key, err, cfg)
}

// Query decodes the payload for key into T. A nil result with a nil error
// means "no data" (a JSON null, or a 401 under WithNullOn401).
func Query[T any](ctx context.Context, c *Client, key Key, opts ...FetchOption) (*T, error) {
	raw, err := c.Fetch(ctx, key, opts...)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("query %s: decode: %w", key, err)
	}
	return &out, nil
}

// load runs one coalesced network read with retries and records the outcome.
// The shared read runs detached from ctx so a caller that goes away does not
// fail the others; it stops only when the client's run context ends. Each
// caller waits on its own ctx.
func (c *Client) load(ctx context.Context, key Key) (json.RawMessage, error) {
	id := key.String()
	ch := c.group.DoChan(id, func() (interface{}, error) {
		c.mu.Lock()
		gen := c.entryLocked(key).gen
		runCtx := c.runCtx
		c.mu.Unlock()

		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()
		stop := context.AfterFunc(runCtx, cancel)
		defer stop()

		data, err := c.fetchWithRetry(fctx, key)
		c.record(fctx, key, gen, data, err)
		return data, err
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("query %s: %w", key, ctx.Err())
	case res := <-ch:
		if res.Shared {
			log.Debug().Str("key", id).Msg("query: joined in-flight request")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	}
}

func (c *Client) fetchWithRetry(ctx context.Context, key Key) (json.RawMessage, error) {
	var lastErr error
	for attempt := 0; attempt <= c.opts.Retries; attempt++ {
		if attempt > 0 {
			delay := RetryDelay(attempt - 1)
			log.Debug().Str("key", key.String()).Int("attempt", attempt).Dur("delay", delay).Msg("query: retrying read")
			if err := c.opts.Sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("query %s: %w", key, err)
			}
		}
		data, err := c.fetch(ctx, key)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return nil, lastErr
}

// record stores a network outcome and notifies subscribers. A read that
// started before an invalidation is kept but leaves the entry stale, and it
// never replaces data fetched after the invalidation.
func (c *Client) record(ctx context.Context, key Key, gen uint64, data json.RawMessage, err error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	stored := false
	if err == nil {
		if !e.hasData || gen >= e.dataGen {
			stored = true
			e.data = data
			e.hasData = true
			e.dataGen = gen
			e.fetchedAt = c.opts.Now()
			e.stale = gen != e.gen
		}
		e.lastErr = nil
	} else {
		e.lastErr = err
	}
	res := Result{Key: e.key, Data: e.data, Source: SourceNetwork, Err: err}
	if err != nil && e.hasData {
		res.Source = SourceCache
	}
	subs := activeSubs(e)
	c.mu.Unlock()

	if stored && c.opts.Snapshots != nil {
		if serr := c.opts.Snapshots.SaveSnapshot(ctx, key.String(), data); serr != nil {
			log.Warn().Err(serr).Str("key", key.String()).Msg("query: snapshot not saved")
		}
	}

	for _, s := range subs {
		deliver(s, res)
	}
}

// degrade walks cached data, the snapshot store and the fallback in order.
func (c *Client) degrade(ctx context.Context, key Key, cause error, cfg fetchConfig) (json.RawMessage, error) {
	if cfg.nullOn401 && errors.Is(cause, remote.ErrUnauthorized) {
		return nil, nil
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	if e.hasData {
		data := e.data
		c.mu.Unlock()
		log.Warn().Err(cause).Str("key", key.String()).Msg("query: serving cached data")
		return data, nil
	}
	c.mu.Unlock()

	if c.opts.Snapshots != nil {
		data, ok, err := c.opts.Snapshots.LoadSnapshot(ctx, key.String())
		if err != nil {
			log.Warn().Err(err).Str("key", key.String()).Msg("query: snapshot read failed")
		}
		if ok {
			log.Warn().Err(cause).Str("key", key.String()).Msg("query: serving snapshot")
			return data, nil
		}
	}

	if cfg.fallback != nil {
		v, err := cfg.fallback(ctx)
		if err == nil {
			data, merr := json.Marshal(v)
			if merr == nil {
				log.Warn().Err(cause).Str("key", key.String()).Msg("query: serving fallback data")
				return data, nil
			}
			err = merr
		}
		log.Warn().Err(err).Str("key", key.String()).Msg("query: fallback failed")
	}

	return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, key, cause)
}

// Subscribe registers fn for every refresh of key. Results arriving after
// the returned unsubscribe has been called are dropped.
func (c *Client) Subscribe(key Key, fn func(Result)) (unsubscribe func()) {
	s := &subscription{fn: fn}
	s.active.Store(true)

	c.mu.Lock()
	e := c.entryLocked(key)
	c.nextSub++
	id := c.nextSub
	e.subs[id] = s
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.active.Store(false)
			c.mu.Lock()
			defer c.mu.Unlock()
			if e, ok := c.entries[key.String()]; ok {
				delete(e.subs, id)
				e.lastAccess = c.opts.Now()
			}
		})
	}
}

func activeSubs(e *entry) []*subscription {
	out := make([]*subscription, 0, len(e.subs))
	for _, s := range e.subs {
		out = append(out, s)
	}
	return out
}

func deliver(s *subscription, res Result) {
	if s.active.Load() {
		s.fn(res)
	}
}

// Invalidate marks every entry under the given key prefixes stale and
// refetches the ones that have subscribers.
func (c *Client) Invalidate(ctx context.Context, prefixes ...Key) {
	var refetch []Key
	c.mu.Lock()
	for _, e := range c.entries {
		for _, p := range prefixes {
			if e.key.HasPrefix(p) {
				e.stale = true
				e.gen++
				// Later reads must not join a request issued before the write.
				c.group.Forget(e.key.String())
				if len(e.subs) > 0 {
					refetch = append(refetch, e.key)
				}
				break
			}
		}
	}
	c.mu.Unlock()

	for _, key := range refetch {
		if _, err := c.load(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key.String()).Msg("query: refetch after invalidation failed")
		}
	}
}

// Mutate runs fn once under the mutation timeout. It is never retried, so a
// timeout surfaces to the caller instead of risking a duplicate write. On
// success the given keys are invalidated.
func (c *Client) Mutate(ctx context.Context, fn func(ctx context.Context) error, invalidate ...Key) error {
	mctx, cancel := context.WithTimeout(ctx, c.opts.MutationTimeout)
	defer cancel()

	if err := fn(mctx); err != nil {
		if errors.Is(mctx.Err(), context.DeadlineExceeded) && !errors.Is(err, remote.ErrTimeout) {
			return fmt.Errorf("mutation: %w: %w", remote.ErrTimeout, err)
		}
		return fmt.Errorf("mutation: %w", err)
	}
	if len(invalidate) > 0 {
		c.Invalidate(ctx, invalidate...)
	}
	return nil
}

// Start registers the poll and garbage-collection jobs. Polling refetches
// every key with at least one subscriber, regardless of staleness.
func (c *Client) Start(ctx context.Context) error {
	if c.opts.Scheduler == nil {
		return errors.New("query: no scheduler configured")
	}
	c.mu.Lock()
	c.runCtx = ctx
	c.mu.Unlock()

	cancelPoll, err := c.opts.Scheduler.Every("query:poll", c.opts.PollInterval, c.Poll)
	if err != nil {
		return err
	}
	cancelGC, err := c.opts.Scheduler.Every("query:gc", c.opts.CacheTime, c.CollectGarbage)
	if err != nil {
		cancelPoll()
		return err
	}

	c.mu.Lock()
	c.cancels = append(c.cancels, cancelPoll, cancelGC)
	c.mu.Unlock()
	return nil
}

// Stop unregisters the scheduled jobs.
func (c *Client) Stop() {
	c.mu.Lock()
	cancels := c.cancels
	c.cancels = nil
	c.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

func (c *Client) Poll() {
	c.mu.Lock()
	ctx := c.runCtx
	var keys []Key
	for _, e := range c.entries {
		if len(e.subs) > 0 {
			keys = append(keys, e.key)
		}
	}
	c.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	for _, key := range keys {
		if _, err := c.load(ctx, key); err != nil {
			log.Debug().Err(err).Str("key", key.String()).Msg("query: poll failed")
		}
	}
}

// CollectGarbage drops entries without subscribers that have not been
// touched for CacheTime.
func (c *Client) CollectGarbage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.opts.Now()
	for id, e := range c.entries {
		if len(e.subs) == 0 && now.Sub(e.lastAccess) >= c.opts.CacheTime {
			delete(c.entries, id)
		}
	}
}

// Peek returns the cached payload for key without any network activity.
func (c *Client) Peek(key Key) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok || !e.hasData {
		return nil, false
	}
	return e.data, true
}

func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
