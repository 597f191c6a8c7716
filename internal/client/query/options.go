package query

import (
	"context"
	"time"

	"tovakustatus-backend/pkg/scheduler"
)

const (
	DefaultStaleTime       = 10 * time.Second
	DefaultPollInterval    = 5 * time.Second
	DefaultCacheTime       = 5 * time.Minute
	DefaultRetries         = 3
	DefaultMutationTimeout = 10 * time.Second

	maxRetryDelay = 30 * time.Second
)

type Options struct {
	StaleTime    time.Duration
	PollInterval time.Duration
	CacheTime    time.Duration
	// Retries is the number of extra attempts for a failed read. Zero means
	// DefaultRetries, a negative value disables retrying.
	Retries         int
	MutationTimeout time.Duration

	// Snapshots, when set, receives every successful read and is consulted
	// when the network fails.
	Snapshots SnapshotStore
	Scheduler scheduler.Scheduler

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o *Options) withDefaults() {
	if o.StaleTime <= 0 {
		o.StaleTime = DefaultStaleTime
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.CacheTime <= 0 {
		o.CacheTime = DefaultCacheTime
	}
	switch {
	case o.Retries == 0:
		o.Retries = DefaultRetries
	case o.Retries < 0:
		o.Retries = 0
	}
	if o.MutationTimeout <= 0 {
		o.MutationTimeout = DefaultMutationTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Sleep == nil {
		o.Sleep = sleepContext
	}
}

// RetryDelay is min(1s * 2^attempt, 30s), attempt counted from 0.
func RetryDelay(attempt int) time.Duration {
	if attempt >= 5 {
		return maxRetryDelay
	}
	d := time.Second << attempt
	if d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fetchConfig struct {
	nullOn401 bool
	fallback  func(ctx context.Context) (any, error)
	staleTime time.Duration
}

type FetchOption func(*fetchConfig)

// WithNullOn401 resolves a 401 to nil data instead of an error, so "not
// logged in" renders as empty state.
func WithNullOn401() FetchOption {
	return func(c *fetchConfig) { c.nullOn401 = true }
}

// WithFallback supplies data (typically seed content) used when the network,
// the cache and the snapshot store all come up empty.
func WithFallback(fn func(ctx context.Context) (any, error)) FetchOption {
	return func(c *fetchConfig) { c.fallback = fn }
}

func WithStaleTime(d time.Duration) FetchOption {
	return func(c *fetchConfig) { c.staleTime = d }
}
