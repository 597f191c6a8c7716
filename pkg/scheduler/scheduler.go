// Package scheduler runs interval jobs. Consumers depend on the Scheduler
// interface only, so polling can later be replaced by push notifications
// without touching them.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

type Scheduler interface {
	// Every runs job on a fixed interval until the returned cancel is called.
	Every(name string, interval time.Duration, job func()) (cancel func(), err error)
}

// Cron is a Scheduler backed by robfig/cron. Overlapping runs of the same
// job are skipped and panics are recovered.
type Cron struct {
	c *cron.Cron
}

func NewCron() *Cron {
	l := cronLogger{}
	return &Cron{
		c: cron.New(cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l))),
	}
}

func (s *Cron) Every(name string, interval time.Duration, job func()) (func(), error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler: %s: interval must be positive", name)
	}
	id, err := s.c.AddFunc("@every "+interval.String(), job)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %s: %w", name, err)
	}
	log.Debug().Str("job", name).Dur("interval", interval).Msg("scheduler: job registered")
	return func() { s.c.Remove(id) }, nil
}

func (s *Cron) Start() { s.c.Start() }

// Stop prevents new runs and waits for running jobs, bounded by ctx.
func (s *Cron) Stop(ctx context.Context) {
	done := s.c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

// Manual is a Scheduler driven by hand. Tests call Fire to simulate ticks.
type Manual struct {
	mu   sync.Mutex
	next int
	jobs map[int]manualJob
}

type manualJob struct {
	name     string
	interval time.Duration
	fn       func()
}

func NewManual() *Manual {
	return &Manual{jobs: make(map[int]manualJob)}
}

func (m *Manual) Every(name string, interval time.Duration, job func()) (func(), error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler: %s: interval must be positive", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.jobs[id] = manualJob{name: name, interval: interval, fn: job}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.jobs, id)
	}, nil
}

// Fire runs every registered job with the given name synchronously and
// reports how many ran.
func (m *Manual) Fire(name string) int {
	m.mu.Lock()
	var fns []func()
	for _, j := range m.jobs {
		if j.name == name {
			fns = append(fns, j.fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Interval reports the interval of the first job with name.
func (m *Manual) Interval(name string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.name == name {
			return j.interval, true
		}
	}
	return 0, false
}
