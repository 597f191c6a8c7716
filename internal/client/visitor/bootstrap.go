// Package visitor gives every anonymous client a stable identity for the
// view counters. The identifier is generated locally, registered remotely
// and persisted only after the server has accepted it.
package visitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tovakustatus-backend/internal/model"
)

const (
	DefaultAttempts        = 3
	DefaultRefreshInterval = 5 * time.Minute
)

type State string

const (
	StateNoIdentifier State = "no_identifier"
	StateIdentified   State = "identified"
	StateDegraded     State = "degraded"
)

// IDStore persists the visitor identifier. localstore.Store satisfies it.
type IDStore interface {
	VisitorID(ctx context.Context) (string, bool, error)
	SaveVisitorID(ctx context.Context, id string) error
}

// Registrar talks to the remote visitor endpoints. remote.Client satisfies it.
type Registrar interface {
	RegisterVisitor(ctx context.Context, uuid string) (*model.Visitor, error)
	GetVisitor(ctx context.Context, uuid string) (*model.Visitor, error)
}

// Identity is the shared view of the bootstrap outcome.
type Identity struct {
	State   State
	ID      string
	Profile *model.Visitor
}

type Bootstrapper struct {
	store     IDStore
	registrar Registrar

	NewID           func() string
	Sleep           func(ctx context.Context, d time.Duration) error
	Backoff         func(attempt int) time.Duration
	Attempts        int
	RefreshInterval time.Duration

	mu       sync.RWMutex
	identity Identity
}

func NewBootstrapper(store IDStore, registrar Registrar) *Bootstrapper {
	return &Bootstrapper{
		store:           store,
		registrar:       registrar,
		NewID:           uuid.NewString,
		Sleep:           sleepContext,
		Backoff:         LinearBackoff,
		Attempts:        DefaultAttempts,
		RefreshInterval: DefaultRefreshInterval,
		identity:        Identity{State: StateNoIdentifier},
	}
}

// LinearBackoff waits attempt seconds after the attempt-th failure.
func LinearBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * time.Second
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

// Identity returns a copy of the current identity.
func (b *Bootstrapper) Identity() Identity {
	b.mu.RLock()
	defer b.mu.RUnlock()
	id := b.identity
	if id.Profile != nil {
		p := *id.Profile
		id.Profile = &p
	}
	return id
}

func (b *Bootstrapper) setIdentity(id Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.identity = id
}

// Bootstrap restores or creates the identifier and registers it. Failure to
// register is not an error: the identity is left degraded and nothing is
// persisted. Only a failing IDStore read or a canceled ctx is returned.
func (b *Bootstrapper) Bootstrap(ctx context.Context) (Identity, error) {
	id, persisted, err := b.store.VisitorID(ctx)
	if err != nil {
		return b.Identity(), fmt.Errorf("read visitor id: %w", err)
	}
	if !persisted || id == "" {
		id = b.NewID()
		persisted = false
	}

	attempts := b.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	var profile *model.Visitor
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		profile, lastErr = b.registrar.RegisterVisitor(ctx, id)
		if lastErr == nil && profile != nil && profile.UUID == id {
			break
		}
		if lastErr == nil {
			lastErr = errors.New("server did not confirm the visitor record")
		}
		log.Warn().Err(lastErr).Int("attempt", attempt).Msg("visitor: registration failed")
		if attempt == attempts {
			break
		}
		if err := b.Sleep(ctx, b.Backoff(attempt)); err != nil {
			return b.Identity(), err
		}
	}

	if lastErr != nil {
		log.Warn().Err(lastErr).Msg("visitor: giving up, continuing without a visitor profile")
		identity := Identity{State: StateDegraded}
		b.setIdentity(identity)
		return identity, nil
	}

	if !persisted {
		if err := b.store.SaveVisitorID(ctx, id); err != nil {
			return b.Identity(), fmt.Errorf("persist visitor id: %w", err)
		}
	}

	identity := Identity{State: StateIdentified, ID: id, Profile: profile}
	b.setIdentity(identity)
	log.Info().Str("visitor_id", id).Bool("new", !persisted).Msg("visitor: identified")
	return identity, nil
}

// Refresh re-reads the profile. On failure the current profile is kept.
func (b *Bootstrapper) Refresh(ctx context.Context) error {
	current := b.Identity()
	if current.State != StateIdentified || current.ID == "" {
		return nil
	}
	profile, err := b.registrar.GetVisitor(ctx, current.ID)
	if err != nil {
		log.Warn().Err(err).Str("visitor_id", current.ID).Msg("visitor: refresh failed")
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.identity.ID == current.ID {
		b.identity.Profile = profile
	}
	return nil
}

// Run bootstraps once and then refreshes the profile every RefreshInterval
// until ctx is done. A degraded bootstrap is not retried.
func (b *Bootstrapper) Run(ctx context.Context) error {
	identity, err := b.Bootstrap(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	if identity.State != StateIdentified {
		<-ctx.Done()
		return nil
	}

	interval := b.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = b.Refresh(ctx)
		}
	}
}
