// Package localstore is the persisted content store: typed collections
// (talents, projects, events, blog posts, newsletter subscribers) plus the
// single admin session, the visitor identifier and site settings, all kept as
// JSON documents in a kv.Store backend.
//
// Every collection write is a read-modify-write of the whole document.
// Writers inside one process are serialised; separate processes sharing a
// backend race with last-write-wins.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"tovakustatus-backend/internal/model"
	"tovakustatus-backend/pkg/kv"
)

// Persisted keys.
const (
	KeyTalents     = "talents"
	KeyProjects    = "projects"
	KeyEvents      = "events"
	KeyBlogPosts   = "blogPosts"
	KeySubscribers = "newsletterSubscribers"
	KeyVisitors    = "visitors"
	KeyAuthSession = "authSession"
	KeyVisitorID   = "visitorId"
	KeySettings    = "siteSettings"

	snapshotPrefix = "snapshot:"
)

// CollectionKeys lists the array-valued keys seeded by Initialize.
var CollectionKeys = []string{
	KeyTalents,
	KeyProjects,
	KeyEvents,
	KeyBlogPosts,
	KeySubscribers,
	KeyVisitors,
}

// TokenIssuer mints the opaque token attached to a new session.
type TokenIssuer func(username string) (string, error)

type Store struct {
	backend kv.Store
	mu      sync.Mutex

	newID func() string
	now   func() time.Time
	seed  map[string]any

	username     string
	passwordHash []byte
	issueToken   TokenIssuer
}

type Option func(*Store)

// WithIDGenerator replaces the time-sortable xid generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// WithSeed replaces the built-in seed documents.
func WithSeed(seed map[string]any) Option {
	return func(s *Store) { s.seed = seed }
}

// WithCredentials sets the fixed admin credential pair checked by Login.
func WithCredentials(username, password string) Option {
	return func(s *Store) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Msg("localstore: cannot hash admin password")
			return
		}
		s.username = username
		s.passwordHash = hash
	}
}

// WithTokenIssuer attaches a token to every session created by Login.
func WithTokenIssuer(fn TokenIssuer) Option {
	return func(s *Store) { s.issueToken = fn }
}

func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		newID:   func() string { return xid.New().String() },
		now:     time.Now,
		seed:    DefaultSeed(),
	}
	WithCredentials(DefaultAdminUsername, DefaultAdminPassword)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend exposes the underlying kv.Store (health checks, cleanup).
func (s *Store) Backend() kv.Store { return s.backend }

// read decodes the value at key into dest. A missing key and a value that
// fails to parse both report found=false: corruption is treated as absence.
func (s *Store) read(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("localstore: corrupt value treated as absent")
		return false, nil
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Initialize writes the seed for every managed key that has no parseable
// value yet. Existing data is never overwritten, so calling it repeatedly is
// harmless.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[string]string)
	for _, key := range append(append([]string{}, CollectionKeys...), KeySettings) {
		seed, ok := s.seed[key]
		if !ok {
			continue
		}
		var probe json.RawMessage
		found, err := s.read(ctx, key, &probe)
		if err != nil {
			return err
		}
		if found && validShape(key, probe) {
			continue
		}
		raw, err := json.Marshal(seed)
		if err != nil {
			return fmt.Errorf("encode seed %s: %w", key, err)
		}
		pending[key] = string(raw)
	}
	if len(pending) == 0 {
		return nil
	}

	if batcher, ok := s.backend.(kv.Batcher); ok {
		if err := batcher.SetMany(ctx, pending); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	} else {
		for key, raw := range pending {
			if err := s.backend.Set(ctx, key, raw); err != nil {
				return fmt.Errorf("write %s: %w", key, err)
			}
		}
	}
	for key := range pending {
		log.Info().Str("key", key).Msg("localstore: seeded")
	}
	return nil
}

// validShape checks that a collection holds an array and settings an object.
func validShape(key string, raw json.RawMessage) bool {
	if key == KeySettings {
		var obj map[string]json.RawMessage
		return json.Unmarshal(raw, &obj) == nil && obj != nil
	}
	var arr []json.RawMessage
	return json.Unmarshal(raw, &arr) == nil && arr != nil
}

// Reset deletes every managed key. Snapshots are left alone.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := append(append([]string{}, CollectionKeys...), KeyAuthSession, KeyVisitorID, KeySettings)
	if err := s.backend.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// VisitorID returns the persisted anonymous visitor identifier.
func (s *Store) VisitorID(ctx context.Context) (string, bool, error) {
	var id string
	found, err := s.read(ctx, KeyVisitorID, &id)
	if err != nil || !found || id == "" {
		return "", false, err
	}
	return id, true, nil
}

func (s *Store) SaveVisitorID(ctx context.Context, id string) error {
	return s.write(ctx, KeyVisitorID, id)
}

// Settings returns the persisted site settings or the defaults.
func (s *Store) Settings(ctx context.Context) (model.SiteSettings, error) {
	var settings model.SiteSettings
	found, err := s.read(ctx, KeySettings, &settings)
	if err != nil {
		return model.SiteSettings{}, err
	}
	if !found {
		return DefaultSettings(), nil
	}
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings model.SiteSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, KeySettings, settings)
}

// LoadSnapshot returns the last raw payload saved for a cache key.
func (s *Store) LoadSnapshot(ctx context.Context, key string) (json.RawMessage, bool, error) {
	raw, ok, err := s.backend.Get(ctx, snapshotPrefix+key)
	if err != nil || !ok {
		return nil, false, err
	}
	if !json.Valid([]byte(raw)) {
		return nil, false, nil
	}
	return json.RawMessage(raw), true, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, key string, data json.RawMessage) error {
	if err := s.backend.Set(ctx, snapshotPrefix+key, string(data)); err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}

// Raw returns the stored JSON document for key, used by exports.
func (s *Store) Raw(ctx context.Context, key string) (json.RawMessage, error) {
	var raw json.RawMessage
	found, err := s.read(ctx, key, &raw)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return raw, nil
}
