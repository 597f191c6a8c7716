package kv

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("kv: store is closed")

// Store is the persistence contract behind the local store.
// Values are opaque strings (JSON documents in practice), one per key.
// Implementations: in-memory, JSON file, Redis, Postgres.
type Store interface {
	// Get returns (value, true, nil) on hit and ("", false, nil) on miss.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value string) error

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Batcher is implemented by backends that can write several keys
// atomically. Callers fall back to one Set per key otherwise.
type Batcher interface {
	SetMany(ctx context.Context, entries map[string]string) error
}
