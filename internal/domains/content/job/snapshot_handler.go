package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/internal/shared"
)

type rawReader interface {
	Raw(ctx context.Context, key string) (json.RawMessage, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
	RemoveObjects(ctx context.Context, keys []string) error
}

// Snapshot is the document written for each run.
type Snapshot struct {
	TakenAt     time.Time                  `json:"takenAt"`
	Collections map[string]json.RawMessage `json:"collections"`
	Settings    json.RawMessage            `json:"settings,omitempty"`
}

// SnapshotHandler exports every collection to object storage and prunes old
// exports beyond the retention count.
type SnapshotHandler struct {
	store   rawReader
	storage objectStore
	now     func() time.Time
}

func NewSnapshotHandler(store rawReader, storage objectStore) *SnapshotHandler {
	return &SnapshotHandler{store: store, storage: storage, now: time.Now}
}

func (h *SnapshotHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.SnapshotContentPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal SnapshotContent payload")
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	snap, err := h.collect(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	key := shared.SnapshotPrefix + snap.TakenAt.UTC().Format("20060102T150405Z") + ".json"
	if _, err := h.storage.Upload(ctx, key, body, "application/json"); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload content snapshot")
		return fmt.Errorf("upload snapshot: %w", err)
	}

	log.Info().
		Str("key", key).
		Int("collections", len(snap.Collections)).
		Msg("Content snapshot stored")

	if payload.Keep > 0 {
		if err := h.prune(ctx, payload.Keep); err != nil {
			// The snapshot itself succeeded; pruning is retried next run.
			log.Warn().Err(err).Msg("Failed to prune old snapshots")
		}
	}
	return nil
}

func (h *SnapshotHandler) collect(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		TakenAt:     h.now(),
		Collections: make(map[string]json.RawMessage, len(localstore.CollectionKeys)),
	}
	for _, key := range localstore.CollectionKeys {
		raw, err := h.store.Raw(ctx, key)
		if errors.Is(err, localstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		snap.Collections[key] = raw
	}

	settings, err := h.store.Raw(ctx, localstore.KeySettings)
	switch {
	case err == nil:
		snap.Settings = settings
	case !errors.Is(err, localstore.ErrNotFound):
		return nil, fmt.Errorf("read %s: %w", localstore.KeySettings, err)
	}
	return snap, nil
}

// prune keeps the newest keep snapshots. Keys sort chronologically.
func (h *SnapshotHandler) prune(ctx context.Context, keep int) error {
	keys, err := h.storage.List(ctx, shared.SnapshotPrefix)
	if err != nil {
		return err
	}
	if len(keys) <= keep {
		return nil
	}
	stale := keys[:len(keys)-keep]
	if err := h.storage.RemoveObjects(ctx, stale); err != nil {
		return err
	}
	log.Info().Int("removed", len(stale)).Msg("Old content snapshots pruned")
	return nil
}
