package localstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Record is satisfied by pointers to stored entity types.
type Record[T any] interface {
	*T
	GetID() string
	SetID(id string)
}

// Repository gives typed CRUD over one collection key.
//
//	talents := localstore.NewRepository[model.Talent](store, localstore.KeyTalents)
type Repository[T any, PT Record[T]] struct {
	store *Store
	key   string
}

func NewRepository[T any, PT Record[T]](s *Store, key string) *Repository[T, PT] {
	return &Repository[T, PT]{store: s, key: key}
}

func (r *Repository[T, PT]) Key() string { return r.key }

func (r *Repository[T, PT]) load(ctx context.Context) ([]T, error) {
	var items []T
	found, err := r.store.read(ctx, r.key, &items)
	if err != nil {
		return nil, err
	}
	if !found || items == nil {
		return []T{}, nil
	}
	return items, nil
}

// GetAll returns the collection in stored (insertion) order.
func (r *Repository[T, PT]) GetAll(ctx context.Context) ([]T, error) {
	return r.load(ctx)
}

func (r *Repository[T, PT]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := r.load(ctx)
	if err != nil {
		return zero, err
	}
	for i := range items {
		if PT(&items[i]).GetID() == id {
			return items[i], nil
		}
	}
	return zero, ErrNotFound
}

// Find returns the first entry matching pred.
func (r *Repository[T, PT]) Find(ctx context.Context, pred func(T) bool) (T, error) {
	var zero T
	items, err := r.load(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if pred(item) {
			return item, nil
		}
	}
	return zero, ErrNotFound
}

// Add assigns a fresh id (any id on entry is ignored), appends and persists.
func (r *Repository[T, PT]) Add(ctx context.Context, entry T) (T, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	PT(&entry).SetID(r.store.newID())
	items = append(items, entry)
	if err := r.store.write(ctx, r.key, items); err != nil {
		var zero T
		return zero, err
	}
	return entry, nil
}

// AddIfAbsent appends entry unless an existing entry matches; the check and
// the write happen under one lock. When a match exists it is returned with
// added=false and nothing is written.
func (r *Repository[T, PT]) AddIfAbsent(ctx context.Context, entry T, match func(T) bool) (result T, added bool, err error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return result, false, err
	}
	for _, item := range items {
		if match(item) {
			return item, false, nil
		}
	}
	PT(&entry).SetID(r.store.newID())
	items = append(items, entry)
	if err := r.store.write(ctx, r.key, items); err != nil {
		return result, false, err
	}
	return entry, true, nil
}

// Update merges partial (keyed by JSON field name) into the entry with id.
// A missing id returns ErrNotFound and nothing is written.
func (r *Repository[T, PT]) Update(ctx context.Context, id string, partial map[string]any) (T, error) {
	return r.Modify(ctx, id, func(item PT) error {
		merged, err := Merge(*item, partial)
		if err != nil {
			return err
		}
		*item = merged
		return nil
	})
}

// Modify runs fn on the entry with id and persists the result. If fn fails
// nothing is written. The id cannot be changed by fn.
func (r *Repository[T, PT]) Modify(ctx context.Context, id string, fn func(item PT) error) (T, error) {
	var zero T

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return zero, err
	}
	for i := range items {
		item := PT(&items[i])
		if item.GetID() != id {
			continue
		}
		updated := items[i]
		if err := fn(PT(&updated)); err != nil {
			return zero, err
		}
		PT(&updated).SetID(id)
		items[i] = updated
		if err := r.store.write(ctx, r.key, items); err != nil {
			return zero, err
		}
		return updated, nil
	}
	return zero, ErrNotFound
}

// Delete removes the entry with id. Deleting an unknown id is a no-op.
func (r *Repository[T, PT]) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	for i := range items {
		if PT(&items[i]).GetID() != id {
			kept = append(kept, items[i])
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return r.store.write(ctx, r.key, kept)
}

func (r *Repository[T, PT]) Count(ctx context.Context) (int, error) {
	items, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Merge overlays partial onto item through their JSON representation, so
// partial uses the same field names as the wire format. "id" is ignored.
func Merge[T any](item T, partial map[string]any) (T, error) {
	var zero T

	raw, err := json.Marshal(item)
	if err != nil {
		return zero, fmt.Errorf("encode record: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return zero, fmt.Errorf("decode record: %w", err)
	}
	for k, v := range partial {
		if k == "id" {
			continue
		}
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidPartial, err)
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidPartial, err)
	}
	return out, nil
}
