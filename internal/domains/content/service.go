// Package content serves the four public collections (talents, projects,
// events, blog posts) from the local store.
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"tovakustatus-backend/internal/localstore"
)

// Entity is a stored record that can validate itself.
type Entity[T any] interface {
	localstore.Record[T]
	Validate() error
}

type viewCounter interface {
	AddView()
}

// Service is the CRUD business layer of one collection. Validation runs
// before anything is written, so invalid input never reaches the store.
type Service[T any, PT Entity[T]] struct {
	name string
	repo *localstore.Repository[T, PT]
}

func NewService[T any, PT Entity[T]](name string, repo *localstore.Repository[T, PT]) *Service[T, PT] {
	return &Service[T, PT]{name: name, repo: repo}
}

func (s *Service[T, PT]) Name() string { return s.name }

func (s *Service[T, PT]) List(ctx context.Context) ([]T, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.name, err)
	}
	return items, nil
}

func (s *Service[T, PT]) Get(ctx context.Context, id string) (T, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return item, s.mapError(err)
	}
	return item, nil
}

func (s *Service[T, PT]) Create(ctx context.Context, item T) (T, error) {
	if err := PT(&item).Validate(); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	created, err := s.repo.Add(ctx, item)
	if err != nil {
		return created, fmt.Errorf("create %s: %w", s.name, err)
	}

	log.Info().Str("collection", s.name).Str("id", PT(&created).GetID()).Msg("content created")
	return created, nil
}

// Update merges partial into the record and validates the merged result.
// Missing ids are not inserted.
func (s *Service[T, PT]) Update(ctx context.Context, id string, partial map[string]any) (T, error) {
	updated, err := s.repo.Modify(ctx, id, func(item PT) error {
		merged, err := localstore.Merge(*item, partial)
		if err != nil {
			return err
		}
		if err := PT(&merged).Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		*item = merged
		return nil
	})
	if err != nil {
		return updated, s.mapError(err)
	}
	return updated, nil
}

// Delete is idempotent: unknown ids succeed without writing.
func (s *Service[T, PT]) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", s.name, err)
	}
	log.Info().Str("collection", s.name).Str("id", id).Msg("content deleted")
	return nil
}

// RecordView increments the view counter of a talent or blog post.
func (s *Service[T, PT]) RecordView(ctx context.Context, id string) (T, error) {
	updated, err := s.repo.Modify(ctx, id, func(item PT) error {
		counter, ok := any(item).(viewCounter)
		if !ok {
			return ErrNotViewable
		}
		counter.AddView()
		return nil
	})
	if err != nil {
		return updated, s.mapError(err)
	}
	return updated, nil
}

func (s *Service[T, PT]) mapError(err error) error {
	switch {
	case errors.Is(err, localstore.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, localstore.ErrInvalidPartial):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotViewable):
		return err
	default:
		return fmt.Errorf("%s: %w", s.name, err)
	}
}
