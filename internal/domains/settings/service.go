// Package settings reads and writes the single site-settings record.
package settings

import (
	"context"
	"errors"
	"fmt"

	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/internal/model"
)

var ErrValidation = errors.New("validation failed")

type Service struct {
	store *localstore.Store
}

func NewService(store *localstore.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context) (model.SiteSettings, error) {
	return s.store.Settings(ctx)
}

// Replace validates and stores the whole record.
func (s *Service) Replace(ctx context.Context, next model.SiteSettings) (model.SiteSettings, error) {
	if err := next.Validate(); err != nil {
		return model.SiteSettings{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.SaveSettings(ctx, next); err != nil {
		return model.SiteSettings{}, err
	}
	return next, nil
}

// Patch merges partial (JSON field names) into the current record.
func (s *Service) Patch(ctx context.Context, partial map[string]any) (model.SiteSettings, error) {
	current, err := s.store.Settings(ctx)
	if err != nil {
		return model.SiteSettings{}, err
	}
	merged, err := localstore.Merge(current, partial)
	if err != nil {
		return model.SiteSettings{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return s.Replace(ctx, merged)
}
