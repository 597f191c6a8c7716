// Package visitor stores anonymous visitor records keyed by the client's
// uuid.
package visitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/internal/model"
)

var (
	ErrNotFound   = errors.New("visitor not found")
	ErrValidation = errors.New("validation failed")
)

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type RegisterRequest struct {
	UUID string `json:"uuid"`
}

// FlagsRequest is the admin moderation payload. Nil fields are untouched.
type FlagsRequest struct {
	IsBanned   *bool `json:"isBanned"`
	IsVerified *bool `json:"isVerified"`
}

type Service struct {
	repo *localstore.Repository[model.Visitor, *model.Visitor]
	now  func() time.Time
}

func NewService(repo *localstore.Repository[model.Visitor, *model.Visitor]) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Register creates the visitor on first contact and refreshes LastSeenAt
// afterwards. created reports which of the two happened.
func (s *Service) Register(ctx context.Context, uuid string) (v model.Visitor, created bool, err error) {
	candidate := model.Visitor{UUID: uuid}
	if err := candidate.Validate(); err != nil {
		return model.Visitor{}, false, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	now := s.now().UTC()
	candidate.CreatedAt = now
	candidate.LastSeenAt = now
	v, created, err = s.repo.AddIfAbsent(ctx, candidate, func(existing model.Visitor) bool {
		return existing.UUID == uuid
	})
	if err != nil {
		return model.Visitor{}, false, fmt.Errorf("add visitor: %w", err)
	}
	if created {
		log.Info().Str("visitor_uuid", uuid).Msg("visitor registered")
		return v, true, nil
	}

	v, err = s.repo.Modify(ctx, v.ID, func(item *model.Visitor) error {
		item.LastSeenAt = now
		return nil
	})
	if err != nil {
		return model.Visitor{}, false, fmt.Errorf("touch visitor: %w", err)
	}
	return v, false, nil
}

func (s *Service) Get(ctx context.Context, uuid string) (model.Visitor, error) {
	return s.findByUUID(ctx, uuid)
}

func (s *Service) List(ctx context.Context) ([]model.Visitor, error) {
	return s.repo.GetAll(ctx)
}

// SetFlags bans/unbans or verifies a visitor.
func (s *Service) SetFlags(ctx context.Context, uuid string, req FlagsRequest) (model.Visitor, error) {
	existing, err := s.findByUUID(ctx, uuid)
	if err != nil {
		return model.Visitor{}, err
	}
	return s.repo.Modify(ctx, existing.ID, func(item *model.Visitor) error {
		if req.IsBanned != nil {
			item.IsBanned = *req.IsBanned
		}
		if req.IsVerified != nil {
			item.IsVerified = *req.IsVerified
		}
		return nil
	})
}

func (s *Service) findByUUID(ctx context.Context, uuid string) (model.Visitor, error) {
	v, err := s.repo.Find(ctx, func(v model.Visitor) bool { return v.UUID == uuid })
	if errors.Is(err, localstore.ErrNotFound) {
		return model.Visitor{}, ErrNotFound
	}
	return v, err
}
