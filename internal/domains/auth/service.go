// Package auth manages the single administrator session.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/internal/model"
	"tovakustatus-backend/pkg/jwt"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string            `json:"token"`
	Session model.AuthSession `json:"session"`
}

// TokenValidator is satisfied by *jwt.Manager.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type Service struct {
	store  *localstore.Store
	tokens TokenValidator
}

// NewService expects store to have been built with a token issuer, so
// every persisted session carries the token handed to the client.
func NewService(store *localstore.Store, tokens TokenValidator) *Service {
	return &Service{store: store, tokens: tokens}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	session, err := s.store.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, localstore.ErrInvalidCredentials) {
			log.Warn().Str("username", req.Username).Msg("admin login failed")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	log.Info().Str("username", session.Username).Msg("admin logged in")
	return &LoginResponse{Token: session.Token, Session: *session}, nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Logout(ctx); err != nil {
		return err
	}
	log.Info().Msg("admin logged out")
	return nil
}

// Session returns the active session with its token stripped.
func (s *Service) Session(ctx context.Context) (*model.AuthSession, error) {
	session, err := s.store.Session(ctx)
	if err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	if !session.IsAuthenticated {
		return nil, ErrNoSession
	}
	session.Token = ""
	return session, nil
}

// Authorize accepts a token only while it belongs to the persisted session,
// so logging out revokes it before it expires.
func (s *Service) Authorize(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	session, err := s.store.Session(ctx)
	if err != nil || !session.IsAuthenticated || session.Token != token {
		return nil, ErrSessionExpired
	}
	return claims, nil
}
