package localstore

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"tovakustatus-backend/internal/model"
)

// Login checks the fixed admin credential pair. On success the session is
// persisted (with a token when an issuer is configured). On failure nothing
// is written.
func (s *Store) Login(ctx context.Context, username, password string) (*model.AuthSession, error) {
	if len(s.passwordHash) == 0 || username != s.username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := &model.AuthSession{
		Username:        username,
		IsAuthenticated: true,
		LoggedInAt:      s.now().UTC(),
	}
	if s.issueToken != nil {
		token, err := s.issueToken(username)
		if err != nil {
			return nil, fmt.Errorf("issue session token: %w", err)
		}
		session.Token = token
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(ctx, KeyAuthSession, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Logout clears the session unconditionally.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(ctx, KeyAuthSession); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Session returns the current session or ErrNotFound.
func (s *Store) Session(ctx context.Context) (*model.AuthSession, error) {
	var session model.AuthSession
	found, err := s.read(ctx, KeyAuthSession, &session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &session, nil
}

// IsAuthenticated is false when the session is absent, malformed or the
// backend cannot be read.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	session, err := s.Session(ctx)
	if err != nil {
		return false
	}
	return session.IsAuthenticated
}
