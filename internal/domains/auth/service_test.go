package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tovakustatus-backend/internal/infrastructure/memory"
	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/pkg/jwt"
)

func newService(t *testing.T) *Service {
	t.Helper()
	tokens := jwt.NewManager("test-secret", time.Hour)
	store := localstore.New(memory.NewStore(),
		localstore.WithCredentials("admin", "admin123"),
		localstore.WithTokenIssuer(func(username string) (string, error) {
			return tokens.GenerateAccessToken(username, jwt.RoleAdmin)
		}),
	)
	return NewService(store, tokens)
}

func TestLoginAuthorizeLogout(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Session(ctx)
	assert.ErrorIs(t, err, ErrNoSession, "failed login leaves no session")

	resp, err := svc.Login(ctx, LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.True(t, resp.Session.IsAuthenticated)

	claims, err := svc.Authorize(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, jwt.RoleAdmin, claims.Role)

	session, err := svc.Session(ctx)
	require.NoError(t, err)
	assert.Empty(t, session.Token)

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Authorize(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrSessionExpired, "logout revokes the token")
}

func TestAuthorize_RejectsForeignToken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	other, err := jwt.NewManager("other-secret", time.Hour).GenerateAccessToken("admin", jwt.RoleAdmin)
	require.NoError(t, err)
	_, err = svc.Authorize(ctx, other)
	assert.ErrorIs(t, err, ErrSessionExpired)
}
