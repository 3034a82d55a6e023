package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"vltweb/internal/config"
	"vltweb/internal/lib/jwt"
)

func hash(t *testing.T, secret string) string {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)

	return string(h)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	creds := []config.Credential{
		{Role: "her", SecretHash: hash(t, "rose")},
		{Role: "him", SecretHash: hash(t, "tulip")},
	}

	svc := New(slog.Default(), creds, "signing-secret", time.Hour)

	t.Run("matching secret yields a token with the right role", func(t *testing.T) {
		token, err := svc.Login(ctx, "tulip")
		require.NoError(t, err)

		role, err := jwt.ParseRole(token, "signing-secret")
		require.NoError(t, err)
		assert.Equal(t, "him", role)
	})

	t.Run("first matching credential wins", func(t *testing.T) {
		token, err := svc.Login(ctx, "rose")
		require.NoError(t, err)

		role, err := jwt.ParseRole(token, "signing-secret")
		require.NoError(t, err)
		assert.Equal(t, "her", role)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "daisy")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("no credentials configured", func(t *testing.T) {
		empty := New(slog.Default(), nil, "signing-secret", time.Hour)

		_, err := empty.Login(ctx, "rose")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
