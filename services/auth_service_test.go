package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyAdminPassword(t *testing.T) {
	hash, err := HashPassword("paddock-42")
	require.NoError(t, err)

	svc := NewAuthService(hash)
	ctx := context.Background()

	t.Run("correct password", func(t *testing.T) {
		require.NoError(t, svc.VerifyAdminPassword(ctx, "paddock-42"))
	})

	t.Run("wrong password", func(t *testing.T) {
		err := svc.VerifyAdminPassword(ctx, "pit-lane")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty password", func(t *testing.T) {
		err := svc.VerifyAdminPassword(ctx, "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("malformed hash in configuration", func(t *testing.T) {
		broken := NewAuthService("not-a-bcrypt-hash")
		err := broken.VerifyAdminPassword(ctx, "paddock-42")
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	})
}
