package jwtauth_test

import (
	"context"
	"testing"
	"time"

	"shipping/internal/adapters/out/jwtauth"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newAuthorizer(t *testing.T, issuer string, now time.Time) *jwtauth.Authorizer {
	t.Helper()
	a, err := jwtauth.NewAuthorizer(jwtauth.Config{
		Secret: []byte("test-secret"),
		Issuer: issuer,
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)
	return a
}

func TestNewAuthorizer(t *testing.T) {
	_, err := jwtauth.NewAuthorizer(jwtauth.Config{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestAuthorizer_Authenticate(t *testing.T) {
	a := newAuthorizer(t, "platform", fixedNow)

	t.Run("valid token", func(t *testing.T) {
		token, err := a.Issue("ops@example.com", []string{ports.RoleAdmin}, time.Hour)
		require.NoError(t, err)

		p, err := a.Authenticate(context.Background(), token)

		require.NoError(t, err)
		assert.Equal(t, "ops@example.com", p.Subject)
		assert.True(t, p.HasRole(ports.RoleAdmin))
	})

	t.Run("expired", func(t *testing.T) {
		token, err := newAuthorizer(t, "platform", fixedNow.Add(-2*time.Hour)).Issue("u", nil, time.Hour)
		require.NoError(t, err)

		_, err = a.Authenticate(context.Background(), token)

		require.ErrorIs(t, err, errs.ErrUnauthorized)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := jwtauth.NewAuthorizer(jwtauth.Config{
			Secret: []byte("other"), Issuer: "platform", Now: func() time.Time { return fixedNow },
		})
		require.NoError(t, err)
		token, err := other.Issue("u", nil, time.Hour)
		require.NoError(t, err)

		_, err = a.Authenticate(context.Background(), token)

		require.ErrorIs(t, err, errs.ErrUnauthorized)
		assert.Contains(t, err.Error(), "signature")
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := newAuthorizer(t, "someone-else", fixedNow).Issue("u", nil, time.Hour)
		require.NoError(t, err)

		_, err = a.Authenticate(context.Background(), token)

		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("other algorithms are rejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "u", "exp": fixedNow.Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = a.Authenticate(context.Background(), token)

		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("missing expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u"}).
			SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = a.Authenticate(context.Background(), token)

		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := a.Issue("", []string{ports.RoleAdmin}, time.Hour)
		require.NoError(t, err)

		_, err = a.Authenticate(context.Background(), token)

		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := a.Authenticate(context.Background(), "  ")
		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})
}
