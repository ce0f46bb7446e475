package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/egannguyen/sales-orders/internal/auth"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seller = entity.User{ID: "u-1", Email: "ana@sales.test"}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("secret"), 0)

	token, err := issuer.Issue(seller)
	require.NoError(t, err)

	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{UserID: "u-1", Email: "ana@sales.test"}, id)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := issuedAt
	issuer := auth.NewTokenIssuer([]byte("secret"), auth.DefaultTokenTTL, auth.WithClock(func() time.Time { return now }))

	token, err := issuer.Issue(seller)
	require.NoError(t, err)

	now = issuedAt.Add(23 * time.Hour)
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	now = issuedAt.Add(25 * time.Hour)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
	assert.ErrorIs(t, err, entity.ErrAuthenticationFailed)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("secret"), time.Hour)
	other := auth.NewTokenIssuer([]byte("other"), time.Hour)

	foreign, err := other.Issue(seller)
	require.NoError(t, err)
	_, err = issuer.Verify(foreign)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	_, err = issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, auth.ErrTokenMalformed)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{
		ID:               "u-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(none)
	assert.ErrorIs(t, err, entity.ErrAuthenticationFailed)
}

func TestPasswords(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, auth.CheckPassword(hash, "s3cret"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong"), entity.ErrAuthenticationFailed)
}

func TestIdentityContext(t *testing.T) {
	_, ok := auth.IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: "u-1"})
	id, ok := auth.IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "u-1", id.UserID)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := auth.HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	hash, err := auth.HashPassword(strings.Repeat("a", 72))
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(hash, strings.Repeat("a", 72)))
}
