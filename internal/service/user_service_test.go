package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/egannguyen/sales-orders/internal/auth"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u := e.seller(t, "seller@sales.test")
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "password", u.PasswordHash)

	token, err := e.users.Authenticate(ctx, " seller@sales.test ", "password")
	require.NoError(t, err)

	id, err := auth.NewTokenIssuer([]byte("test-secret"), 0).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)

	me, err := e.users.CurrentUser(ctx, id.UserID)
	require.NoError(t, err)
	assert.Equal(t, "seller@sales.test", me.Email)
}

func TestUserService_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seller(t, "seller@sales.test")

	_, err := e.users.Register(ctx, service.RegisterUserParams{
		Name: "Other", Surname: "Seller", Email: "seller@sales.test", Password: "secret",
	})
	assert.ErrorIs(t, err, entity.ErrDuplicateEmail)

	_, err = e.users.Register(ctx, service.RegisterUserParams{Name: "No", Surname: "Password", Email: "np@sales.test"})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = e.users.Register(ctx, service.RegisterUserParams{
		Name: "Long", Surname: "Password", Email: "long@sales.test", Password: strings.Repeat("x", 100),
	})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = e.users.Authenticate(ctx, "seller@sales.test", "wrong")
	assert.ErrorIs(t, err, entity.ErrAuthenticationFailed)

	_, err = e.users.Authenticate(ctx, "nobody@sales.test", "password")
	assert.ErrorIs(t, err, entity.ErrAuthenticationFailed)

	_, err = e.users.CurrentUser(ctx, "")
	assert.ErrorIs(t, err, entity.ErrNotAuthorized)

	_, err = e.users.CurrentUser(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrUserNotFound)
}
