package service_test

import (
	"context"
	"testing"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/SergeiKhy/utm-tracker/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	svc := service.NewUserService(mocks.NewMockUserRepository())
	ctx := context.Background()

	user, err := svc.Register(ctx, &models.User{OpenID: " open-1 ", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "open-1", user.OpenID)
	assert.Equal(t, models.RoleUser, user.Role)

	// Повторная регистрация обновляет запись, id сохраняется
	again, err := svc.Register(ctx, &models.User{OpenID: "open-1", Name: "Alice B", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.Name)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestUserService_Register_Invalid(t *testing.T) {
	svc := service.NewUserService(mocks.NewMockUserRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, &models.User{})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Register(ctx, &models.User{OpenID: "x", Role: "root"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserService_List_AdminOnly(t *testing.T) {
	svc := service.NewUserService(mocks.NewMockUserRepository())
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		_, err := svc.Register(ctx, &models.User{OpenID: id})
		require.NoError(t, err)
	}

	_, err := svc.List(ctx, alice)
	assert.ErrorIs(t, err, service.ErrForbidden)

	users, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
