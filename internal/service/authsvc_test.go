package service

import (
	"context"
	"fmt"
	"testing"

	"cotemplate/internal/apperrors"
	"cotemplate/internal/auth"
	"cotemplate/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, _ := env.createTemplate(t, "auth_tpl", 10, 10, model.TeamCreateEveryone)

	t.Run("owner входит по выданному паролю", func(t *testing.T) {
		ident, err := env.auth.Login(ctx, created.UniqueName, "owner", created.OwnerPassword)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleOwner, ident.Role())
		assert.Equal(t, "owner", ident.UserName())
		assert.False(t, ident.IsAnonymous())
	})

	t.Run("неверный пароль — 401", func(t *testing.T) {
		_, err := env.auth.Login(ctx, created.UniqueName, "owner", "wrong")
		requireAuthFailed(t, err, "invalid password")
	})

	t.Run("несуществующий пользователь — 401", func(t *testing.T) {
		_, err := env.auth.Login(ctx, created.UniqueName, "nobody", "pass")
		requireAuthFailed(t, err,
			fmt.Sprintf("user 'nobody' does not exist for template '%s'", created.UniqueName))
	})

	t.Run("несуществующий шаблон — 401", func(t *testing.T) {
		_, err := env.auth.Login(ctx, "20240101-nope", "owner", "pass")
		requireAuthFailed(t, err, "template '20240101-nope' does not exist")
	})
}

func TestAuthService_AdminLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("админ входит общим секретом без шаблона в БД", func(t *testing.T) {
		ident, err := env.auth.Login(ctx, "whatever", "admin", "admin-secret")
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, ident.Role())
		assert.Equal(t, "whatever", ident.Template())
	})

	t.Run("неверный секрет — 401", func(t *testing.T) {
		_, err := env.auth.Login(ctx, "whatever", "admin", "wrong")
		requireAuthFailed(t, err, "invalid password")
	})

	t.Run("выключенный секрет запрещает вход", func(t *testing.T) {
		disabled := NewAuthService(env.tplRepo, env.userRepo, auth.AdminSecretDisabled, env.auth.logger)
		_, err := disabled.Login(ctx, "whatever", "admin", auth.AdminSecretDisabled)
		requireAuthFailed(t, err, "invalid password")
	})
}

func requireAuthFailed(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, message, appErr.Message)
}
