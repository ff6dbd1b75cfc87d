package service

import (
	"context"
	"testing"

	"cotemplate/internal/apperrors"
	"cotemplate/internal/auth"
	"cotemplate/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamService_CreateEveryone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, owner := env.createTemplate(t, "open_tpl", 10, 10, model.TeamCreateEveryone)

	t.Run("аноним создаёт команду", func(t *testing.T) {
		team, err := env.teams.Create(ctx, auth.Guest(), created.UniqueName, "teamA")
		require.NoError(t, err)
		assert.Equal(t, created.UniqueName, team.Template)
		assert.Equal(t, "teamA", team.Name)
		assert.Len(t, team.Password, auth.GeneratedPasswordLen)

		ident, err := env.auth.Login(ctx, created.UniqueName, "teamA", team.Password)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleTeam, ident.Role())
	})

	t.Run("owner тоже может", func(t *testing.T) {
		_, err := env.teams.Create(ctx, owner, created.UniqueName, "teamB")
		assert.NoError(t, err)
	})

	// свободный проход только у полностью анонимного вызывающего:
	// залогиненный пользователь чужого шаблона получает отказ
	t.Run("чужой пользователь не может", func(t *testing.T) {
		foreign, _ := env.createTemplate(t, "foreign_tpl", 10, 10, model.TeamCreateEveryone)
		foreignOwner, err := env.auth.Login(ctx, foreign.UniqueName, "owner", foreign.OwnerPassword)
		require.NoError(t, err)

		_, err = env.teams.Create(ctx, foreignOwner, created.UniqueName, "teamC")
		requireForbidden(t, err, "creating teams is not permitted for you")
	})
}

func TestTeamService_CreateOwnerPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, owner := env.createTemplate(t, "closed_tpl", 10, 10, model.TeamCreateOwner)

	t.Run("аноним получает отказ", func(t *testing.T) {
		_, err := env.teams.Create(ctx, auth.Guest(), created.UniqueName, "teamA")
		requireForbidden(t, err, "creating teams is not permitted for you")
	})

	t.Run("owner создаёт", func(t *testing.T) {
		_, err := env.teams.Create(ctx, owner, created.UniqueName, "teamA")
		assert.NoError(t, err)
	})

	t.Run("команда создавать команды не может", func(t *testing.T) {
		team := env.createTeam(t, owner, created.UniqueName, "teamB")
		_, err := env.teams.Create(ctx, team, created.UniqueName, "teamC")
		requireForbidden(t, err, "creating teams is not permitted for you")
	})

	t.Run("админ создаёт всегда", func(t *testing.T) {
		_, err := env.teams.Create(ctx, auth.Admin(created.UniqueName), created.UniqueName, "teamD")
		assert.NoError(t, err)
	})
}

func TestTeamService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, _ := env.createTemplate(t, "val_tpl", 10, 10, model.TeamCreateEveryone)

	t.Run("пустое имя", func(t *testing.T) {
		_, err := env.teams.Create(ctx, auth.Guest(), created.UniqueName, "")
		require.Error(t, err)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, 400, appErr.Status)
	})

	t.Run("имя admin зарезервировано", func(t *testing.T) {
		_, err := env.teams.Create(ctx, auth.Guest(), created.UniqueName, "admin")
		require.Error(t, err)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, 400, appErr.Status)
	})

	t.Run("имя owner занято owner-учёткой", func(t *testing.T) {
		_, err := env.teams.Create(ctx, auth.Guest(), created.UniqueName, "owner")
		require.Error(t, err)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, 409, appErr.Status)
	})

	t.Run("дубликат команды", func(t *testing.T) {
		_, err := env.teams.Create(ctx, auth.Guest(), created.UniqueName, "teamA")
		require.NoError(t, err)

		_, err = env.teams.Create(ctx, auth.Guest(), created.UniqueName, "teamA")
		require.Error(t, err)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, 409, appErr.Status)
		assert.Contains(t, appErr.Message, "teamA")
	})

	t.Run("несуществующий шаблон", func(t *testing.T) {
		_, err := env.teams.Create(ctx, auth.Guest(), "20240101-nope", "teamA")
		require.Error(t, err)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, 404, appErr.Status)
	})
}

func TestTeamService_Teams(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, _ := env.createTemplate(t, "list_tpl", 10, 10, model.TeamCreateEveryone)

	env.createTeam(t, auth.Guest(), created.UniqueName, "teamA")
	env.createTeam(t, auth.Guest(), created.UniqueName, "teamB")

	teams, err := env.teams.Teams(ctx, created.UniqueName)
	require.NoError(t, err)

	// owner в список команд не входит
	assert.ElementsMatch(t, []string{"teamA", "teamB"}, teams)
}
