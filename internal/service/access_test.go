package service

import (
	"testing"

	"cotemplate/internal/apperrors"
	"cotemplate/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Матрица прав: одни и те же идентичности прогоняются через все три проверки.
func accessIdentities() map[string]auth.Identity {
	return map[string]auth.Identity{
		"guest":       auth.Guest(),
		"admin":       auth.Admin("t1"),
		"ownerT1":     auth.NewIdentity(1, "owner", auth.RoleOwner, "t1"),
		"teamT1":      auth.NewIdentity(7, "teamA", auth.RoleTeam, "t1"),
		"otherTeamT1": auth.NewIdentity(8, "teamB", auth.RoleTeam, "t1"),
		"ownerT2":     auth.NewIdentity(2, "owner", auth.RoleOwner, "t2"),
		"teamT2":      auth.NewIdentity(9, "teamC", auth.RoleTeam, "t2"),
	}
}

func TestCheckTemplateAccess(t *testing.T) {
	idents := accessIdentities()
	allowed := map[string]bool{
		"admin":   true,
		"ownerT1": true,
	}

	for name, ident := range idents {
		t.Run(name, func(t *testing.T) {
			err := checkTemplateAccess("modifying template settings", ident, "t1")
			if allowed[name] {
				assert.NoError(t, err)
			} else {
				requireForbidden(t, err, "modifying template settings is not permitted for you")
			}
		})
	}
}

func TestCheckTeamAccess(t *testing.T) {
	idents := accessIdentities()
	allowed := map[string]bool{
		"admin":       true,
		"ownerT1":     true,
		"teamT1":      true,
		"otherTeamT1": true,
	}

	for name, ident := range idents {
		t.Run(name, func(t *testing.T) {
			err := checkTeamAccess("modifying items", ident, "t1")
			if allowed[name] {
				assert.NoError(t, err)
			} else {
				requireForbidden(t, err, "modifying items is not permitted for you")
			}
		})
	}
}

func TestCheckItemAccess(t *testing.T) {
	idents := accessIdentities()

	// item принадлежит пользователю 7 (teamT1)
	allowed := map[string]bool{
		"admin":   true,
		"ownerT1": true,
		"teamT1":  true,
	}

	for name, ident := range idents {
		t.Run(name, func(t *testing.T) {
			err := checkItemAccess("modifying items", ident, "t1", 7)
			if allowed[name] {
				assert.NoError(t, err)
			} else {
				requireForbidden(t, err, "modifying items is not permitted for you")
			}
		})
	}
}

func requireForbidden(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.Status)
	assert.Equal(t, message, appErr.Message)
}
