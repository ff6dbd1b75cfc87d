package service

import (
	"cotemplate/internal/apperrors"
	"cotemplate/internal/auth"
)

// Три восходящие проверки доступа. Все — чистые предикаты без побочных
// эффектов; вызываются ДО любой мутации. action попадает в текст
// Forbidden-ошибки дословно.

// checkTemplateAccess: админ, либо owner именно этого шаблона.
func checkTemplateAccess(action string, ident auth.Identity, tplName string) error {
	if ident.IsAnonymous() {
		return apperrors.Forbidden(action)
	}
	if ident.Role() == auth.RoleAdmin {
		return nil
	}
	if ident.Template() != tplName {
		return apperrors.Forbidden(action)
	}
	if ident.Role() != auth.RoleOwner {
		return apperrors.Forbidden(action)
	}
	return nil
}

// checkTeamAccess: админ, либо owner или команда этого шаблона.
func checkTeamAccess(action string, ident auth.Identity, tplName string) error {
	if ident.IsAnonymous() {
		return apperrors.Forbidden(action)
	}
	if ident.Role() == auth.RoleAdmin {
		return nil
	}
	if ident.Template() != tplName {
		return apperrors.Forbidden(action)
	}
	if ident.Role() != auth.RoleOwner && ident.Role() != auth.RoleTeam {
		return apperrors.Forbidden(action)
	}
	return nil
}

// checkItemAccess: поверх checkTeamAccess команда может трогать только свои
// items, owner и админ — любые.
func checkItemAccess(action string, ident auth.Identity, tplName string, itemOwnerID int64) error {
	if err := checkTeamAccess(action, ident, tplName); err != nil {
		return err
	}
	if ident.Role() == auth.RoleAdmin {
		return nil
	}
	if ident.Role() != auth.RoleOwner && ident.UserID() != itemOwnerID {
		return apperrors.Forbidden(action)
	}
	return nil
}
