package service

import (
	"context"
	"errors"
	"fmt"

	"cotemplate/internal/apperrors"
	"cotemplate/internal/auth"
	"cotemplate/internal/repo"

	"go.uber.org/zap"
)

// AuthService разрешает учётные данные в Identity. Админ аутентифицируется
// общим секретом и не ищется в БД; остальные — по (template, username).
type AuthService struct {
	templates   repo.TemplateRepository
	users       repo.UserRepository
	adminSecret string
	logger      *zap.SugaredLogger
}

func NewAuthService(templates repo.TemplateRepository, users repo.UserRepository, adminSecret string, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{templates: templates, users: users, adminSecret: adminSecret, logger: logger}
}

// Login проверяет пароль и возвращает идентичность вызывающего.
// Любой отказ — AuthenticationFailed (401); Forbidden здесь не используется.
func (s *AuthService) Login(ctx context.Context, tplName, username, password string) (auth.Identity, error) {
	if username == auth.AdminUserName {
		if !auth.VerifyAdminSecret(s.adminSecret, password) {
			return auth.Guest(), apperrors.AuthenticationFailed("invalid password")
		}
		return auth.Admin(tplName), nil
	}

	tpl, err := s.templates.GetByUniqueName(ctx, tplName)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return auth.Guest(), apperrors.AuthenticationFailed(fmt.Sprintf("template '%s' does not exist", tplName))
		}
		return auth.Guest(), err
	}

	user, err := s.users.GetByTemplateAndName(ctx, tpl.ID, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return auth.Guest(), apperrors.AuthenticationFailed(fmt.Sprintf("user '%s' does not exist for template '%s'", username, tplName))
		}
		return auth.Guest(), err
	}

	if !auth.CheckPassword(password, user.Pass) {
		return auth.Guest(), apperrors.AuthenticationFailed("invalid password")
	}

	return auth.NewIdentity(user.ID, user.Name, user.Role, tplName), nil
}
