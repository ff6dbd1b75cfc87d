package service

import (
	"context"
	"errors"
	"regexp"

	"cotemplate/internal/apperrors"
	"cotemplate/internal/auth"
	"cotemplate/internal/model"
	"cotemplate/internal/repo"

	"go.uber.org/zap"
)

var teamNameRe = regexp.MustCompile(`^[a-zA-Z0-9_:]{1,128}$`)

// TeamService создаёт team-учётки в шаблоне согласно его teamCreatePolicy.
type TeamService struct {
	templates repo.TemplateRepository
	users     repo.UserRepository
	logger    *zap.SugaredLogger
}

func NewTeamService(templates repo.TemplateRepository, users repo.UserRepository, logger *zap.SugaredLogger) *TeamService {
	return &TeamService{templates: templates, users: users, logger: logger}
}

// CreatedTeam — учётные данные новой команды; Password отдаётся один раз.
type CreatedTeam struct {
	Template string
	Name     string
	Password string
}

// Create создаёт команду. При политике OWNER требуется доступ владельца;
// при EVERYONE свободный проход есть только у полностью анонимного
// вызывающего — залогиненный пользователь чужого шаблона всё равно
// получает отказ.
func (s *TeamService) Create(ctx context.Context, ident auth.Identity, tplName, teamName string) (*CreatedTeam, error) {
	if !teamNameRe.MatchString(teamName) {
		return nil, apperrors.InvalidName("")
	}
	if teamName == auth.AdminUserName {
		return nil, apperrors.InvalidName("username may not be '" + auth.AdminUserName + "'")
	}

	tpl, err := s.templates.GetByUniqueName(ctx, tplName)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperrors.TemplateNotFound(tplName)
		}
		return nil, err
	}

	switch tpl.TeamCreatePolicy {
	case model.TeamCreateOwner:
		if err := checkTemplateAccess("creating teams", ident, tplName); err != nil {
			return nil, err
		}
	case model.TeamCreateEveryone:
		if !ident.IsAnonymous() {
			if err := checkTeamAccess("creating teams", ident, tplName); err != nil {
				return nil, err
			}
		}
	}

	pass, err := auth.GeneratePassword()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(pass)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		TemplateID: tpl.ID,
		Name:       teamName,
		Pass:       hash,
		Role:       auth.RoleTeam,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, apperrors.TeamAlreadyExists(teamName, tplName)
		}
		return nil, err
	}

	return &CreatedTeam{Template: tpl.UniqueName, Name: teamName, Password: pass}, nil
}

// Teams возвращает имена всех team-учёток шаблона (owner не входит).
func (s *TeamService) Teams(ctx context.Context, tplName string) ([]string, error) {
	tpl, err := s.templates.GetByUniqueName(ctx, tplName)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperrors.TemplateNotFound(tplName)
		}
		return nil, err
	}

	users, err := s.users.FindAllByTemplate(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}

	teams := make([]string, 0, len(users))
	for _, u := range users {
		if u.Role == auth.RoleTeam {
			teams = append(teams, u.Name)
		}
	}
	return teams, nil
}
