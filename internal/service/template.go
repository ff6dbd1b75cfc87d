package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"cotemplate/internal/apperrors"
	"cotemplate/internal/auth"
	"cotemplate/internal/blob"
	"cotemplate/internal/model"
	"cotemplate/internal/repo"

	"go.uber.org/zap"
)

const (
	// MaxTemplateDimension — верхняя граница ширины/высоты холста, px.
	MaxTemplateDimension = 8192

	// OwnerUserName — фиксированное имя учётки владельца шаблона.
	OwnerUserName = "owner"

	// DescriptionMaxLen — максимальная длина описания item.
	DescriptionMaxLen = 1024
)

var templateNameRe = regexp.MustCompile(`^[a-zA-Z0-9_:]{4,128}$`)

// TemplateService — жизненный цикл шаблонов: создание с owner-учёткой,
// детали, изменение настроек, каскадное удаление.
type TemplateService struct {
	templates repo.TemplateRepository
	users     repo.UserRepository
	items     repo.ItemRepository
	blobs     *blob.Store
	cache     *RenderCache
	logger    *zap.SugaredLogger
}

func NewTemplateService(
	templates repo.TemplateRepository,
	users repo.UserRepository,
	items repo.ItemRepository,
	blobs *blob.Store,
	cache *RenderCache,
	logger *zap.SugaredLogger,
) *TemplateService {
	return &TemplateService{
		templates: templates,
		users:     users,
		items:     items,
		blobs:     blobs,
		cache:     cache,
		logger:    logger,
	}
}

// CreatedTemplate возвращается из Create; OwnerPassword отдаётся один раз
// открытым текстом и восстановлению не подлежит.
type CreatedTemplate struct {
	UniqueName    string
	OwnerName     string
	OwnerPassword string
}

// TemplateDetails — снимок шаблона для чтения; ItemCount считается по запросу.
type TemplateDetails struct {
	Name             string
	CreationDate     time.Time
	TeamCreatePolicy model.TeamCreatePolicy
	Width            int
	Height           int
	ItemCount        int64
}

// Create валидирует размеры и имя, затем одной транзакцией вставляет шаблон
// и owner-учётку со сгенерированным паролем. Гонка двух одинаковых созданий
// в один день — ожидаемый исход, а не сбой: вторая получает AlreadyExists.
func (s *TemplateService) Create(ctx context.Context, name string, width, height int, policy model.TeamCreatePolicy) (*CreatedTemplate, error) {
	if width <= 0 || height <= 0 || width > MaxTemplateDimension || height > MaxTemplateDimension {
		return nil, apperrors.InvalidDimensions(MaxTemplateDimension)
	}
	if !templateNameRe.MatchString(name) {
		return nil, apperrors.InvalidName("")
	}
	if policy != model.TeamCreateEveryone && policy != model.TeamCreateOwner {
		return nil, apperrors.InvalidParam("unknown teamCreatePolicy")
	}

	now := time.Now()
	tpl := &model.Template{
		Name:             name,
		UniqueName:       model.UniqueName(now, name),
		Width:            width,
		Height:           height,
		TeamCreatePolicy: policy,
		CreationDate:     now,
	}

	pass, err := auth.GeneratePassword()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(pass)
	if err != nil {
		return nil, err
	}
	owner := &model.User{Name: OwnerUserName, Pass: hash, Role: auth.RoleOwner}

	if err := s.templates.Create(ctx, tpl, owner); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, apperrors.TemplateAlreadyExists(name)
		}
		return nil, err
	}

	if err := s.blobs.MkTemplateDir(tpl.UniqueName); err != nil {
		// шаблон уже закоммичен; без каталога все будущие загрузки будут
		// падать — деградация допустима, но ошибку отдаём наружу
		s.logger.Errorw("unable to create image dir for template",
			"template", tpl.UniqueName, "error", err)
		return nil, err
	}

	return &CreatedTemplate{
		UniqueName:    tpl.UniqueName,
		OwnerName:     owner.Name,
		OwnerPassword: pass,
	}, nil
}

// Details возвращает снимок шаблона по uniqueName.
func (s *TemplateService) Details(ctx context.Context, name string) (*TemplateDetails, error) {
	tpl, err := s.getTemplate(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.toDetails(ctx, tpl)
}

// List — полный список шаблонов, только для администратора.
func (s *TemplateService) List(ctx context.Context, ident auth.Identity) (map[string]*TemplateDetails, error) {
	if ident.IsAnonymous() || ident.Role() != auth.RoleAdmin {
		return nil, apperrors.Forbidden("listing templates")
	}

	tpls, err := s.templates.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*TemplateDetails, len(tpls))
	for i := range tpls {
		details, err := s.toDetails(ctx, &tpls[i])
		if err != nil {
			return nil, err
		}
		result[tpls[i].UniqueName] = details
	}
	return result, nil
}

// UpdateSize меняет размеры холста. Смена размера делает все готовые рендеры
// шаблона недействительными, поэтому кэш чистится до возврата из вызова.
func (s *TemplateService) UpdateSize(ctx context.Context, ident auth.Identity, name string, width, height int) (*TemplateDetails, error) {
	if err := checkTemplateAccess("modifying template settings", ident, name); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 || width > MaxTemplateDimension || height > MaxTemplateDimension {
		return nil, apperrors.InvalidDimensions(MaxTemplateDimension)
	}

	tpl, err := s.getTemplate(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.templates.UpdateSize(ctx, tpl.ID, width, height); err != nil {
		return nil, err
	}
	s.cache.InvalidateTemplate(tpl.UniqueName)

	tpl.Width = width
	tpl.Height = height
	return s.toDetails(ctx, tpl)
}

// UpdateTeamCreatePolicy меняет политику создания команд; кэш не затрагивается.
func (s *TemplateService) UpdateTeamCreatePolicy(ctx context.Context, ident auth.Identity, name string, policy model.TeamCreatePolicy) (*TemplateDetails, error) {
	if err := checkTemplateAccess("modifying template settings", ident, name); err != nil {
		return nil, err
	}
	if policy != model.TeamCreateEveryone && policy != model.TeamCreateOwner {
		return nil, apperrors.InvalidParam("unknown teamCreatePolicy")
	}

	tpl, err := s.getTemplate(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.templates.UpdatePolicy(ctx, tpl.ID, policy); err != nil {
		return nil, err
	}

	tpl.TeamCreatePolicy = policy
	return s.toDetails(ctx, tpl)
}

// Delete — админский путь удаления; владельцы удалять свой шаблон не могут.
func (s *TemplateService) Delete(ctx context.Context, ident auth.Identity, name string) error {
	if ident.IsAnonymous() || ident.Role() != auth.RoleAdmin {
		return apperrors.Forbidden("deleting templates")
	}
	return s.deleteTemplate(ctx, name)
}

// deleteTemplate — внутренний путь без проверки прав; им же пользуется
// зачистка по возрасту. Блобы удаляются best-effort, авторитетное состояние —
// строки в БД, их удаление каскадно и атомарно.
func (s *TemplateService) deleteTemplate(ctx context.Context, name string) error {
	tpl, err := s.getTemplate(ctx, name)
	if err != nil {
		return err
	}

	items, err := s.items.FindAllByTemplate(ctx, tpl.ID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.blobs.Delete(tpl.UniqueName, item.ImgID); err != nil {
			s.logger.Errorw("unable to delete image of item",
				"template", tpl.UniqueName, "img_id", uint64(item.ImgID), "error", err)
		}
	}
	if err := s.blobs.RemoveTemplateDir(tpl.UniqueName); err != nil {
		s.logger.Errorw("unable to delete image dir of template",
			"template", tpl.UniqueName, "error", err)
	}

	if err := s.templates.Delete(ctx, tpl.ID); err != nil {
		return err
	}
	s.cache.InvalidateTemplate(tpl.UniqueName)
	return nil
}

func (s *TemplateService) getTemplate(ctx context.Context, name string) (*model.Template, error) {
	tpl, err := s.templates.GetByUniqueName(ctx, name)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperrors.TemplateNotFound(name)
		}
		return nil, err
	}
	return tpl, nil
}

func (s *TemplateService) toDetails(ctx context.Context, tpl *model.Template) (*TemplateDetails, error) {
	count, err := s.items.CountByTemplate(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}
	return &TemplateDetails{
		Name:             tpl.Name,
		CreationDate:     tpl.CreationDate,
		TeamCreatePolicy: tpl.TeamCreatePolicy,
		Width:            tpl.Width,
		Height:           tpl.Height,
		ItemCount:        count,
	}, nil
}
