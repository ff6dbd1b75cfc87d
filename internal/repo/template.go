package repo

import (
	"context"
	"time"

	"cotemplate/internal/model"

	"gorm.io/gorm"
)

// TemplateRepository определяет контракт доступа к Template для слоя сервиса.
type TemplateRepository interface {
	// Create вставляет шаблон вместе с его owner-учёткой одной транзакцией.
	// Нарушение уникальности unique_name возвращается как ErrConflict.
	Create(ctx context.Context, tpl *model.Template, owner *model.User) error

	GetByUniqueName(ctx context.Context, uniqueName string) (*model.Template, error)
	List(ctx context.Context) ([]model.Template, error)

	UpdateSize(ctx context.Context, id int64, width, height int) error
	UpdatePolicy(ctx context.Context, id int64, policy model.TeamCreatePolicy) error

	// Delete удаляет шаблон, его пользователей и его items одной транзакцией.
	Delete(ctx context.Context, id int64) error

	// FindAllOverAge возвращает шаблоны, созданные раньше cutoff.
	FindAllOverAge(ctx context.Context, cutoff time.Time) ([]model.Template, error)
}

type templateRepo struct {
	db *gorm.DB
}

// NewTemplateRepository создаёт реализацию репозитория для Template.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, tpl *model.Template, owner *model.User) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tpl).Error; err != nil {
			return err
		}
		owner.TemplateID = tpl.ID
		return tx.Create(owner).Error
	}))
}

func (r *templateRepo) GetByUniqueName(ctx context.Context, uniqueName string) (*model.Template, error) {
	var tpl model.Template
	err := r.db.WithContext(ctx).Where("unique_name = ?", uniqueName).First(&tpl).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tpl, nil
}

func (r *templateRepo) List(ctx context.Context) ([]model.Template, error) {
	var tpls []model.Template
	if err := r.db.WithContext(ctx).Find(&tpls).Error; err != nil {
		return nil, translate(err)
	}
	return tpls, nil
}

func (r *templateRepo) UpdateSize(ctx context.Context, id int64, width, height int) error {
	return translate(r.db.WithContext(ctx).
		Model(&model.Template{}).
		Where("id = ?", id).
		Updates(map[string]any{"width": width, "height": height}).Error)
}

func (r *templateRepo) UpdatePolicy(ctx context.Context, id int64, policy model.TeamCreatePolicy) error {
	return translate(r.db.WithContext(ctx).
		Model(&model.Template{}).
		Where("id = ?", id).
		Update("team_create_policy", policy).Error)
}

func (r *templateRepo) Delete(ctx context.Context, id int64) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&model.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", id).Delete(&model.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Template{}, id).Error
	}))
}

func (r *templateRepo) FindAllOverAge(ctx context.Context, cutoff time.Time) ([]model.Template, error) {
	var tpls []model.Template
	err := r.db.WithContext(ctx).Where("creation_date < ?", cutoff).Find(&tpls).Error
	if err != nil {
		return nil, translate(err)
	}
	return tpls, nil
}
