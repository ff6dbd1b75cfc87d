package repo

import (
	"context"

	"cotemplate/internal/model"

	"gorm.io/gorm"
)

// ItemRepository определяет контракт доступа к Item для слоя сервиса.
type ItemRepository interface {
	// Create вставляет item; занятый в шаблоне img_id — ErrConflict
	// (вызывающий перегенерирует id и повторяет).
	Create(ctx context.Context, item *model.Item) error

	GetByTemplateAndImgID(ctx context.Context, templateID, imgID int64) (*model.Item, error)
	FindAllByTemplate(ctx context.Context, templateID int64) ([]model.Item, error)
	FindAllByTemplateAndImgIDs(ctx context.Context, templateID int64, imgIDs []int64) ([]model.Item, error)
	CountByTemplate(ctx context.Context, templateID int64) (int64, error)

	// UpdateFields перезаписывает только перечисленные колонки (merge, не replace).
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error

	Delete(ctx context.Context, id int64) error
}

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepository создаёт реализацию репозитория для Item.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, item *model.Item) error {
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

func (r *itemRepo) GetByTemplateAndImgID(ctx context.Context, templateID, imgID int64) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Where("template_id = ? AND img_id = ?", templateID, imgID).
		First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *itemRepo) FindAllByTemplate(ctx context.Context, templateID int64) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).Where("template_id = ?", templateID).Find(&items).Error
	if err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *itemRepo) FindAllByTemplateAndImgIDs(ctx context.Context, templateID int64, imgIDs []int64) ([]model.Item, error) {
	if len(imgIDs) == 0 {
		return nil, nil
	}
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("template_id = ? AND img_id IN ?", templateID, imgIDs).
		Find(&items).Error
	if err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *itemRepo) CountByTemplate(ctx context.Context, templateID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("template_id = ?", templateID).
		Count(&count).Error
	if err != nil {
		return 0, translate(err)
	}
	return count, nil
}

func (r *itemRepo) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ?", id).
		Updates(fields).Error)
}

func (r *itemRepo) Delete(ctx context.Context, id int64) error {
	return translate(r.db.WithContext(ctx).Delete(&model.Item{}, id).Error)
}
