package repo

import (
	"context"

	"cotemplate/internal/model"

	"gorm.io/gorm"
)

// UserRepository определяет контракт доступа к User для слоя сервиса.
type UserRepository interface {
	// Create вставляет учётку; занятое в шаблоне имя — ErrConflict.
	Create(ctx context.Context, user *model.User) error

	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByTemplateAndName(ctx context.Context, templateID int64, name string) (*model.User, error)
	FindAllByTemplate(ctx context.Context, templateID int64) ([]model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт реализацию репозитория для User.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) GetByTemplateAndName(ctx context.Context, templateID int64, name string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("template_id = ? AND name = ?", templateID, name).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) FindAllByTemplate(ctx context.Context, templateID int64) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Where("template_id = ?", templateID).Find(&users).Error
	if err != nil {
		return nil, translate(err)
	}
	return users, nil
}
