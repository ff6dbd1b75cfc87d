package model

import "cotemplate/internal/auth"

// User — учётная запись, привязанная к одному шаблону.
// Owner создаётся атомарно вместе с шаблоном, команды — через TeamService.
type User struct {
	ID         int64 `gorm:"primaryKey"`
	TemplateID int64 `gorm:"not null;uniqueIndex:uc_user_tpl_name"` // ссылка на templates.id

	// Имя уникально в пределах шаблона.
	Name string `gorm:"not null;uniqueIndex:uc_user_tpl_name"`

	// Pass — bcrypt-хеш; исходный пароль нигде не хранится.
	Pass string    `gorm:"not null"`
	Role auth.Role `gorm:"not null"`
}
