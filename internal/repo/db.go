package repo

import (
	"errors"
	"strings"

	"cotemplate/internal/model"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// Типизированные сигналы слоя хранения. Сервисы переводят их в доменные
// ошибки на месте вызова, где нарушенное ограничение однозначно.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("unique constraint violated")
)

// InitDB открывает подключение и прогоняет миграции.
// Postgres выбирается по префиксу DSN, иначе SQLite (modernc, без cgo).
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dial = postgres.Open(dsn)
	} else {
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}

	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.Template{}, &model.User{}, &model.Item{}); err != nil {
		return nil, err
	}
	return db, nil
}

// translate приводит ошибки gorm к сигналам репозитория.
// Диалектор modernc-sqlite не реализует перевод ошибок, поэтому нарушение
// уникальности дополнительно ловим по тексту ошибки самого sqlite.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return ErrConflict
	}
	return err
}
