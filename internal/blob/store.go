// Package blob хранит байты загруженных изображений на диске.
// Путь файла: <root>/<template.UniqueName>/<imgId>, imgId — беззнаковое
// десятичное число. Авторитетное состояние — строка в БД; файловые операции
// на путях очистки выполняются best-effort.
package blob

import (
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

type Store struct {
	root   string
	logger *zap.SugaredLogger
}

// NewStore создаёт (при необходимости) корневой каталог и возвращает хранилище.
func NewStore(root string, logger *zap.SugaredLogger) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	logger.Infow("using image dir", "dir", abs)
	return &Store{root: abs, logger: logger}, nil
}

func (s *Store) path(template string, imgID int64) string {
	return filepath.Join(s.root, template, strconv.FormatUint(uint64(imgID), 10))
}

// MkTemplateDir создаёт каталог под изображения шаблона.
func (s *Store) MkTemplateDir(template string) error {
	return os.MkdirAll(filepath.Join(s.root, template), 0o755)
}

// RemoveTemplateDir удаляет каталог шаблона вместе с остатками содержимого.
func (s *Store) RemoveTemplateDir(template string) error {
	return os.RemoveAll(filepath.Join(s.root, template))
}

// Write кладёт новый файл; существующий файл — ошибка (write-if-absent).
func (s *Store) Write(template string, imgID int64, data []byte) error {
	f, err := os.OpenFile(s.path(template, imgID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// Overwrite заменяет содержимое файла, создавая его при отсутствии.
func (s *Store) Overwrite(template string, imgID int64, data []byte) error {
	return os.WriteFile(s.path(template, imgID), data, 0o644)
}

func (s *Store) Read(template string, imgID int64) ([]byte, error) {
	return os.ReadFile(s.path(template, imgID))
}

func (s *Store) Delete(template string, imgID int64) error {
	return os.Remove(s.path(template, imgID))
}
