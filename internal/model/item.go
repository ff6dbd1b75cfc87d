package model

// Item — одно изображение-слой внутри шаблона. Байты картинки лежат в
// blob-хранилище по ключу <template.UniqueName>/<ImgID>, здесь только метаданные.
type Item struct {
	ID         int64 `gorm:"primaryKey"`
	TemplateID int64 `gorm:"not null;uniqueIndex:uc_item_tpl_img"` // ссылка на templates.id
	OwnerID    int64 `gorm:"not null;index"`                       // ссылка на users.id (загрузивший)

	// ImgID — случайный ненулевой 64-битный идентификатор, уникальный в пределах
	// шаблона. Наружу отдаётся как беззнаковое десятичное число.
	ImgID int64 `gorm:"not null;uniqueIndex:uc_item_tpl_img"`

	Description string `gorm:"not null"`

	// Координаты могут быть отрицательными и выходить за холст — при
	// композиции изображение просто обрезается.
	X int `gorm:"not null"`
	Y int `gorm:"not null"`
	Z int `gorm:"not null"`

	// Width/Height берутся из декодированной картинки, не от клиента.
	Width  int `gorm:"not null"`
	Height int `gorm:"not null"`
}
