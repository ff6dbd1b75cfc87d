package service

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"sort"
	"strconv"
	"strings"
	"sync"

	// форматы, которые принимаем на загрузку и умеем композитить
	_ "image/gif"
	_ "image/jpeg"
)

// renderKey — явный ключ кэша рендеров: шаблон плюс канонический (отсортированный)
// вид набора img_id. renderAll и render с перечислением попадают в одну ячейку
// только когда наборы фактически совпадают.
type renderKey struct {
	template string
	items    string
}

type renderEntry struct {
	ids []int64 // отсортированы; нужны предикатной инвалидации
	png []byte
}

// RenderCache — потокобезопасный кэш готовых PNG. Инвалидация предикатная и
// синхронная: мутирующая операция не считается завершённой, пока зависящие
// от неё записи не удалены.
type RenderCache struct {
	mu      sync.Mutex
	entries map[renderKey]renderEntry
}

func NewRenderCache() *RenderCache {
	return &RenderCache{entries: make(map[renderKey]renderEntry)}
}

// canonicalIDs сортирует копию набора id и строит строковую часть ключа.
func canonicalIDs(ids []int64) ([]int64, string) {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sb strings.Builder
	for i, id := range sorted {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return sorted, sb.String()
}

func (c *RenderCache) Get(template string, ids []int64) ([]byte, bool) {
	_, canon := canonicalIDs(ids)
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[renderKey{template: template, items: canon}]
	if !ok {
		return nil, false
	}
	return entry.png, true
}

func (c *RenderCache) Put(template string, ids []int64, data []byte) {
	sorted, canon := canonicalIDs(ids)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[renderKey{template: template, items: canon}] = renderEntry{ids: sorted, png: data}
}

// InvalidateItem удаляет все записи шаблона, в чей набор входит imgID.
func (c *RenderCache) InvalidateItem(template string, imgID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if key.template != template {
			continue
		}
		if containsID(entry.ids, imgID) {
			delete(c.entries, key)
		}
	}
}

// InvalidateTemplate удаляет все записи шаблона независимо от набора id.
func (c *RenderCache) InvalidateTemplate(template string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.template == template {
			delete(c.entries, key)
		}
	}
}

// Len возвращает число закэшированных рендеров.
func (c *RenderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// бинарный поиск по отсортированному набору
func containsID(sorted []int64, id int64) bool {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= id })
	return i < len(sorted) && sorted[i] == id
}

// decodeImage декодирует загруженные байты; нечитаемый формат — пользовательская
// ошибка InvalidImage.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// encodePNG кодирует холст с максимальным сжатием.
func encodePNG(canvas *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// overlay накладывает img на canvas в точке (x, y) с alpha-композицией;
// выход за границы холста молча обрезается.
func overlay(canvas *image.RGBA, img image.Image, x, y int) {
	bounds := img.Bounds()
	dst := image.Rect(x, y, x+bounds.Dx(), y+bounds.Dy())
	draw.Draw(canvas, dst, img, bounds.Min, draw.Over)
}
