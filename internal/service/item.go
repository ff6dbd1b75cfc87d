package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"sort"

	"cotemplate/internal/apperrors"
	"cotemplate/internal/auth"
	"cotemplate/internal/blob"
	"cotemplate/internal/model"
	"cotemplate/internal/repo"

	"go.uber.org/zap"
)

// imgIDAttempts — сколько раз перегенерируем img_id при коллизии в шаблоне.
const imgIDAttempts = 5

// ItemService — items шаблона: загрузка, частичное обновление, удаление и
// композиция выбранного набора в один PNG с кэшем готовых рендеров.
type ItemService struct {
	templates   repo.TemplateRepository
	users       repo.UserRepository
	items       repo.ItemRepository
	blobs       *blob.Store
	cache       *RenderCache
	maxItemSide int
	logger      *zap.SugaredLogger
}

func NewItemService(
	templates repo.TemplateRepository,
	users repo.UserRepository,
	items repo.ItemRepository,
	blobs *blob.Store,
	cache *RenderCache,
	maxItemSide int,
	logger *zap.SugaredLogger,
) *ItemService {
	return &ItemService{
		templates:   templates,
		users:       users,
		items:       items,
		blobs:       blobs,
		cache:       cache,
		maxItemSide: maxItemSide,
		logger:      logger,
	}
}

// ItemDetails — снимок item для чтения. ID наружу отдаётся как беззнаковое число.
type ItemDetails struct {
	ImgID       uint64
	Description string
	Owner       string
	Width       int
	Height      int
	X           int
	Y           int
	Z           int
}

// ItemUpdate — частичное обновление: nil-поля остаются нетронутыми.
type ItemUpdate struct {
	Description *string
	X           *int
	Y           *int
	Z           *int
}

// Add декодирует картинку (размеры берутся из неё, не от клиента), вставляет
// строку со случайным img_id и пишет блоб. Если запись блоба не удалась,
// строка откатывается — метаданные без байтов не остаются.
func (s *ItemService) Add(ctx context.Context, ident auth.Identity, tplName, desc string, x, y, z int, img []byte) (*ItemDetails, error) {
	if err := checkTeamAccess("modifying items", ident, tplName); err != nil {
		return nil, err
	}
	if len(desc) > DescriptionMaxLen {
		return nil, apperrors.InvalidParam(fmt.Sprintf("description must be at most %d characters", DescriptionMaxLen))
	}

	tpl, err := s.getTemplate(ctx, tplName)
	if err != nil {
		return nil, err
	}

	w, h, err := s.decodeDimensions(img)
	if err != nil {
		return nil, err
	}

	item := &model.Item{
		TemplateID:  tpl.ID,
		OwnerID:     ident.UserID(),
		Description: desc,
		X:           x,
		Y:           y,
		Z:           z,
		Width:       w,
		Height:      h,
	}

	// img_id не должен выдавать порядок создания, поэтому он случайный;
	// ноль и коллизии внутри шаблона отбраковываются
	for attempt := 0; ; attempt++ {
		item.ID = 0
		item.ImgID, err = randomImgID()
		if err != nil {
			return nil, err
		}
		err = s.items.Create(ctx, item)
		if err == nil {
			break
		}
		if errors.Is(err, repo.ErrConflict) && attempt < imgIDAttempts {
			continue
		}
		return nil, err
	}

	if err := s.blobs.Write(tpl.UniqueName, item.ImgID, img); err != nil {
		s.logger.Errorw("unable to store image for item",
			"template", tpl.UniqueName, "img_id", uint64(item.ImgID), "error", err)
		if derr := s.items.Delete(ctx, item.ID); derr != nil {
			s.logger.Errorw("unable to roll back item row after blob failure",
				"template", tpl.UniqueName, "img_id", uint64(item.ImgID), "error", derr)
		}
		return nil, err
	}

	return s.toDetails(ctx, item)
}

// UpdateDetails — merge, не replace: отсутствующие поля не трогаются.
// Затронутые кэш-записи удаляются до возврата.
func (s *ItemService) UpdateDetails(ctx context.Context, ident auth.Identity, tplName string, imgID uint64, upd ItemUpdate) (*ItemDetails, error) {
	tpl, item, err := s.getItem(ctx, tplName, imgID)
	if err != nil {
		return nil, err
	}
	if err := checkItemAccess("modifying items", ident, tplName, item.OwnerID); err != nil {
		return nil, err
	}

	fields := make(map[string]any, 4)
	if upd.Description != nil {
		if len(*upd.Description) > DescriptionMaxLen {
			return nil, apperrors.InvalidParam(fmt.Sprintf("description must be at most %d characters", DescriptionMaxLen))
		}
		fields["description"] = *upd.Description
		item.Description = *upd.Description
	}
	if upd.X != nil {
		fields["x"] = *upd.X
		item.X = *upd.X
	}
	if upd.Y != nil {
		fields["y"] = *upd.Y
		item.Y = *upd.Y
	}
	if upd.Z != nil {
		fields["z"] = *upd.Z
		item.Z = *upd.Z
	}

	if err := s.items.UpdateFields(ctx, item.ID, fields); err != nil {
		return nil, err
	}
	s.cache.InvalidateItem(tpl.UniqueName, item.ImgID)

	return s.toDetails(ctx, item)
}

// UpdateImage заменяет байты картинки и пересчитывает хранимые размеры.
func (s *ItemService) UpdateImage(ctx context.Context, ident auth.Identity, tplName string, imgID uint64, img []byte) (*ItemDetails, error) {
	tpl, item, err := s.getItem(ctx, tplName, imgID)
	if err != nil {
		return nil, err
	}
	if err := checkItemAccess("modifying items", ident, tplName, item.OwnerID); err != nil {
		return nil, err
	}

	w, h, err := s.decodeDimensions(img)
	if err != nil {
		return nil, err
	}

	if err := s.blobs.Overwrite(tpl.UniqueName, item.ImgID, img); err != nil {
		s.logger.Errorw("unable to overwrite image for item",
			"template", tpl.UniqueName, "img_id", uint64(item.ImgID), "error", err)
		return nil, err
	}
	if err := s.items.UpdateFields(ctx, item.ID, map[string]any{"width": w, "height": h}); err != nil {
		return nil, err
	}
	s.cache.InvalidateItem(tpl.UniqueName, item.ImgID)

	item.Width = w
	item.Height = h
	return s.toDetails(ctx, item)
}

// Delete удаляет блоб (best-effort) и строку, затем чистит кэш.
func (s *ItemService) Delete(ctx context.Context, ident auth.Identity, tplName string, imgID uint64) error {
	tpl, item, err := s.getItem(ctx, tplName, imgID)
	if err != nil {
		return err
	}
	if err := checkItemAccess("modifying items", ident, tplName, item.OwnerID); err != nil {
		return err
	}

	if err := s.blobs.Delete(tpl.UniqueName, item.ImgID); err != nil {
		s.logger.Errorw("unable to delete image of item",
			"template", tpl.UniqueName, "img_id", uint64(item.ImgID), "error", err)
	}
	if err := s.items.Delete(ctx, item.ID); err != nil {
		return err
	}
	s.cache.InvalidateItem(tpl.UniqueName, item.ImgID)
	return nil
}

// Details — публичное чтение метаданных item.
func (s *ItemService) Details(ctx context.Context, tplName string, imgID uint64) (*ItemDetails, error) {
	_, item, err := s.getItem(ctx, tplName, imgID)
	if err != nil {
		return nil, err
	}
	return s.toDetails(ctx, item)
}

// Image возвращает исходные байты картинки как были загружены.
func (s *ItemService) Image(ctx context.Context, tplName string, imgID uint64) ([]byte, error) {
	tpl, item, err := s.getItem(ctx, tplName, imgID)
	if err != nil {
		return nil, err
	}

	data, err := s.blobs.Read(tpl.UniqueName, item.ImgID)
	if err != nil {
		s.logger.Errorw("unable to read image for item",
			"template", tpl.UniqueName, "img_id", uint64(item.ImgID), "error", err)
		return nil, err
	}
	return data, nil
}

// List возвращает метаданные всех items шаблона.
func (s *ItemService) List(ctx context.Context, tplName string) ([]ItemDetails, error) {
	tpl, err := s.getTemplate(ctx, tplName)
	if err != nil {
		return nil, err
	}

	items, err := s.items.FindAllByTemplate(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}

	result := make([]ItemDetails, 0, len(items))
	for i := range items {
		details, err := s.toDetails(ctx, &items[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *details)
	}
	return result, nil
}

// Render композитит явно перечисленный набор items. Если хоть один id не
// существует, возвращается ItemsNotFound со ВСЕМИ отсутствующими id;
// частичный рендер не отдаётся.
func (s *ItemService) Render(ctx context.Context, tplName string, imgIDs []uint64) ([]byte, error) {
	tpl, err := s.getTemplate(ctx, tplName)
	if err != nil {
		return nil, err
	}

	want := make([]int64, 0, len(imgIDs))
	seen := make(map[int64]struct{}, len(imgIDs))
	for _, id := range imgIDs {
		signed := int64(id)
		if _, ok := seen[signed]; ok {
			continue
		}
		seen[signed] = struct{}{}
		want = append(want, signed)
	}

	items, err := s.items.FindAllByTemplateAndImgIDs(ctx, tpl.ID, want)
	if err != nil {
		return nil, err
	}
	if len(items) != len(want) {
		found := make(map[int64]struct{}, len(items))
		for _, item := range items {
			found[item.ImgID] = struct{}{}
		}
		var missing []uint64
		for _, id := range want {
			if _, ok := found[id]; !ok {
				missing = append(missing, uint64(id))
			}
		}
		return nil, apperrors.ItemsNotFound(tplName, missing)
	}

	return s.renderItems(tpl, items)
}

// RenderAll композитит все items шаблона; ключ кэша строится из текущего
// полного списка в момент вызова.
func (s *ItemService) RenderAll(ctx context.Context, tplName string) ([]byte, error) {
	tpl, err := s.getTemplate(ctx, tplName)
	if err != nil {
		return nil, err
	}

	items, err := s.items.FindAllByTemplate(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}
	return s.renderItems(tpl, items)
}

func (s *ItemService) renderItems(tpl *model.Template, items []model.Item) ([]byte, error) {
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ImgID
	}

	if data, ok := s.cache.Get(tpl.UniqueName, ids); ok {
		return data, nil
	}

	data, err := s.compose(tpl, items)
	if err != nil {
		return nil, err
	}
	s.cache.Put(tpl.UniqueName, ids, data)
	return data, nil
}

// compose рисует items на прозрачном холсте текущего размера шаблона в порядке
// возрастания z (при равных z — по img_id, чтобы результат был воспроизводим)
// и кодирует PNG с максимальным сжатием.
func (s *ItemService) compose(tpl *model.Template, items []model.Item) ([]byte, error) {
	ordered := make([]model.Item, len(items))
	copy(ordered, items)
	sortItemsForPaint(ordered)

	canvas := image.NewRGBA(image.Rect(0, 0, tpl.Width, tpl.Height))
	for _, item := range ordered {
		data, err := s.blobs.Read(tpl.UniqueName, item.ImgID)
		if err != nil {
			s.logger.Errorw("unable to read image for item",
				"template", tpl.UniqueName, "img_id", uint64(item.ImgID), "error", err)
			return nil, err
		}
		img, err := decodeImage(data)
		if err != nil {
			s.logger.Errorw("unable to decode stored image",
				"template", tpl.UniqueName, "img_id", uint64(item.ImgID), "error", err)
			return nil, err
		}
		overlay(canvas, img, item.X, item.Y)
	}

	return encodePNG(canvas)
}

func (s *ItemService) getTemplate(ctx context.Context, name string) (*model.Template, error) {
	tpl, err := s.templates.GetByUniqueName(ctx, name)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperrors.TemplateNotFound(name)
		}
		return nil, err
	}
	return tpl, nil
}

func (s *ItemService) getItem(ctx context.Context, tplName string, imgID uint64) (*model.Template, *model.Item, error) {
	tpl, err := s.getTemplate(ctx, tplName)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.items.GetByTemplateAndImgID(ctx, tpl.ID, int64(imgID))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, apperrors.ItemNotFound(tplName, imgID)
		}
		return nil, nil, err
	}
	return tpl, item, nil
}

func (s *ItemService) decodeDimensions(img []byte) (int, int, error) {
	decoded, err := decodeImage(img)
	if err != nil {
		return 0, 0, apperrors.InvalidImage("unable to decode image")
	}
	w := decoded.Bounds().Dx()
	h := decoded.Bounds().Dy()
	if w < 1 || h < 1 || w > s.maxItemSide || h > s.maxItemSide {
		return 0, 0, apperrors.InvalidImage(fmt.Sprintf("image sides must be within [1, %d] px", s.maxItemSide))
	}
	return w, h, nil
}

// toDetails подтягивает имя владельца явным запросом (никаких ленивых связей).
func (s *ItemService) toDetails(ctx context.Context, item *model.Item) (*ItemDetails, error) {
	ownerName := ""
	owner, err := s.users.GetByID(ctx, item.OwnerID)
	if err == nil {
		ownerName = owner.Name
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	return &ItemDetails{
		ImgID:       uint64(item.ImgID),
		Description: item.Description,
		Owner:       ownerName,
		Width:       item.Width,
		Height:      item.Height,
		X:           item.X,
		Y:           item.Y,
		Z:           item.Z,
	}, nil
}

// randomImgID — случайный ненулевой 64-битный id (rejection sampling).
func randomImgID() (int64, error) {
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, err
		}
		id := int64(binary.BigEndian.Uint64(buf[:]))
		if id != 0 {
			return id, nil
		}
	}
}

// sortItemsForPaint задаёт детерминированный порядок отрисовки.
func sortItemsForPaint(items []model.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Z != items[j].Z {
			return items[i].Z < items[j].Z
		}
		return uint64(items[i].ImgID) < uint64(items[j].ImgID)
	})
}
