package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"cotemplate/internal/auth"
	"cotemplate/internal/blob"
	"cotemplate/internal/model"
	"cotemplate/internal/repo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

const testMaxItemSide = 4096

// testEnv собирает полный сервисный стек поверх чистой in-memory базы
// и временного каталога изображений.
type testEnv struct {
	db       *gorm.DB
	tplRepo  repo.TemplateRepository
	userRepo repo.UserRepository
	itemRepo repo.ItemRepository
	blobs    *blob.Store
	cache    *RenderCache

	templates *TemplateService
	teams     *TeamService
	items     *ItemService
	auth      *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop().Sugar()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Template{}, &model.User{}, &model.Item{}))

	blobs, err := blob.NewStore(t.TempDir(), logger)
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		tplRepo:  repo.NewTemplateRepository(db),
		userRepo: repo.NewUserRepository(db),
		itemRepo: repo.NewItemRepository(db),
		blobs:    blobs,
		cache:    NewRenderCache(),
	}
	env.templates = NewTemplateService(env.tplRepo, env.userRepo, env.itemRepo, blobs, env.cache, logger)
	env.teams = NewTeamService(env.tplRepo, env.userRepo, logger)
	env.items = NewItemService(env.tplRepo, env.userRepo, env.itemRepo, blobs, env.cache, testMaxItemSide, logger)
	env.auth = NewAuthService(env.tplRepo, env.userRepo, "admin-secret", logger)
	return env
}

// createTemplate создаёт шаблон и возвращает его вместе с owner-идентичностью,
// полученной честным логином.
func (e *testEnv) createTemplate(t *testing.T, name string, w, h int, policy model.TeamCreatePolicy) (*CreatedTemplate, auth.Identity) {
	t.Helper()
	created, err := e.templates.Create(context.Background(), name, w, h, policy)
	require.NoError(t, err)

	owner, err := e.auth.Login(context.Background(), created.UniqueName, created.OwnerName, created.OwnerPassword)
	require.NoError(t, err)
	return created, owner
}

// createTeam создаёт команду и возвращает её идентичность.
func (e *testEnv) createTeam(t *testing.T, ident auth.Identity, template, name string) auth.Identity {
	t.Helper()
	team, err := e.teams.Create(context.Background(), ident, template, name)
	require.NoError(t, err)

	teamIdent, err := e.auth.Login(context.Background(), template, team.Name, team.Password)
	require.NoError(t, err)
	return teamIdent
}

// solidPNG кодирует прямоугольник w×h, залитый цветом c.
func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

// pixelAt возвращает цвет точки в 8-битном RGBA.
func pixelAt(img image.Image, x, y int) color.RGBA {
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

// backdate сдвигает дату создания шаблона в прошлое напрямую в БД.
func (e *testEnv) backdate(t *testing.T, uniqueName string, age time.Duration) {
	t.Helper()
	err := e.db.Model(&model.Template{}).
		Where("unique_name = ?", uniqueName).
		Update("creation_date", time.Now().Add(-age)).Error
	require.NoError(t, err)
}
