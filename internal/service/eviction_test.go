package service

import (
	"context"
	"image/color"
	"testing"
	"time"

	"cotemplate/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEvictionService_Run(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	logger := zap.NewNop().Sugar()

	stale, staleOwner := env.createTemplate(t, "stale_tpl", 20, 20, model.TeamCreateEveryone)
	fresh, _ := env.createTemplate(t, "fresh_tpl", 20, 20, model.TeamCreateEveryone)

	item, err := env.items.Add(ctx, staleOwner, stale.UniqueName, "layer", 0, 0, 0,
		solidPNG(t, 2, 2, color.RGBA{255, 0, 0, 255}))
	require.NoError(t, err)

	env.backdate(t, stale.UniqueName, 40*24*time.Hour)

	eviction := NewEvictionService(env.tplRepo, env.templates, 31*24*time.Hour, logger)
	eviction.Run(ctx)

	// просроченный шаблон удалён вместе с блобами
	_, err = env.templates.Details(ctx, stale.UniqueName)
	assert.Error(t, err)
	_, err = env.blobs.Read(stale.UniqueName, int64(item.ImgID))
	assert.Error(t, err)

	// свежий не тронут
	_, err = env.templates.Details(ctx, fresh.UniqueName)
	assert.NoError(t, err)

	// повторный проход ничего не находит и не падает
	eviction.Run(ctx)
	_, err = env.templates.Details(ctx, fresh.UniqueName)
	assert.NoError(t, err)
}
