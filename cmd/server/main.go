package main

import (
	"context"
	"net/http"

	"cotemplate/internal/blob"
	"cotemplate/internal/config"
	"cotemplate/internal/handlers"
	"cotemplate/internal/middleware"
	"cotemplate/internal/repo"
	"cotemplate/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	blobStore, err := blob.NewStore(cfg.ImageDir, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize image storage", "dir", cfg.ImageDir, "error", err)
	}

	templateRepo := repo.NewTemplateRepository(gormDB)
	userRepo := repo.NewUserRepository(gormDB)
	itemRepo := repo.NewItemRepository(gormDB)

	renderCache := service.NewRenderCache()
	templateService := service.NewTemplateService(templateRepo, userRepo, itemRepo, blobStore, renderCache, sugar)
	teamService := service.NewTeamService(templateRepo, userRepo, sugar)
	itemService := service.NewItemService(templateRepo, userRepo, itemRepo, blobStore, renderCache, cfg.MaxItemSide, sugar)
	authService := service.NewAuthService(templateRepo, userRepo, cfg.AdminSecret, sugar)
	evictionService := service.NewEvictionService(templateRepo, templateService, cfg.TemplateMaxAge, sugar)

	// ежедневная зачистка старых шаблонов
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 1 * * *", func() { evictionService.Run(ctx) }); err != nil {
		sugar.Fatalw("failed to schedule eviction", "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	h := handlers.NewHandler(templateService, teamService, itemService, authService, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"DatabaseDSN", cfg.DatabaseDSN,
		"ImageDir", cfg.ImageDir,
		"MaxItemSide", cfg.MaxItemSide,
		"TemplateMaxAge", cfg.TemplateMaxAge,
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}
