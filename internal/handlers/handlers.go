package handlers

import (
	"encoding/json"
	"net/http"

	"cotemplate/internal/apperrors"
	"cotemplate/internal/config"
	"cotemplate/internal/middleware"
	"cotemplate/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	templateService *service.TemplateService,
	teamService *service.TeamService,
	itemService *service.ItemService,
	authService *service.AuthService,
	logger *zap.SugaredLogger,
	cfg *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(cfg.AuthSecret))

	// Handlers
	templateHandler := NewTemplateHandler(templateService, teamService, logger)
	itemHandler := NewItemHandler(itemService, logger, cfg)
	authHandler := NewAuthHandler(authService, logger, cfg)
	miscHandler := NewMiscHandler(cfg)

	// Auth routes
	r.Post("/api/auth/login", authHandler.Login)
	r.Post("/api/auth/logout", authHandler.Logout)
	r.Get("/api/auth/id", authHandler.UserInfo)

	// Template routes
	r.Post("/api/templates", templateHandler.Create)
	r.Get("/api/templates", templateHandler.List)
	r.Get("/api/templates/{name}", templateHandler.Details)
	r.Put("/api/templates/{name}/size", templateHandler.UpdateSize)
	r.Put("/api/templates/{name}/teamCreatePolicy", templateHandler.UpdateTeamCreatePolicy)
	r.Delete("/api/templates/{name}", templateHandler.Delete)
	r.Get("/api/templates/{name}/teams", templateHandler.Teams)
	r.Post("/api/templates/{name}/teams/{team}", templateHandler.CreateTeam)

	// Item routes
	r.Get("/api/templates/{name}/items", itemHandler.List)
	r.Post("/api/templates/{name}/items", itemHandler.Add)
	r.Get("/api/templates/{name}/items/{id}/details", itemHandler.Details)
	r.Put("/api/templates/{name}/items/{id}/details", itemHandler.UpdateDetails)
	r.Get("/api/templates/{name}/items/{id}/image", itemHandler.Image)
	r.Put("/api/templates/{name}/items/{id}/image", itemHandler.UpdateImage)
	r.Delete("/api/templates/{name}/items/{id}", itemHandler.Delete)

	// Render
	r.Get("/api/templates/{name}/template", itemHandler.Render)

	// Misc
	r.Get("/api/misc/maxTemplateAge", miscHandler.MaxTemplateAge)
	r.Get("/api/misc/maxTemplateSize", miscHandler.MaxTemplateSize)

	return &Handler{Router: r}
}

// writeJSON сериализует ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError транслирует доменные ошибки в HTTP-статусы; всё прочее — 500.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	if appErr, ok := apperrors.As(err); ok {
		writeJSON(w, appErr.Status, map[string]string{"message": appErr.Message})
		return
	}
	logger.Errorw("internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
}
