package handlers

import (
	"net/http"

	"cotemplate/internal/config"
	"cotemplate/internal/service"
)

// MiscHandler отдаёт публичные константы конфигурации для фронтенда.
type MiscHandler struct {
	Config *config.Config
}

func NewMiscHandler(cfg *config.Config) *MiscHandler {
	return &MiscHandler{Config: cfg}
}

// MaxTemplateAge — GET /api/misc/maxTemplateAge; возраст в миллисекундах.
func (h *MiscHandler) MaxTemplateAge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Config.TemplateMaxAge.Milliseconds())
}

// MaxTemplateSize — GET /api/misc/maxTemplateSize; максимум стороны холста, px.
func (h *MiscHandler) MaxTemplateSize(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, service.MaxTemplateDimension)
}
