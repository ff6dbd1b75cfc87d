package handlers

import (
	"encoding/json"
	"net/http"

	"cotemplate/internal/middleware"
	"cotemplate/internal/model"
	"cotemplate/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TemplateHandler обрабатывает операции над шаблонами и командами.
type TemplateHandler struct {
	TemplateService *service.TemplateService
	TeamService     *service.TeamService
	Logger          *zap.SugaredLogger
}

func NewTemplateHandler(templateService *service.TemplateService, teamService *service.TeamService, logger *zap.SugaredLogger) *TemplateHandler {
	return &TemplateHandler{TemplateService: templateService, TeamService: teamService, Logger: logger}
}

type TemplateCreateRequest struct {
	Name             string `json:"name"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	TeamCreatePolicy string `json:"teamCreatePolicy"`
}

type TemplateCreatedDTO struct {
	UniqueName    string `json:"uniqueName"`
	OwnerUsername string `json:"ownerUsername"`
	OwnerPassword string `json:"ownerPassword"`
}

// TemplateDetailsDTO — снимок шаблона; createdAt в миллисекундах эпохи,
// templateCount — число items (имя поля историческое, часть wire-формата).
type TemplateDetailsDTO struct {
	Name             string `json:"name"`
	CreatedAt        int64  `json:"createdAt"`
	TeamCreatePolicy string `json:"teamCreatePolicy"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	TemplateCount    int64  `json:"templateCount"`
}

type TemplateUpdateSizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type TemplateUpdatePolicyRequest struct {
	Policy string `json:"policy"`
}

type TeamCreatedDTO struct {
	Template string `json:"template"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func detailsToDTO(d *service.TemplateDetails) TemplateDetailsDTO {
	return TemplateDetailsDTO{
		Name:             d.Name,
		CreatedAt:        d.CreationDate.UnixMilli(),
		TeamCreatePolicy: string(d.TeamCreatePolicy),
		Width:            d.Width,
		Height:           d.Height,
		TemplateCount:    d.ItemCount,
	}
}

// Create — POST /api/templates; доступен всем, включая гостей.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TemplateCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Create template: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	created, err := h.TemplateService.Create(r.Context(), req.Name, req.Width, req.Height, model.TeamCreatePolicy(req.TeamCreatePolicy))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, TemplateCreatedDTO{
		UniqueName:    created.UniqueName,
		OwnerUsername: created.OwnerName,
		OwnerPassword: created.OwnerPassword,
	})
}

// List — GET /api/templates; только администратор.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())

	templates, err := h.TemplateService.List(r.Context(), ident)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	dto := make(map[string]TemplateDetailsDTO, len(templates))
	for name, details := range templates {
		dto[name] = detailsToDTO(details)
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": dto})
}

// Details — GET /api/templates/{name}; публичный.
func (h *TemplateHandler) Details(w http.ResponseWriter, r *http.Request) {
	details, err := h.TemplateService.Details(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detailsToDTO(details))
}

// UpdateSize — PUT /api/templates/{name}/size; только owner/админ.
func (h *TemplateHandler) UpdateSize(w http.ResponseWriter, r *http.Request) {
	var req TemplateUpdateSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ident := middleware.IdentityFromContext(r.Context())
	details, err := h.TemplateService.UpdateSize(r.Context(), ident, chi.URLParam(r, "name"), req.Width, req.Height)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detailsToDTO(details))
}

// UpdateTeamCreatePolicy — PUT /api/templates/{name}/teamCreatePolicy.
func (h *TemplateHandler) UpdateTeamCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req TemplateUpdatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ident := middleware.IdentityFromContext(r.Context())
	details, err := h.TemplateService.UpdateTeamCreatePolicy(r.Context(), ident, chi.URLParam(r, "name"), model.TeamCreatePolicy(req.Policy))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detailsToDTO(details))
}

// Delete — DELETE /api/templates/{name}; только администратор.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if err := h.TemplateService.Delete(r.Context(), ident, chi.URLParam(r, "name")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Teams — GET /api/templates/{name}/teams; публичный.
func (h *TemplateHandler) Teams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.TeamService.Teams(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"teams": teams})
}

// CreateTeam — POST /api/templates/{name}/teams/{team}.
func (h *TemplateHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	created, err := h.TeamService.Create(r.Context(), ident, chi.URLParam(r, "name"), chi.URLParam(r, "team"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, TeamCreatedDTO{
		Template: created.Template,
		Name:     created.Name,
		Password: created.Password,
	})
}
