package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"cotemplate/internal/apperrors"
	"cotemplate/internal/config"
	"cotemplate/internal/middleware"
	"cotemplate/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ItemHandler обрабатывает items шаблона и рендер композиции.
type ItemHandler struct {
	ItemService *service.ItemService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewItemHandler(itemService *service.ItemService, logger *zap.SugaredLogger, cfg *config.Config) *ItemHandler {
	return &ItemHandler{ItemService: itemService, Logger: logger, Config: cfg}
}

type ItemDTO struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Z           int    `json:"z"`
}

// ItemUpdateRequest — частичное обновление: отсутствующие поля не меняются.
type ItemUpdateRequest struct {
	Description *string `json:"description,omitempty"`
	X           *int    `json:"x,omitempty"`
	Y           *int    `json:"y,omitempty"`
	Z           *int    `json:"z,omitempty"`
}

func itemToDTO(d *service.ItemDetails) ItemDTO {
	return ItemDTO{
		ID:          strconv.FormatUint(d.ImgID, 10),
		Description: d.Description,
		Owner:       d.Owner,
		Width:       d.Width,
		Height:      d.Height,
		X:           d.X,
		Y:           d.Y,
		Z:           d.Z,
	}
}

// parseItemID разбирает id из пути; id всегда беззнаковое десятичное число.
func parseItemID(idStr string) (uint64, error) {
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, apperrors.InvalidParam("id must be a positive number")
	}
	return id, nil
}

// List — GET /api/templates/{name}/items; публичный.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.ItemService.List(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	dto := make([]ItemDTO, len(items))
	for i := range items {
		dto[i] = itemToDTO(&items[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": dto})
}

// Add — POST /api/templates/{name}/items, multipart/form-data:
// description, x, y, z и файл image.
func (h *ItemHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.Logger.Warnw("Add item: invalid multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	x, errX := strconv.Atoi(r.FormValue("x"))
	y, errY := strconv.Atoi(r.FormValue("y"))
	z, errZ := strconv.Atoi(r.FormValue("z"))
	if errX != nil || errY != nil || errZ != nil {
		writeError(w, h.Logger, apperrors.InvalidParam("x, y and z must be integers"))
		return
	}

	img, err := readImageFile(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	ident := middleware.IdentityFromContext(r.Context())
	details, err := h.ItemService.Add(r.Context(), ident, chi.URLParam(r, "name"), r.FormValue("description"), x, y, z, img)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemToDTO(details))
}

// Details — GET /api/templates/{name}/items/{id}/details; публичный.
func (h *ItemHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	details, err := h.ItemService.Details(r.Context(), chi.URLParam(r, "name"), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToDTO(details))
}

// UpdateDetails — PUT /api/templates/{name}/items/{id}/details.
func (h *ItemHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	var req ItemUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ident := middleware.IdentityFromContext(r.Context())
	details, err := h.ItemService.UpdateDetails(r.Context(), ident, chi.URLParam(r, "name"), id, service.ItemUpdate{
		Description: req.Description,
		X:           req.X,
		Y:           req.Y,
		Z:           req.Z,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToDTO(details))
}

// Image — GET /api/templates/{name}/items/{id}/image; отдаёт исходные байты.
func (h *ItemHandler) Image(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	data, err := h.ItemService.Image(r.Context(), chi.URLParam(r, "name"), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// UpdateImage — PUT /api/templates/{name}/items/{id}/image, multipart.
func (h *ItemHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.Logger.Warnw("Update item image: invalid multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	img, err := readImageFile(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	ident := middleware.IdentityFromContext(r.Context())
	details, err := h.ItemService.UpdateImage(r.Context(), ident, chi.URLParam(r, "name"), id, img)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToDTO(details))
}

// Delete — DELETE /api/templates/{name}/items/{id}.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	ident := middleware.IdentityFromContext(r.Context())
	if err := h.ItemService.Delete(r.Context(), ident, chi.URLParam(r, "name"), id); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Render — GET /api/templates/{name}/template?images=all|id,id,...
// Пустой параметр images трактуется как пустой набор (прозрачный холст).
func (h *ItemHandler) Render(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	images := r.URL.Query().Get("images")

	var data []byte
	var err error
	if images == "all" {
		data, err = h.ItemService.RenderAll(r.Context(), name)
	} else {
		var ids []uint64
		if images != "" {
			for _, part := range strings.Split(images, ",") {
				id, perr := parseItemID(part)
				if perr != nil {
					writeError(w, h.Logger, perr)
					return
				}
				ids = append(ids, id)
			}
		}
		data, err = h.ItemService.Render(r.Context(), name, ids)
	}
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// readImageFile читает файл image из multipart-формы.
func readImageFile(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, apperrors.InvalidParam("missing image file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.InvalidParam("failed to read image file")
	}
	return data, nil
}
