package handlers

import (
	"net/http"

	"cotemplate/internal/auth"
	"cotemplate/internal/config"
	"cotemplate/internal/middleware"
	"cotemplate/internal/service"

	"go.uber.org/zap"
)

// AuthHandler обрабатывает вход/выход и инфо о текущем пользователе.
type AuthHandler struct {
	AuthService *service.AuthService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewAuthHandler(authService *service.AuthService, logger *zap.SugaredLogger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{AuthService: authService, Logger: logger, Config: cfg}
}

type UserInfo struct {
	Template string `json:"template"`
	Team     string `json:"team"`
	Role     string `json:"role"`
}

type UserInfoDTO struct {
	IsGuest bool      `json:"isGuest"`
	Info    *UserInfo `json:"info"`
}

func identityToDTO(ident auth.Identity) UserInfoDTO {
	if ident.IsAnonymous() {
		return UserInfoDTO{IsGuest: true}
	}
	return UserInfoDTO{
		IsGuest: false,
		Info: &UserInfo{
			Template: ident.Template(),
			Team:     ident.UserName(),
			Role:     string(ident.Role()),
		},
	}
}

// Login — POST /api/auth/login, форма: template, username, password.
// Успех ставит подписанную cookie; неверные данные — 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ident, err := h.AuthService.Login(r.Context(),
		r.PostFormValue("template"),
		r.PostFormValue("username"),
		r.PostFormValue("password"),
	)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	if err := middleware.SetLoginCookie(w, ident, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Login: unable to sign auth cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, identityToDTO(ident))
}

// Logout — POST /api/auth/logout; стирает cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearLoginCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// UserInfo — GET /api/auth/id; кто я (гость, команда, owner, админ).
func (h *AuthHandler) UserInfo(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, identityToDTO(ident))
}
