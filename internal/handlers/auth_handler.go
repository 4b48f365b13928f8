package handlers

import (
	"net/http"
	"time"

	"storefront-api/internal/metrics"
	"storefront-api/internal/models"
	"storefront-api/internal/services"

	"github.com/rs/zerolog"
)

type CookieSettings struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	userService *services.UserService
	authService *services.AuthService
	cookie      CookieSettings
	logger      zerolog.Logger
}

func NewAuthHandler(userService *services.UserService, authService *services.AuthService, cookie CookieSettings, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	h.startSession(w, r, user, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), &req)
	if err != nil {
		metrics.RecordLogin(false)
		respondWithError(w, r, h.logger, err)
		return
	}

	metrics.RecordLogin(true)
	h.startSession(w, r, user, http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), caller.UserID)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.AuthResponse{User: user})
}

// startSession issues a token, sets it as an HttpOnly cookie and also
// returns it in the body for clients that send a Bearer header instead.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, expiresAt, err := h.authService.IssueToken(user.Identity())
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(h.authService.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	respondWithJSON(w, status, models.AuthResponse{
		User:  user,
		Token: token,
	})
}
