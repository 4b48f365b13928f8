package handlers

import (
	"net/http"

	"storefront-api/internal/models"
	"storefront-api/internal/services"

	"github.com/rs/zerolog"
)

// UserHandler serves the caller's own profile and the admin user list.
type UserHandler struct {
	userService  *services.UserService
	adminService *services.AdminService
	logger       zerolog.Logger
}

func NewUserHandler(userService *services.UserService, adminService *services.AdminService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService:  userService,
		adminService: adminService,
		logger:       logger,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
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

	respondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var patch models.ProfilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), caller.UserID, patch)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var req models.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.userService.ChangePassword(r.Context(), caller.UserID, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	userID, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), caller, userID); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
