package handlers

import (
	"net/http"

	"storefront-api/internal/models"
	"storefront-api/internal/services"

	"github.com/rs/zerolog"
)

// AdminHandler also serves the public feedback and newsletter forms, since
// their only readers are admins.
type AdminHandler struct {
	adminService *services.AdminService
	logger       zerolog.Logger
}

func NewAdminHandler(adminService *services.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

func (h *AdminHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.adminService.SubmitFeedback(r.Context(), &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Thanks for your feedback"})
}

func (h *AdminHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req models.SubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.adminService.Subscribe(r.Context(), &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Subscribed"})
}

func (h *AdminHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	feedback, err := h.adminService.ListFeedback(r.Context())
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, feedback)
}

func (h *AdminHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.adminService.DeleteFeedback(r.Context(), id); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Feedback deleted"})
}

func (h *AdminHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.adminService.ListSubscribers(r.Context())
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, subscribers)
}

func (h *AdminHandler) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.adminService.DeleteSubscriber(r.Context(), id); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Subscriber deleted"})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
