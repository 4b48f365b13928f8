package handlers

import (
	"net/http"

	"storefront-api/internal/models"
	"storefront-api/internal/services"

	"github.com/rs/zerolog"
)

type CartHandler struct {
	cartService *services.CartService
	logger      zerolog.Logger
}

func NewCartHandler(cartService *services.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	cart, err := h.cartService.List(r.Context(), caller.UserID)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, cart)
}

// AddItem answers with the whole cart so the client can re-render totals.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var req models.AddCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.cartService.AddItem(r.Context(), caller.UserID, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	cart, err := h.cartService.List(r.Context(), caller.UserID)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var req models.UpdateCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.cartService.UpdateItem(r.Context(), caller.UserID, itemID, req.Quantity); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Cart item updated"})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.cartService.RemoveItem(r.Context(), caller.UserID, itemID); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Cart item removed"})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.cartService.Clear(r.Context(), caller.UserID); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}
