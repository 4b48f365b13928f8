package handlers

import (
	"net/http"

	"storefront-api/internal/middleware"
	"storefront-api/internal/models"
	"storefront-api/internal/services"

	"github.com/rs/zerolog"
)

type OrderHandler struct {
	orderService *services.OrderService
	logger       zerolog.Logger
}

func NewOrderHandler(orderService *services.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// Create accepts guests; a signed-in caller's order is linked to their account.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var caller *models.Identity
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		caller = &id
	}

	receipt, err := h.orderService.Create(r.Context(), caller, &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, receipt)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	orders, err := h.orderService.ListForUser(r.Context(), caller.UserID)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.List(r.Context(), models.OrderStatus(r.URL.Query().Get("status")))
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	order, err := h.orderService.Get(r.Context(), caller, id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var patch models.OrderPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.orderService.Update(r.Context(), caller, id, patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order updated"})
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.orderService.Delete(r.Context(), caller, id); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order deleted"})
}
