package handlers

import (
	"net/http"

	"storefront-api/internal/models"
	"storefront-api/internal/services"

	"github.com/rs/zerolog"
)

type AccountHandler struct {
	accountService *services.AccountService
	logger         zerolog.Logger
}

func NewAccountHandler(accountService *services.AccountService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// ownedRequest resolves the caller and the {id} path variable.
func (h *AccountHandler) ownedRequest(w http.ResponseWriter, r *http.Request) (models.Identity, int, bool) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return caller, 0, false
	}
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return caller, 0, false
	}
	return caller, id, true
}

func (h *AccountHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	addresses, err := h.accountService.ListAddresses(r.Context(), caller.UserID)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, addresses)
}

func (h *AccountHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var req models.AddressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	address, err := h.accountService.CreateAddress(r.Context(), caller.UserID, &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, address)
}

func (h *AccountHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.ownedRequest(w, r)
	if !ok {
		return
	}

	var patch models.AddressPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.accountService.UpdateAddress(r.Context(), caller.UserID, id, patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Address updated"})
}

func (h *AccountHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.ownedRequest(w, r)
	if !ok {
		return
	}

	if err := h.accountService.DeleteAddress(r.Context(), caller.UserID, id); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Address deleted"})
}

func (h *AccountHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.ownedRequest(w, r)
	if !ok {
		return
	}

	if err := h.accountService.SetDefaultAddress(r.Context(), caller.UserID, id); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Default address updated"})
}

func (h *AccountHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	methods, err := h.accountService.ListPaymentMethods(r.Context(), caller.UserID)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, methods)
}

func (h *AccountHandler) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var req models.PaymentMethodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	method, err := h.accountService.CreatePaymentMethod(r.Context(), caller.UserID, &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, method)
}

func (h *AccountHandler) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.ownedRequest(w, r)
	if !ok {
		return
	}

	var patch models.PaymentMethodPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if err := h.accountService.UpdatePaymentMethod(r.Context(), caller.UserID, id, patch); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Payment method updated"})
}

func (h *AccountHandler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.ownedRequest(w, r)
	if !ok {
		return
	}

	if err := h.accountService.DeletePaymentMethod(r.Context(), caller.UserID, id); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Payment method deleted"})
}

func (h *AccountHandler) SetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.ownedRequest(w, r)
	if !ok {
		return
	}

	if err := h.accountService.SetDefaultPaymentMethod(r.Context(), caller.UserID, id); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Default payment method updated"})
}
