package event_api

import (
	"errors"
	"fmt"
	"net/http"

	"evento/internal/events/service"
	"evento/internal/models"
	"evento/internal/utils"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrEventNotFound), errors.Is(err, service.ErrTicketNotOwned):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientInventory),
		errors.Is(err, models.ErrInsufficientPurchasedTickets),
		errors.Is(err, models.ErrConcurrentUpdate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps domain and persistence errors to responses.
// Internal errors are logged and never echoed to the client.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
		utils.WriteError(w, status, op+" failed", errors.New("internal server error"))
		return
	}
	h.Logger.Warn("API", fmt.Sprintf("%s: %v", op, err))
	utils.WriteError(w, status, op+" failed", err)
}
