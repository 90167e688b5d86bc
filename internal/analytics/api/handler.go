package api

import (
	"errors"
	"fmt"
	"net/http"

	"evento/internal/analytics"
	"evento/internal/auth"
	"evento/internal/logger"
	"evento/internal/models"
	"evento/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *analytics.Service
	JWT     *auth.JWTHandler
	Logger  *logger.Logger
}

func NewHandler(service *analytics.Service, jwt *auth.JWTHandler, log *logger.Logger) *Handler {
	return &Handler{Service: service, JWT: jwt, Logger: log}
}

// RegisterRoutes mounts the admin-only sales reports under /analytics.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Use(auth.Authenticate(h.JWT, h.Logger))
		r.Use(auth.RequireRole(auth.RoleAdmin, h.Logger))

		r.Get("/events", h.GetOverview)
		r.Get("/events/{eventId}", h.GetEventSales)
	})
}

func (h *Handler) GetEventSales(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	sales, err := h.Service.GetEventSales(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			utils.WriteError(w, http.StatusNotFound, "GetEventSales failed", err)
			return
		}
		h.Logger.Error("ANALYTICS", fmt.Sprintf("GetEventSales %s: %v", eventID, err))
		utils.WriteError(w, http.StatusInternalServerError, "GetEventSales failed", errors.New("internal server error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, sales)
}

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Service.GetOverview(r.Context())
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("GetOverview: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "GetOverview failed", errors.New("internal server error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, overview)
}
