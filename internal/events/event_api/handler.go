package event_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"evento/internal/auth"
	"evento/internal/events/service"
	"evento/internal/logger"
	"evento/internal/models"
	"evento/internal/sse"
	"evento/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	EventService  *service.EventService
	TicketService *service.TicketService
	JWT           *auth.JWTHandler
	Limiter       *UserRateLimiter
	Stream        *sse.InventoryEmitter
	Logger        *logger.Logger
}

func NewHandler(events *service.EventService, tickets *service.TicketService, jwt *auth.JWTHandler, limiter *UserRateLimiter, log *logger.Logger) *Handler {
	return &Handler{
		EventService:  events,
		TicketService: tickets,
		JWT:           jwt,
		Limiter:       limiter,
		Logger:        log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.BrowseEvents)
		r.Get("/{eventId}", h.GetEvent)
		r.Get("/{eventId}/tickets", h.ListTickets)
		if h.Stream != nil {
			r.Get("/{eventId}/stream", h.StreamInventory)
		}

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(h.JWT, h.Logger))

			r.Get("/{eventId}/tickets/mine", h.MyTickets)
			r.Get("/{eventId}/tickets/{seat}/pass", h.TicketPass)

			r.Group(func(r chi.Router) {
				if h.Limiter != nil {
					r.Use(h.Limiter.Middleware)
				}
				r.Post("/{eventId}/tickets/purchase", h.PurchaseTickets)
				r.Post("/{eventId}/tickets/cancel", h.CancelTickets)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleAdmin, h.Logger))
				r.Post("/", h.CreateEvent)
				r.Put("/{eventId}", h.UpdateEvent)
				r.Delete("/{eventId}", h.DeleteEvent)
				r.Post("/{eventId}/tickets", h.AddTickets)
			})
		})
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
}

func (h *Handler) BrowseEvents(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	h.Logger.Debug("API", fmt.Sprintf("BrowseEvents: name=%q", name))

	events, err := h.EventService.Browse(r.Context(), name)
	if err != nil {
		h.writeServiceError(w, "BrowseEvents", err)
		return
	}

	out := make([]EventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventDTO(ev))
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	ev, err := h.EventService.Get(r.Context(), eventID)
	if err != nil {
		h.writeServiceError(w, "GetEvent", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toEventDetailsDTO(ev))
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	ev, err := h.EventService.Get(r.Context(), eventID)
	if err != nil {
		h.writeServiceError(w, "ListTickets", err)
		return
	}
	if r.URL.Query().Get("available") == "true" {
		utils.WriteJSON(w, http.StatusOK, toTicketDTOs(ev.AvailableTickets()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, toTicketDTOs(ev.Tickets()))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.decode(w, r, "CreateEvent", &req) {
		return
	}

	ev, err := h.EventService.Create(r.Context(), service.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Tickets:     req.Tickets,
		Price:       req.Price,
	})
	if err != nil {
		h.writeServiceError(w, "CreateEvent", err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateEvent: created %s", ev.ID()))

	w.Header().Set("Location", "/events/"+ev.ID())
	utils.WriteJSON(w, http.StatusCreated, toEventDTO(ev))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	var req UpdateEventRequest
	if !h.decode(w, r, "UpdateEvent", &req) {
		return
	}

	_, err := h.EventService.Update(r.Context(), eventID, service.UpdateEventInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		h.writeServiceError(w, "UpdateEvent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	if err := h.EventService.Delete(r.Context(), eventID); err != nil {
		h.writeServiceError(w, "DeleteEvent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddTickets(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	var req AddTicketsRequest
	if !h.decode(w, r, "AddTickets", &req) {
		return
	}
	if req.Amount < 1 {
		utils.WriteError(w, http.StatusBadRequest, "AddTickets failed", errors.New("amount must be at least 1"))
		return
	}

	if _, err := h.EventService.AddTickets(r.Context(), eventID, req.Amount, req.Price); err != nil {
		h.writeServiceError(w, "AddTickets", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PurchaseTickets(w http.ResponseWriter, r *http.Request) {
	h.changeTickets(w, r, "PurchaseTickets", h.TicketService.Purchase)
}

func (h *Handler) CancelTickets(w http.ResponseWriter, r *http.Request) {
	h.changeTickets(w, r, "CancelTickets", h.TicketService.Cancel)
}

func (h *Handler) changeTickets(w http.ResponseWriter, r *http.Request, op string,
	change func(ctx context.Context, eventID string, user models.User, amount int) ([]models.Ticket, error)) {
	eventID := chi.URLParam(r, "eventId")
	var req TicketsAmountRequest
	if !h.decode(w, r, op, &req) {
		return
	}
	if req.Amount < 1 {
		utils.WriteError(w, http.StatusBadRequest, op+" failed", errors.New("amount must be at least 1"))
		return
	}
	user, _ := auth.UserFromContext(r.Context())

	if _, err := change(r.Context(), eventID, user, req.Amount); err != nil {
		h.writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MyTickets(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	user, _ := auth.UserFromContext(r.Context())

	tickets, err := h.TicketService.UserTickets(r.Context(), eventID, user)
	if err != nil {
		h.writeServiceError(w, "MyTickets", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toTicketDTOs(tickets))
}

func (h *Handler) TicketPass(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	seat, err := strconv.Atoi(chi.URLParam(r, "seat"))
	if err != nil || seat < 1 {
		utils.WriteError(w, http.StatusBadRequest, "TicketPass failed", errors.New("seat must be a positive integer"))
		return
	}
	user, _ := auth.UserFromContext(r.Context())

	img, err := h.TicketService.Pass(r.Context(), eventID, user, seat)
	if err != nil {
		h.writeServiceError(w, "TicketPass", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, op string, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("%s: invalid body: %v", op, err))
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}
