package api

import (
	"net/http"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/auth"
	"ms-transactions/internal/events"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
	"ms-transactions/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
}

// Routes mounts under /api/events. Callers must already be authenticated.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(h.Logger, models.RoleOrganizer, models.RoleAdmin))
		r.Post("/", h.Create)
		r.Patch("/{id}", h.Edit)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/attendees", h.Attendees)
	})
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := auth.ActorFrom(r)
	if !ok {
		utils.WriteError(w, r, h.Logger, apperr.Unauthorized("authentication required"))
	}
	return actor, ok
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.EventService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Event retrieved", event)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req models.CreateEventRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}

	event, err := h.EventService.Create(r.Context(), actor, req)
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Event created", event)
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req models.EditEventRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}

	event, err := h.EventService.Edit(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Event updated", event)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.EventService.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Event deleted", nil)
}

func (h *Handler) Attendees(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	rows, err := h.EventService.Attendees(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Attendees retrieved", rows)
}
