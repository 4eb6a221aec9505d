package api

import (
	"net/http"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/auth"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
	"ms-transactions/internal/utils"
	"ms-transactions/internal/vouchers"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	VoucherService *vouchers.VoucherService
	Logger         *logger.Logger
}

// Routes mounts under /api/vouchers. Callers must already be authenticated.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/validate", h.Validate)
	r.Get("/{eventId}", h.ListByEvent)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(h.Logger, models.RoleOrganizer, models.RoleAdmin))
		r.Post("/", h.Create)
		r.Patch("/{id}", h.Toggle)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := auth.ActorFrom(r)
	if !ok {
		utils.WriteError(w, r, h.Logger, apperr.Unauthorized("authentication required"))
	}
	return actor, ok
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	eventID := r.URL.Query().Get("event_id")
	if code == "" || eventID == "" {
		utils.WriteError(w, r, h.Logger, apperr.Validation("Invalid input", map[string]string{
			"code":     "is required",
			"event_id": "is required",
		}))
		return
	}

	voucher, err := h.VoucherService.Validate(r.Context(), code, eventID)
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Voucher is valid", voucher)
}

func (h *Handler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	list, err := h.VoucherService.ListByEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Vouchers retrieved", list)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req models.CreateVoucherRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}

	voucher, err := h.VoucherService.Create(r.Context(), actor, req)
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Voucher created", voucher)
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req models.ToggleVoucherRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}

	voucher, err := h.VoucherService.SetActive(r.Context(), actor, chi.URLParam(r, "id"), *req.IsActive)
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Voucher updated", voucher)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.VoucherService.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Voucher deleted", nil)
}
