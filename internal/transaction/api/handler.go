package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/auth"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
	"ms-transactions/internal/pass"
	"ms-transactions/internal/sse"
	"ms-transactions/internal/transaction"
	"ms-transactions/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	TransactionService *transaction.TransactionService
	Emitter            *sse.TransactionEventEmitter
	Passes             *pass.Generator
	Logger             *logger.Logger
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// Routes mounts under /api/transactions. Callers must already be authenticated.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(h.Logger, models.RoleCustomer))
		r.Post("/", h.Create)
		r.Get("/user", h.ListForCustomer)
		r.Patch("/payment/{id}", h.SubmitPayment)
		r.Patch("/cancel/{id}", h.Cancel)
		r.Get("/{id}/pass", h.Pass)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(h.Logger, models.RoleOrganizer, models.RoleAdmin))
		r.Patch("/accept/{id}", h.Accept)
		r.Patch("/reject/{id}", h.Reject)
		r.Get("/event/{eventId}", h.ListForEvent)
		r.Get("/event/{eventId}/stream", h.StreamEvent)
		r.Get("/organizer/stream", h.StreamOrganizer)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(h.Logger, models.RoleAdmin))
		r.Patch("/admin-fee/{id}", h.MarkAdminFeePaid)
		r.Patch("/coupon-withdraw/{id}", h.WithdrawCoupon)
	})

	r.Get("/{id}", h.Get)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := auth.ActorFrom(r)
	if !ok {
		utils.WriteError(w, r, h.Logger, apperr.Unauthorized("authentication required"))
	}
	return actor, ok
}

// respond writes a single transaction or the service error.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, message string, view *models.TransactionView, err error) {
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, status, message, view)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req models.CreateTransactionRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}

	view, err := h.TransactionService.Create(r.Context(), actor, req)
	h.respond(w, r, http.StatusCreated, "Transaction created", view, err)
}

func (h *Handler) ListForCustomer(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	list, err := h.TransactionService.ListForCustomer(r.Context(), actor)
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Transactions retrieved", list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	view, err := h.TransactionService.Get(r.Context(), actor, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Transaction retrieved", view, err)
}

func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req models.SubmitPaymentRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}

	view, err := h.TransactionService.SubmitPayment(r.Context(), actor, chi.URLParam(r, "id"), req.PaymentProofURL)
	h.respond(w, r, http.StatusOK, "Payment proof submitted", view, err)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	view, err := h.TransactionService.Cancel(r.Context(), actor, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Transaction cancelled", view, err)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	view, err := h.TransactionService.Accept(r.Context(), actor, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Transaction accepted", view, err)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	// The reason is optional, so an empty body is accepted.
	var req RejectRequest
	if r.ContentLength != 0 {
		if err := utils.DecodeAndValidate(r, &req); err != nil {
			utils.WriteError(w, r, h.Logger, err)
			return
		}
	}

	view, err := h.TransactionService.Reject(r.Context(), actor, chi.URLParam(r, "id"), req.Reason)
	h.respond(w, r, http.StatusOK, "Transaction rejected", view, err)
}

func (h *Handler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	list, err := h.TransactionService.ListForEvent(r.Context(), actor, chi.URLParam(r, "eventId"))
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Transactions retrieved", list)
}

func (h *Handler) MarkAdminFeePaid(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	view, err := h.TransactionService.MarkAdminFeePaid(r.Context(), actor, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Admin fee marked as paid", view, err)
}

func (h *Handler) WithdrawCoupon(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	view, err := h.TransactionService.WithdrawCoupon(r.Context(), actor, chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, "Coupon discount withdrawn", view, err)
}

func (h *Handler) Pass(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	t, err := h.TransactionService.Completed(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}

	img, err := h.Passes.PNG(pass.ClaimsFor(t, time.Now()))
	if err != nil {
		utils.WriteError(w, r, h.Logger, fmt.Errorf("render pass for %s: %w", t.ID, err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=pass-%s.png", t.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

// ---------------- SSE ----------------

// StreamEvent streams status changes of one event to its organizer.
func (h *Handler) StreamEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	eventID := chi.URLParam(r, "eventId")
	if err := h.TransactionService.CheckEventAccess(r.Context(), actor, eventID); err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}

	h.stream(w, r, "event", eventID, h.Emitter.SubscribeToEvent(r.Context(), eventID))
}

// StreamOrganizer streams status changes of every event the caller organizes.
func (h *Handler) StreamOrganizer(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	h.stream(w, r, "organizer", actor.ID, h.Emitter.SubscribeToOrganizer(r.Context(), actor.ID))
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request, scope, id string, events <-chan models.TransactionStatusEvent) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.WriteError(w, r, h.Logger, fmt.Errorf("streaming unsupported by response writer"))
		return
	}

	setupSSEHeaders(w)
	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"%s\":\"%s\"}\n\n", scope, id)
	flusher.Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to %s stream %s", scope, id))

	ctx := r.Context()
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				h.Logger.Debug("SSE", fmt.Sprintf("Channel closed for %s %s", scope, id))
				return
			}

			jsonData, err := json.Marshal(evt)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize status event: %v", err))
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, jsonData)
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from %s stream %s", scope, id))
			return
		}
	}
}

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Accel-Buffering", "no")
}
