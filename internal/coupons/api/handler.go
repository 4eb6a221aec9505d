package api

import (
	"net/http"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/auth"
	"ms-transactions/internal/coupons"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
	"ms-transactions/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	CouponService *coupons.CouponService
	Logger        *logger.Logger
}

// Routes mounts under /api/coupons. Callers must already be authenticated.
func (h *Handler) Routes(r chi.Router) {
	r.Use(auth.RequireRole(h.Logger, models.RoleCustomer))
	r.Get("/user", h.ListValid)
	r.Post("/", h.Claim)
}

func (h *Handler) ListValid(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r)
	if !ok {
		utils.WriteError(w, r, h.Logger, apperr.Unauthorized("authentication required"))
		return
	}

	list, err := h.CouponService.ListValid(r.Context(), actor)
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Valid coupons retrieved", list)
}

func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r)
	if !ok {
		utils.WriteError(w, r, h.Logger, apperr.Unauthorized("authentication required"))
		return
	}

	var req models.ClaimCouponRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}

	pair, err := h.CouponService.ClaimReferral(r.Context(), actor, req.ReferralCode)
	if err != nil {
		utils.WriteError(w, r, h.Logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Referral code claimed", pair)
}
