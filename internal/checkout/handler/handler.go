package handler

import (
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/checkout"
	"github.com/fekuna/omnipos-sales-service/internal/checkout/dto"
	"github.com/fekuna/omnipos-sales-service/internal/httpx"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const IdempotencyHeader = "Idempotency-Key"

type CheckoutHandler struct {
	uc     checkout.UseCase
	logger logger.ZapLogger
}

func NewCheckoutHandler(uc checkout.UseCase, log logger.ZapLogger) *CheckoutHandler {
	return &CheckoutHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CheckoutHandler) Routes(r chi.Router) {
	r.Post("/cart/quote", h.Quote)
	r.Post("/checkout", h.Checkout)
}

func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req dto.QuoteRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	q, err := h.uc.Quote(r.Context(), auth.FromContext(r.Context()), req.Lines)
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to quote cart", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))

	rc, err := h.uc.Checkout(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		httpx.Fail(h.logger, w, r, "checkout failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rc)
}
