package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/httpx"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Routes(r chi.Router) {
	r.Get("/movements", h.ListMovements)
	r.Get("/{id}", h.GetInventory)
	r.Post("/{id}/adjust", h.AdjustInventory)
}

func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	inv, err := h.uc.GetInventory(r.Context(), auth.FromContext(r.Context()), id)
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to get inventory", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InventoryHandler) AdjustInventory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var input dto.AdjustInventoryInput
	if err := httpx.Decode(r, &input); err != nil || input.QuantityChange == 0 {
		httpx.Error(w, r, httpx.ErrInvalidRequest)
		return
	}
	s := auth.FromContext(r.Context())
	input.ItemID = id
	input.UserID = s.UserID

	inv, err := h.uc.AdjustInventory(r.Context(), s, &input)
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to adjust inventory", err)
		return
	}
	h.logger.Info("inventory adjusted", zap.Int64("item_id", id), zap.Int("change", input.QuantityChange))
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.URL.Query().Get("item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		httpx.Error(w, r, httpx.ErrInvalidRequest)
		return
	}
	// the item lookup applies the caller's site scope
	if _, err := h.uc.GetInventory(r.Context(), auth.FromContext(r.Context()), itemID); err != nil {
		httpx.Fail(h.logger, w, r, "failed to get inventory", err)
		return
	}

	filters := &dto.MovementFilters{
		ItemID:       itemID,
		MovementType: r.URL.Query().Get("type"),
		Page:         httpx.IntQuery(r, "page", 1),
		PageSize:     httpx.IntQuery(r, "page_size", 20),
	}
	movements, total, err := h.uc.ListMovements(r.Context(), filters)
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to list movements", err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Page{Data: movements, Total: total, Page: filters.Page})
}
