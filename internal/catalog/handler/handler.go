package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/catalog"
	"github.com/fekuna/omnipos-sales-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-sales-service/internal/httpx"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	uc     catalog.UseCase
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CatalogHandler) Routes(r chi.Router) {
	r.Get("/", h.Search)
	r.Get("/services/{id}/charges", h.ListCharges)
	r.Post("/printing-quote", h.QuotePrinting)
	r.Post("/reindex", h.Reindex)
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	filters := dto.SearchFilters{
		Query: r.URL.Query().Get("q"),
		Kind:  r.URL.Query().Get("kind"),
	}
	items, err := h.uc.Search(r.Context(), auth.FromContext(r.Context()), filters)
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to search catalog", err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *CatalogHandler) ListCharges(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	charges, err := h.uc.ListCharges(r.Context(), id)
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to list service charges", err)
		return
	}
	httpx.JSON(w, http.StatusOK, charges)
}

func (h *CatalogHandler) QuotePrinting(w http.ResponseWriter, r *http.Request) {
	var req dto.PrintingQuote
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	item, err := h.uc.QuotePrinting(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to quote printing", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *CatalogHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	n, err := h.uc.Reindex(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to reindex catalog", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"indexed": n})
}
