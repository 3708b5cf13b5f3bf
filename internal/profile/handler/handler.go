package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-sales-service/internal/httpx"
	"github.com/fekuna/omnipos-sales-service/internal/profile"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ProfileHandler struct {
	uc     profile.UseCase
	logger logger.ZapLogger
}

func NewProfileHandler(uc profile.UseCase, log logger.ZapLogger) *ProfileHandler {
	return &ProfileHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProfileHandler) Routes(r chi.Router) {
	r.Get("/", h.SearchMembers)
	r.Get("/{id}", h.GetMember)
}

func (h *ProfileHandler) SearchMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.uc.SearchMembers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to search members", err)
		return
	}
	httpx.JSON(w, http.StatusOK, members)
}

func (h *ProfileHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	m, err := h.uc.GetMember(r.Context(), id)
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to get member", err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}
