package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/finance"
	"github.com/fekuna/omnipos-sales-service/internal/finance/dto"
	"github.com/fekuna/omnipos-sales-service/internal/httpx"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxAttachmentBytes = 10 << 20

type FinanceHandler struct {
	uc     finance.UseCase
	logger logger.ZapLogger
}

func NewFinanceHandler(uc finance.UseCase, log logger.ZapLogger) *FinanceHandler {
	return &FinanceHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *FinanceHandler) Routes(r chi.Router) {
	r.Get("/reports", h.ListReports)
	r.Get("/reports/{id}/items", h.ListItems)
	r.Put("/reports/{id}/status", h.UpdateStatus)
	r.Post("/attachments", h.UploadAttachment)
}

func (h *FinanceHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := dto.ReportFilters{
		Year:    q.Get("year"),
		Month:   q.Get("month"),
		Search:  q.Get("search"),
		Status:  q.Get("status"),
		Phase:   q.Get("phase"),
		Region:  q.Get("region"),
		Page:    httpx.IntQuery(r, "page", 1),
		PerPage: httpx.IntQuery(r, "per_page", 10),
	}
	ids, err := parseIDs(q.Get("site_ids"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	filters.SiteIDs = ids

	reports, total, err := h.uc.ListReports(r.Context(), auth.FromContext(r.Context()), filters)
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to list finance reports", err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Page{Data: reports, Total: total, Page: filters.Page})
}

func (h *FinanceHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	page := httpx.IntQuery(r, "page", 1)
	items, total, err := h.uc.ListItems(r.Context(), auth.FromContext(r.Context()), id, page, httpx.IntQuery(r, "per_page", 10))
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to list finance report items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Page{Data: items, Total: total, Page: page})
}

func (h *FinanceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var input dto.StatusUpdate
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, r, err)
		return
	}
	input.ReportID = id

	report, err := h.uc.UpdateStatus(r.Context(), auth.FromContext(r.Context()), input)
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to update finance report status", err)
		return
	}
	h.logger.Info("finance report status updated", zap.Int64("report_id", id), zap.String("status", input.Status))
	httpx.JSON(w, http.StatusOK, report)
}

func (h *FinanceHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentBytes)
	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		httpx.Error(w, r, httpx.ErrInvalidRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Error(w, r, httpx.ErrInvalidRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := h.uc.UploadAttachment(r.Context(), header.Filename, contentType, file)
	if err != nil {
		httpx.Fail(h.logger, w, r, "failed to upload finance attachment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"url": url})
}

func parseIDs(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, httpx.ErrInvalidRequest
		}
		ids = append(ids, id)
	}
	return ids, nil
}
