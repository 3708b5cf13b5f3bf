package finance

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/finance/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/shopspring/decimal"
)

var (
	ErrLedgerNotFound = errors.New("finance report not found for period")
	ErrLedgerClosed   = errors.New("finance report is not open for editing")
	ErrReportNotFound = errors.New("finance report not found")
	ErrUnknownStatus  = errors.New("unknown finance report status")
	ErrInvalidMonth   = errors.New("invalid month name")
)

// LedgerError carries the period a sale tried to post into.
type LedgerError struct {
	Month string
	Year  string
	Err   error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Err, e.Month, e.Year)
}

func (e *LedgerError) Unwrap() error { return e.Err }

const (
	SaleDescription  = "POS Sales"
	AttachmentBucket = "finance-report"
)

type UseCase interface {
	// ResolveOpenReport locks the site's report for the period; it must be in editing status.
	ResolveOpenReport(ctx context.Context, ext postgres.Executor, siteID int64, month, year string) (*model.FinanceReport, error)
	RecordSale(ctx context.Context, ext postgres.Executor, reportID int64, total decimal.Decimal) (*model.FinanceReportItem, error)

	ListReports(ctx context.Context, s auth.Session, filters dto.ReportFilters) ([]model.FinanceReport, int, error)
	ListItems(ctx context.Context, s auth.Session, reportID int64, page, perPage int) ([]model.FinanceReportItem, int, error)
	UpdateStatus(ctx context.Context, s auth.Session, input dto.StatusUpdate) (*model.FinanceReport, error)
	UploadAttachment(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}
