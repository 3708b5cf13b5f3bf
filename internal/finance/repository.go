package finance

import (
	"context"

	"github.com/fekuna/omnipos-sales-service/internal/finance/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
)

type Repository interface {
	// Reports
	FindReport(ctx context.Context, ext postgres.Executor, siteID int64, month, year string) (*model.FinanceReport, error)
	// FindReportByID locks the row when ext is given; nil reads through the pool.
	FindReportByID(ctx context.Context, ext postgres.Executor, id int64, scope dto.ReportScope) (*model.FinanceReport, error)
	ListReports(ctx context.Context, query *dto.ReportQuery) ([]model.FinanceReport, int, error)
	UpdateReportStatus(ctx context.Context, ext postgres.Executor, reportID, statusID int64) error
	// InsertReport returns false when the site already has a report for that period.
	InsertReport(ctx context.Context, ext postgres.Executor, report *model.FinanceReport) (bool, error)

	// Ledger items
	InsertItem(ctx context.Context, ext postgres.Executor, item *model.FinanceReportItem) error
	ListItems(ctx context.Context, reportID int64, page, perPage int) ([]model.FinanceReportItem, int, error)

	// Lookups by display name; nil when unknown
	FindStatusID(ctx context.Context, ext postgres.Executor, status string) (*int64, error)
	FindPhaseID(ctx context.Context, name string) (*int64, error)
	FindRegionID(ctx context.Context, eng string) (*int64, error)
}
