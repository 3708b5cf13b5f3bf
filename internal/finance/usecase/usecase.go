package usecase

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/finance"
	"github.com/fekuna/omnipos-sales-service/internal/finance/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/storage"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultPerPage = 10

type financeUseCase struct {
	repo   finance.Repository
	tx     postgres.TxManager
	blobs  storage.BlobStore
	logger logger.ZapLogger
	now    func() time.Time
}

func NewFinanceUseCase(repo finance.Repository, tx postgres.TxManager, blobs storage.BlobStore, log logger.ZapLogger) finance.UseCase {
	return &financeUseCase{
		repo:   repo,
		tx:     tx,
		blobs:  blobs,
		logger: log,
		now:    time.Now,
	}
}

func (uc *financeUseCase) ResolveOpenReport(ctx context.Context, ext postgres.Executor, siteID int64, month, year string) (*model.FinanceReport, error) {
	report, err := uc.repo.FindReport(ctx, ext, siteID, month, year)
	if err != nil {
		return nil, fmt.Errorf("find finance report: %w", err)
	}
	if report == nil {
		return nil, &finance.LedgerError{Month: month, Year: year, Err: finance.ErrLedgerNotFound}
	}
	if report.Status == nil || *report.Status != model.ReportStatusEditing {
		return nil, &finance.LedgerError{Month: month, Year: year, Err: finance.ErrLedgerClosed}
	}
	return report, nil
}

func (uc *financeUseCase) RecordSale(ctx context.Context, ext postgres.Executor, reportID int64, total decimal.Decimal) (*model.FinanceReportItem, error) {
	item := &model.FinanceReportItem{
		FinanceReportID: reportID,
		Description:     finance.SaleDescription,
		Debit:           decimal.NewNullDecimal(total),
		Credit:          decimal.NewNullDecimal(decimal.Zero),
		Balance:         total,
	}
	if err := uc.repo.InsertItem(ctx, ext, item); err != nil {
		return nil, fmt.Errorf("insert ledger item: %w", err)
	}
	return item, nil
}

func (uc *financeUseCase) ListReports(ctx context.Context, s auth.Session, f dto.ReportFilters) ([]model.FinanceReport, int, error) {
	q := &dto.ReportQuery{
		Year:    f.Year,
		Month:   f.Month,
		Search:  strings.TrimSpace(f.Search),
		Page:    f.Page,
		PerPage: f.PerPage,
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultPerPage
	}

	scope, ok := scopeOf(s)
	if !ok {
		return []model.FinanceReport{}, 0, nil
	}
	q.SiteID, q.OrganizationID = scope.SiteID, scope.OrganizationID
	if scope.SiteID == nil {
		q.SiteIDs = f.SiteIDs
	}

	// names the lookups do not know cannot match any report
	if f.Status != "" {
		id, err := uc.repo.FindStatusID(ctx, nil, f.Status)
		if err != nil {
			return nil, 0, err
		}
		if id == nil {
			return []model.FinanceReport{}, 0, nil
		}
		q.StatusID = id
	}
	if f.Phase != "" {
		id, err := uc.repo.FindPhaseID(ctx, f.Phase)
		if err != nil {
			return nil, 0, err
		}
		if id == nil {
			return []model.FinanceReport{}, 0, nil
		}
		q.PhaseID = id
	}
	if f.Region != "" {
		id, err := uc.repo.FindRegionID(ctx, f.Region)
		if err != nil {
			return nil, 0, err
		}
		if id == nil {
			return []model.FinanceReport{}, 0, nil
		}
		q.RegionID = id
	}

	return uc.repo.ListReports(ctx, q)
}

// scopeOf returns the reports s may see. ok is false when it may see none.
func scopeOf(s auth.Session) (dto.ReportScope, bool) {
	switch {
	case s.IsSuperAdmin():
		return dto.ReportScope{}, true
	case s.IsTPUser():
		return dto.ReportScope{OrganizationID: s.OrganizationID}, true
	case s.SiteProfileID != nil:
		return dto.ReportScope{SiteID: s.SiteProfileID}, true
	}
	return dto.ReportScope{}, false
}

func (uc *financeUseCase) ListItems(ctx context.Context, s auth.Session, reportID int64, page, perPage int) ([]model.FinanceReportItem, int, error) {
	scope, ok := scopeOf(s)
	if !ok {
		return nil, 0, finance.ErrReportNotFound
	}
	report, err := uc.repo.FindReportByID(ctx, nil, reportID, scope)
	if err != nil {
		return nil, 0, err
	}
	if report == nil {
		return nil, 0, finance.ErrReportNotFound
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return uc.repo.ListItems(ctx, reportID, page, perPage)
}

func (uc *financeUseCase) UpdateStatus(ctx context.Context, s auth.Session, input dto.StatusUpdate) (*model.FinanceReport, error) {
	scope, ok := scopeOf(s)
	if !ok {
		return nil, finance.ErrReportNotFound
	}
	var updated *model.FinanceReport

	err := uc.tx.WithTx(ctx, func(tx postgres.Executor) error {
		report, err := uc.repo.FindReportByID(ctx, tx, input.ReportID, scope)
		if err != nil {
			return err
		}
		if report == nil {
			return finance.ErrReportNotFound
		}

		statusID, err := uc.repo.FindStatusID(ctx, tx, input.Status)
		if err != nil {
			return err
		}
		if statusID == nil {
			return fmt.Errorf("%w: %q", finance.ErrUnknownStatus, input.Status)
		}
		if err := uc.repo.UpdateReportStatus(ctx, tx, report.ID, *statusID); err != nil {
			return fmt.Errorf("update report status: %w", err)
		}
		report.StatusID = statusID
		status := input.Status
		report.Status = &status
		updated = report

		if input.Status != model.ReportStatusSubmitted || input.BalanceForward == nil {
			return nil
		}
		return uc.rollOver(ctx, tx, report, *input.BalanceForward)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// rollOver opens the next period for the site, carrying the submitted balance.
func (uc *financeUseCase) rollOver(ctx context.Context, tx postgres.Executor, report *model.FinanceReport, balance decimal.Decimal) error {
	month, year, err := finance.NextPeriod(report.Month, report.Year)
	if err != nil {
		return fmt.Errorf("next period of %s %s: %w", report.Month, report.Year, err)
	}

	editingID, err := uc.repo.FindStatusID(ctx, tx, model.ReportStatusEditing)
	if err != nil {
		return err
	}
	if editingID == nil {
		return fmt.Errorf("%w: %q", finance.ErrUnknownStatus, model.ReportStatusEditing)
	}

	created, err := uc.repo.InsertReport(ctx, tx, &model.FinanceReport{
		SiteID:         report.SiteID,
		Month:          month,
		Year:           year,
		StatusID:       editingID,
		BalanceForward: balance,
		CreatedAt:      uc.now(),
	})
	if err != nil {
		return fmt.Errorf("create next report: %w", err)
	}
	if !created {
		uc.logger.Info("next finance report already exists",
			zap.Int64("site_id", report.SiteID),
			zap.String("month", month),
			zap.String("year", year),
		)
	}
	return nil
}

func (uc *financeUseCase) UploadAttachment(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "attachment"
	}
	key := fmt.Sprintf("%d-%s-%s", uc.now().UnixMilli(), name, uuid.New().String())

	u, err := uc.blobs.Put(ctx, finance.AttachmentBucket, key, contentType, body)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return u, nil
}
