package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-sales-service/internal/finance/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const reportSelect = `
        SELECT r.id, r.site_id, r.month, r.year, r.status_id, r.balance_forward, r.created_at,
               st.status, sp.sitename, sp.region_id, sp.phase_id`

const reportFrom = `
        FROM nd_finance_report r
        JOIN nd_site_profile sp ON sp.id = r.site_id
        LEFT JOIN nd_finance_report_status st ON st.id = r.status_id`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindReport(ctx context.Context, ext postgres.Executor, siteID int64, month, year string) (*model.FinanceReport, error) {
	var report model.FinanceReport
	query := reportSelect + reportFrom + `
        WHERE r.site_id = $1 AND r.month = $2 AND r.year = $3
        LIMIT 1
        FOR UPDATE OF r`
	err := ext.GetContext(ctx, &report, query, siteID, month, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *PGRepository) FindReportByID(ctx context.Context, ext postgres.Executor, id int64, scope dto.ReportScope) (*model.FinanceReport, error) {
	var report model.FinanceReport
	query := reportSelect + reportFrom + `
        WHERE r.id = $1
          AND ($2::bigint IS NULL OR r.site_id = $2)
          AND ($3::bigint IS NULL OR sp.dusp_tp_id = $3)`
	if ext == nil {
		ext = r.DB
	} else {
		query += " FOR UPDATE OF r"
	}
	err := ext.GetContext(ctx, &report, query, id, scope.SiteID, scope.OrganizationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *PGRepository) ListReports(ctx context.Context, q *dto.ReportQuery) ([]model.FinanceReport, int, error) {
	reports := []model.FinanceReport{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if q.Month != "" {
		conditions = append(conditions, "r.month = :month")
		args["month"] = q.Month
	}
	if q.Year != "" {
		conditions = append(conditions, "r.year = :year")
		args["year"] = q.Year
	}
	if q.Search != "" {
		conditions = append(conditions, "sp.sitename ILIKE :search")
		args["search"] = "%" + q.Search + "%"
	}
	if q.StatusID != nil {
		conditions = append(conditions, "r.status_id = :status_id")
		args["status_id"] = *q.StatusID
	}
	switch {
	case q.RegionID != nil && q.PhaseID != nil:
		conditions = append(conditions, "(sp.region_id = :region_id OR sp.phase_id = :phase_id)")
		args["region_id"] = *q.RegionID
		args["phase_id"] = *q.PhaseID
	case q.RegionID != nil:
		conditions = append(conditions, "sp.region_id = :region_id")
		args["region_id"] = *q.RegionID
	case q.PhaseID != nil:
		conditions = append(conditions, "sp.phase_id = :phase_id")
		args["phase_id"] = *q.PhaseID
	}
	if len(q.SiteIDs) > 0 {
		conditions = append(conditions, "r.site_id IN (:site_ids)")
		args["site_ids"] = q.SiteIDs
	}
	if q.SiteID != nil {
		conditions = append(conditions, "r.site_id = :site_id")
		args["site_id"] = *q.SiteID
	}
	if q.OrganizationID != nil {
		conditions = append(conditions, "sp.dusp_tp_id = :organization_id")
		args["organization_id"] = *q.OrganizationID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	if err := r.getNamed(ctx, &count, "SELECT count(*)"+reportFrom+whereClause, args); err != nil {
		return nil, 0, err
	}

	query := reportSelect + `,
               (SELECT count(*) FROM nd_finance_report_item it WHERE it.finance_report_id = r.id) AS item_count` +
		reportFrom + whereClause + " ORDER BY r.year DESC, r.created_at DESC"
	if q.PerPage > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.PerPage, (q.Page-1)*q.PerPage)
	}

	if err := r.selectNamed(ctx, &reports, query, args); err != nil {
		return nil, 0, err
	}
	return reports, count, nil
}

func (r *PGRepository) UpdateReportStatus(ctx context.Context, ext postgres.Executor, reportID, statusID int64) error {
	_, err := ext.ExecContext(ctx, `UPDATE nd_finance_report SET status_id = $1 WHERE id = $2`, statusID, reportID)
	return err
}

func (r *PGRepository) InsertReport(ctx context.Context, ext postgres.Executor, report *model.FinanceReport) (bool, error) {
	res, err := ext.NamedExecContext(ctx, `
        INSERT INTO nd_finance_report (site_id, month, year, status_id, balance_forward, created_at)
        VALUES (:site_id, :month, :year, :status_id, :balance_forward, :created_at)
        ON CONFLICT (site_id, month, year) DO NOTHING
    `, report)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *PGRepository) InsertItem(ctx context.Context, ext postgres.Executor, item *model.FinanceReportItem) error {
	return ext.QueryRowxContext(ctx, `
        INSERT INTO nd_finance_report_item (
            finance_report_id, description, debit_type, debit, credit_type, credit, balance, doc_path
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at`,
		item.FinanceReportID, item.Description, item.DebitType, item.Debit,
		item.CreditType, item.Credit, item.Balance, item.DocPath,
	).Scan(&item.ID, &item.CreatedAt)
}

func (r *PGRepository) ListItems(ctx context.Context, reportID int64, page, perPage int) ([]model.FinanceReportItem, int, error) {
	items := []model.FinanceReportItem{}
	var count int

	if err := r.DB.GetContext(ctx, &count,
		`SELECT count(*) FROM nd_finance_report_item WHERE finance_report_id = $1`, reportID); err != nil {
		return nil, 0, err
	}

	query := `
        SELECT it.id, it.finance_report_id, it.description, it.debit_type, it.debit,
               it.credit_type, it.credit, it.balance, it.doc_path, it.created_at,
               t.id AS transaction_id
        FROM nd_finance_report_item it
        LEFT JOIN nd_pos_transaction t ON t.finance_item_id = it.id
        WHERE it.finance_report_id = $1
        ORDER BY it.created_at, it.id`
	if perPage > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", perPage, (page-1)*perPage)
	}

	err := r.DB.SelectContext(ctx, &items, query, reportID)
	return items, count, err
}

// FindStatusID reads through ext when given, otherwise through the pool.
func (r *PGRepository) FindStatusID(ctx context.Context, ext postgres.Executor, status string) (*int64, error) {
	if ext == nil {
		ext = r.DB
	}
	return findID(ctx, ext, `SELECT id FROM nd_finance_report_status WHERE status = $1 LIMIT 1`, status)
}

func (r *PGRepository) FindPhaseID(ctx context.Context, name string) (*int64, error) {
	return findID(ctx, r.DB, `SELECT id FROM nd_phases WHERE name = $1 ORDER BY id LIMIT 1`, name)
}

func (r *PGRepository) FindRegionID(ctx context.Context, eng string) (*int64, error) {
	return findID(ctx, r.DB, `SELECT id FROM nd_region WHERE eng = $1 ORDER BY id LIMIT 1`, eng)
}

func findID(ctx context.Context, ext postgres.Executor, query string, arg interface{}) (*int64, error) {
	var id int64
	if err := ext.GetContext(ctx, &id, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

func (r *PGRepository) getNamed(ctx context.Context, dest interface{}, query string, args map[string]interface{}) error {
	q, params, err := bindNamed(query, args)
	if err != nil {
		return err
	}
	return r.DB.GetContext(ctx, dest, r.DB.Rebind(q), params...)
}

func (r *PGRepository) selectNamed(ctx context.Context, dest interface{}, query string, args map[string]interface{}) error {
	q, params, err := bindNamed(query, args)
	if err != nil {
		return err
	}
	return r.DB.SelectContext(ctx, dest, r.DB.Rebind(q), params...)
}

func bindNamed(query string, args map[string]interface{}) (string, []interface{}, error) {
	q, params, err := sqlx.Named(query, args)
	if err != nil {
		return "", nil, err
	}
	return sqlx.In(q, params...)
}
