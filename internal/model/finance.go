package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReportStatusEditing   = "editing"
	ReportStatusSubmitted = "submitted"
)

type FinanceReport struct {
	ID             int64           `db:"id" json:"id"`
	SiteID         int64           `db:"site_id" json:"site_id"`
	Month          string          `db:"month" json:"month"`
	Year           string          `db:"year" json:"year"`
	StatusID       *int64          `db:"status_id" json:"status_id"`
	BalanceForward decimal.Decimal `db:"balance_forward" json:"balance_forward"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`

	Status    *string `db:"status" json:"status"`
	SiteName  *string `db:"sitename" json:"sitename"`
	RegionID  *int64  `db:"region_id" json:"region_id"`
	PhaseID   *int64  `db:"phase_id" json:"phase_id"`
	ItemCount int     `db:"item_count" json:"item_count"`
}

type FinanceReportItem struct {
	ID              int64               `db:"id" json:"id"`
	FinanceReportID int64               `db:"finance_report_id" json:"finance_report_id"`
	Description     string              `db:"description" json:"description"`
	DebitType       *int64              `db:"debit_type" json:"debit_type"`
	Debit           decimal.NullDecimal `db:"debit" json:"debit"`
	CreditType      *int64              `db:"credit_type" json:"credit_type"`
	Credit          decimal.NullDecimal `db:"credit" json:"credit"`
	Balance         decimal.Decimal     `db:"balance" json:"balance"`
	DocPath         *string             `db:"doc_path" json:"doc_path"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`

	TransactionID *int64 `db:"transaction_id" json:"transaction_id"` // joined pos sale, if any
}
