package dto

import "github.com/shopspring/decimal"

type ReportFilters struct {
	Year    string
	Month   string
	Search  string
	Status  string
	Phase   string
	Region  string
	Page    int
	PerPage int
	SiteIDs []int64
}

// ReportQuery is ReportFilters with names resolved to ids and the caller's scope applied.
type ReportQuery struct {
	Year           string
	Month          string
	Search         string
	StatusID       *int64
	PhaseID        *int64
	RegionID       *int64
	SiteIDs        []int64
	SiteID         *int64
	OrganizationID *int64
	Page           int
	PerPage        int
}

// ReportScope restricts report lookups to what a caller may see. Nil fields do not restrict.
type ReportScope struct {
	SiteID         *int64
	OrganizationID *int64
}

type StatusUpdate struct {
	ReportID       int64            `json:"-"`
	Status         string           `json:"status"`
	BalanceForward *decimal.Decimal `json:"balance_forward"`
}
