package dto

import "github.com/fekuna/omnipos-sales-service/internal/cart"

const (
	KindAll      = "all"
	KindItems    = "items"
	KindServices = "services"
)

type SearchFilters struct {
	Query string `json:"query"`
	Kind  string `json:"kind"`
}

type ItemFilters struct {
	SiteID            *int64 // nil means every site
	Query             string
	ExcludeCategoryID *int64
	IDs               []int64
	Limit             int
}

type ServiceFilters struct {
	AssetSiteID *int64 // site profile whose active assets decide visibility
	Query       string
	IDs         []int64
	Limit       int
}

type PrintingQuote struct {
	ServiceID int64 `json:"service_id"`
	ChargeID  int64 `json:"charge_id"`
	Pages     int   `json:"pages"`
}

// LineRef points at a catalog entry the client wants to buy.
type LineRef struct {
	Kind     cart.Kind `json:"kind"`
	ID       int64     `json:"id"`
	Quantity int       `json:"quantity"`
	ChargeID *int64    `json:"charge_id,omitempty"`
	Pages    int       `json:"pages,omitempty"`
}

// IndexDocument is what goes into the search index for an inventory row.
type IndexDocument struct {
	ID          int64  `json:"id"`
	SiteID      *int64 `json:"site_id"`
	CategoryID  *int64 `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Barcode     string `json:"barcode"`
}
