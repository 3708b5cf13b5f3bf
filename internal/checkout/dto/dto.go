package dto

import (
	"github.com/fekuna/omnipos-sales-service/internal/cart"
	catalogdto "github.com/fekuna/omnipos-sales-service/internal/catalog/dto"
	"github.com/shopspring/decimal"
)

type CheckoutRequest struct {
	Lines          []catalogdto.LineRef `json:"lines"`
	PaymentMethod  string               `json:"payment_method"`
	Tendered       decimal.Decimal      `json:"tendered"`
	MemberID       *int64               `json:"member_id"`
	Remarks        string               `json:"remarks"`
	IdempotencyKey string               `json:"-"`
}

type QuoteRequest struct {
	Lines []catalogdto.LineRef `json:"lines"`
}

type Quote struct {
	Lines     []cart.Line     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

type SaleLine struct {
	Kind      cart.Kind       `json:"kind"`
	ID        int64           `json:"id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// SaleCompleted is the payload of the pos.sale.completed event.
type SaleCompleted struct {
	TransactionID int64           `json:"transaction_id"`
	SiteProfileID int64           `json:"site_profile_id"`
	FinanceItemID int64           `json:"finance_item_id"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	Tendered      decimal.Decimal `json:"tendered"`
	MemberID      *int64          `json:"member_id,omitempty"`
	CreatedBy     string          `json:"created_by"`
	Lines         []SaleLine      `json:"lines"`
}
