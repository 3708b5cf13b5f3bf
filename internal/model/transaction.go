package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCash = "cash"
	PaymentMethodQR   = "qr"
)

type Transaction struct {
	ID              int64           `db:"id" json:"id"`
	SiteProfileID   int64           `db:"site_profile_id" json:"site_profile_id"`
	MemberID        *int64          `db:"member_id" json:"member_id"`
	Type            string          `db:"type" json:"type"` // payment method
	TransactionDate time.Time       `db:"transaction_date" json:"transaction_date"`
	Remarks         *string         `db:"remarks" json:"remarks"`
	FinanceItemID   int64           `db:"finance_item_id" json:"finance_item_id"`
	PaidAmount      decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	IdempotencyKey  *string         `db:"idempotency_key" json:"-"`
	CreatedBy       *string         `db:"created_by" json:"created_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// TransactionItem references exactly one of ItemID or ServiceID.
type TransactionItem struct {
	ID            int64           `db:"id" json:"id"`
	TransactionID int64           `db:"transaction_id" json:"transaction_id"`
	ItemID        *int64          `db:"item_id" json:"item_id"`
	ServiceID     *int64          `db:"service_id" json:"service_id"`
	Description   *string         `db:"description" json:"description"`
	Quantity      int             `db:"quantity" json:"quantity"`
	PricePerUnit  decimal.Decimal `db:"price_per_unit" json:"price_per_unit"`
	TotalPrice    decimal.Decimal `db:"total_price" json:"total_price"`
	CreatedBy     *string         `db:"created_by" json:"created_by"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`

	Name string `db:"name" json:"name"` // joined from inventory or service
}
