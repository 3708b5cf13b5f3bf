package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrintingCategoryID marks inventory rows that are priced through service charges
// instead of being sold as stock.
const PrintingCategoryID int64 = 1

type Inventory struct {
	ID          int64           `db:"id" json:"id"`
	SiteID      *int64          `db:"site_id" json:"site_id"`
	CategoryID  *int64          `db:"category_id" json:"category_id"`
	TypeID      *int64          `db:"type_id" json:"type_id"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description"`
	Barcode     *string         `db:"barcode" json:"barcode"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	ImageURL    *string         `db:"image_url" json:"image_url"` // first attachment, joined
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time      `db:"updated_at" json:"updated_at"`
	UpdatedBy   *string         `db:"updated_by" json:"updated_by"`
	DeletedAt   *time.Time      `db:"deleted_at" json:"-"`
}

const (
	MovementTypeSale       = "sale"
	MovementTypeAdjustment = "adjustment"
)

type InventoryMovement struct {
	ID             string    `db:"id" json:"id"`
	InventoryID    int64     `db:"inventory_id" json:"inventory_id"`
	MovementType   string    `db:"movement_type" json:"movement_type"`
	QuantityChange int       `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int       `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string   `db:"reference_type" json:"reference_type"`
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
