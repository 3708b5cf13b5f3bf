package dto

type AdjustInventoryInput struct {
	ItemID         int64  `json:"-"`
	QuantityChange int    `json:"quantity_change"`
	Reason         string `json:"reason"`
	UserID         string `json:"-"`
}

type SaleDecrement struct {
	ItemID        int64
	Name          string
	Quantity      int
	TransactionID int64
	UserID        string
}
