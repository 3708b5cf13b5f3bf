package dto

type MovementFilters struct {
	ItemID       int64
	MovementType string
	Page         int
	PageSize     int
}
