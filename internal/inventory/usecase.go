package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
)

var (
	ErrInventoryNotFound     = errors.New("inventory not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrSystemBusy            = errors.New("system busy, please try again later (lock)")
)

// StockError names the item a sale could not take stock from. It matches ErrInsufficientStock.
type StockError struct {
	ItemID int64
	Name   string
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s for %q (item %d)", ErrInsufficientStock, e.Name, e.ItemID)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

type UseCase interface {
	GetInventory(ctx context.Context, s auth.Session, id int64) (*model.Inventory, error)
	AdjustInventory(ctx context.Context, s auth.Session, input *dto.AdjustInventoryInput) (*model.Inventory, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)

	// DecrementForSale runs inside the caller's checkout transaction.
	DecrementForSale(ctx context.Context, ext postgres.Executor, input *dto.SaleDecrement) error
}
