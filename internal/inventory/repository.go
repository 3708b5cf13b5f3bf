package inventory

import (
	"context"

	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
)

type Repository interface {
	// Inventory items. siteProfileID nil means any site.
	FindByID(ctx context.Context, id int64, siteProfileID *int64) (*model.Inventory, error)

	// Movements / Audit
	LogMovement(ctx context.Context, ext postgres.Executor, movement *model.InventoryMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)

	// AdjustStockWithMovement applies a relative change and logs it in one transaction.
	// It returns nil when the change would take stock below zero.
	AdjustStockWithMovement(ctx context.Context, movement *model.InventoryMovement) (*model.Inventory, error)

	// DecrementStock takes qty off an item only if enough is left. ok is false otherwise.
	DecrementStock(ctx context.Context, ext postgres.Executor, itemID int64, qty int, updatedBy *string) (after int, ok bool, err error)
}
