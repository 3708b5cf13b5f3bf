package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/cache"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockAttempts = 3
	lockRetry    = 100 * time.Millisecond
	lockTTL      = 5 * time.Second

	referenceTypeSale = "pos_transaction"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, cache *cache.RedisClient, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func siteScope(s auth.Session) *int64 {
	if s.IsSuperAdmin() {
		return nil
	}
	if s.SiteProfileID == nil {
		// matches nothing
		none := int64(-1)
		return &none
	}
	return s.SiteProfileID
}

func (uc *inventoryUseCase) GetInventory(ctx context.Context, s auth.Session, id int64) (*model.Inventory, error) {
	inv, err := uc.repo.FindByID(ctx, id, siteScope(s))
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, inventory.ErrInventoryNotFound
	}
	return inv, nil
}

func (uc *inventoryUseCase) AdjustInventory(ctx context.Context, s auth.Session, input *dto.AdjustInventoryInput) (*model.Inventory, error) {
	// 0. Acquire Lock
	lockKey := fmt.Sprintf("lock:inventory:%d", input.ItemID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		if i < lockAttempts-1 {
			time.Sleep(lockRetry)
		}
	}
	if !acquired {
		return nil, inventory.ErrSystemBusy
	}
	defer func() {
		if err := uc.cache.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
			uc.logger.Warn("failed to release inventory lock", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	// 1. Get current inventory
	current, err := uc.repo.FindByID(ctx, input.ItemID, siteScope(s))
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, inventory.ErrInventoryNotFound
	}
	if current.Quantity+input.QuantityChange < 0 {
		return nil, inventory.ErrInsufficientInventory
	}

	var createdBy *string
	if input.UserID != "" && input.UserID != "unknown" {
		createdBy = &input.UserID
	}

	// 2. Prepare Movement Log
	movement := &model.InventoryMovement{
		ID:             uuid.New().String(),
		InventoryID:    input.ItemID,
		MovementType:   model.MovementTypeAdjustment,
		QuantityChange: input.QuantityChange,
		Notes:          input.Reason,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now(),
	}

	inv, err := uc.repo.AdjustStockWithMovement(ctx, movement)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		// a sale took the stock between the read and the update
		return nil, inventory.ErrInsufficientInventory
	}

	uc.logger.Info("inventory adjusted",
		zap.Int64("item_id", inv.ID),
		zap.Int("change", input.QuantityChange),
		zap.Int("quantity", inv.Quantity),
	)
	return inv, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *inventoryUseCase) DecrementForSale(ctx context.Context, ext postgres.Executor, input *dto.SaleDecrement) error {
	var operator *string
	if input.UserID != "" {
		operator = &input.UserID
	}

	after, ok, err := uc.repo.DecrementStock(ctx, ext, input.ItemID, input.Quantity, operator)
	if err != nil {
		return fmt.Errorf("decrement stock for item %d: %w", input.ItemID, err)
	}
	if !ok {
		return &inventory.StockError{ItemID: input.ItemID, Name: input.Name}
	}

	refType := referenceTypeSale
	refID := strconv.FormatInt(input.TransactionID, 10)
	movement := &model.InventoryMovement{
		ID:             uuid.New().String(),
		InventoryID:    input.ItemID,
		MovementType:   model.MovementTypeSale,
		QuantityChange: -input.Quantity,
		QuantityBefore: after + input.Quantity,
		QuantityAfter:  after,
		ReferenceType:  &refType,
		ReferenceID:    &refID,
		Notes:          "POS sale",
		CreatedBy:      operator,
		CreatedAt:      time.Now(),
	}
	if err := uc.repo.LogMovement(ctx, ext, movement); err != nil {
		return fmt.Errorf("log sale movement for item %d: %w", input.ItemID, err)
	}
	return nil
}
