package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/cache"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRepository implements inventory.Repository for testing
type MockRepository struct {
	Item        *model.Inventory
	LastScope   *int64
	AdjustedInv *model.Inventory
	Movements   []*model.InventoryMovement

	DecrementOK    bool
	DecrementAfter int
	Err            error
}

func (m *MockRepository) FindByID(_ context.Context, _ int64, siteProfileID *int64) (*model.Inventory, error) {
	m.LastScope = siteProfileID
	return m.Item, m.Err
}

func (m *MockRepository) LogMovement(_ context.Context, _ postgres.Executor, movement *model.InventoryMovement) error {
	m.Movements = append(m.Movements, movement)
	return nil
}

func (m *MockRepository) ListMovements(context.Context, *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return nil, 0, m.Err
}

func (m *MockRepository) AdjustStockWithMovement(_ context.Context, movement *model.InventoryMovement) (*model.Inventory, error) {
	m.Movements = append(m.Movements, movement)
	return m.AdjustedInv, m.Err
}

func (m *MockRepository) DecrementStock(context.Context, postgres.Executor, int64, int, *string) (int, bool, error) {
	return m.DecrementAfter, m.DecrementOK, m.Err
}

func newTestCache(t *testing.T) (*cache.RedisClient, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := cache.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func siteUser() auth.Session {
	site := int64(4)
	return auth.Session{UserID: "u-1", SiteProfileID: &site}
}

func TestGetInventory_ScopedToSite(t *testing.T) {
	c, _ := newTestCache(t)
	repo := &MockRepository{Item: &model.Inventory{ID: 1, Quantity: 3}}
	uc := NewInventoryUseCase(repo, c, logger.NewNop())

	inv, err := uc.GetInventory(context.Background(), siteUser(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, inv.Quantity)
	require.NotNil(t, repo.LastScope)
	assert.Equal(t, int64(4), *repo.LastScope)

	_, err = uc.GetInventory(context.Background(), auth.Session{UserType: auth.UserTypeSuperAdmin}, 1)
	require.NoError(t, err)
	assert.Nil(t, repo.LastScope)
}

func TestGetInventory_NotFound(t *testing.T) {
	c, _ := newTestCache(t)
	uc := NewInventoryUseCase(&MockRepository{}, c, logger.NewNop())

	_, err := uc.GetInventory(context.Background(), siteUser(), 1)
	assert.ErrorIs(t, err, inventory.ErrInventoryNotFound)
}

func TestAdjustInventory(t *testing.T) {
	c, mr := newTestCache(t)
	repo := &MockRepository{
		Item:        &model.Inventory{ID: 1, Quantity: 3},
		AdjustedInv: &model.Inventory{ID: 1, Quantity: 8},
	}
	uc := NewInventoryUseCase(repo, c, logger.NewNop())

	inv, err := uc.AdjustInventory(context.Background(), siteUser(), &dto.AdjustInventoryInput{
		ItemID: 1, QuantityChange: 5, Reason: "restock", UserID: "u-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 8, inv.Quantity)

	require.Len(t, repo.Movements, 1)
	assert.Equal(t, model.MovementTypeAdjustment, repo.Movements[0].MovementType)
	assert.Equal(t, "restock", repo.Movements[0].Notes)
	assert.False(t, mr.Exists("lock:inventory:1"), "lock must be released")
}

func TestAdjustInventory_RejectsNegative(t *testing.T) {
	c, _ := newTestCache(t)
	repo := &MockRepository{Item: &model.Inventory{ID: 1, Quantity: 3}}
	uc := NewInventoryUseCase(repo, c, logger.NewNop())

	_, err := uc.AdjustInventory(context.Background(), siteUser(), &dto.AdjustInventoryInput{ItemID: 1, QuantityChange: -4})
	assert.ErrorIs(t, err, inventory.ErrInsufficientInventory)
	assert.Empty(t, repo.Movements)
}

func TestAdjustInventory_LostRace(t *testing.T) {
	c, _ := newTestCache(t)
	repo := &MockRepository{Item: &model.Inventory{ID: 1, Quantity: 3}}
	uc := NewInventoryUseCase(repo, c, logger.NewNop())

	_, err := uc.AdjustInventory(context.Background(), siteUser(), &dto.AdjustInventoryInput{ItemID: 1, QuantityChange: -3})
	assert.ErrorIs(t, err, inventory.ErrInsufficientInventory)
}

func TestAdjustInventory_LockBusy(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("lock:inventory:1", "someone-else"))
	mr.SetTTL("lock:inventory:1", time.Minute)

	repo := &MockRepository{Item: &model.Inventory{ID: 1, Quantity: 3}}
	uc := NewInventoryUseCase(repo, c, logger.NewNop())

	_, err := uc.AdjustInventory(context.Background(), siteUser(), &dto.AdjustInventoryInput{ItemID: 1, QuantityChange: 1})
	assert.ErrorIs(t, err, inventory.ErrSystemBusy)
	assert.Empty(t, repo.Movements)

	val, err := mr.Get("lock:inventory:1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
}

func TestDecrementForSale(t *testing.T) {
	c, _ := newTestCache(t)
	repo := &MockRepository{DecrementOK: true, DecrementAfter: 3}
	uc := NewInventoryUseCase(repo, c, logger.NewNop())

	err := uc.DecrementForSale(context.Background(), nil, &dto.SaleDecrement{
		ItemID: 1, Name: "Pen", Quantity: 2, TransactionID: 77, UserID: "u-1",
	})
	require.NoError(t, err)
	require.Len(t, repo.Movements, 1)

	m := repo.Movements[0]
	assert.Equal(t, model.MovementTypeSale, m.MovementType)
	assert.Equal(t, -2, m.QuantityChange)
	assert.Equal(t, 5, m.QuantityBefore)
	assert.Equal(t, 3, m.QuantityAfter)
	assert.Equal(t, "77", *m.ReferenceID)
}

func TestDecrementForSale_InsufficientStock(t *testing.T) {
	c, _ := newTestCache(t)
	repo := &MockRepository{DecrementOK: false}
	uc := NewInventoryUseCase(repo, c, logger.NewNop())

	err := uc.DecrementForSale(context.Background(), nil, &dto.SaleDecrement{ItemID: 1, Name: "Pen", Quantity: 9})
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	var stockErr *inventory.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Pen", stockErr.Name)
	assert.Empty(t, repo.Movements)
}
