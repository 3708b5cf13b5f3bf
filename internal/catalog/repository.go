package catalog

import (
	"context"

	"github.com/fekuna/omnipos-sales-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
)

type Repository interface {
	// Site scoping
	ResolveSiteID(ctx context.Context, siteProfileID int64) (*int64, error)

	// Inventory items
	FindItems(ctx context.Context, filters *dto.ItemFilters) ([]model.Inventory, error)

	// Services and their printing charges
	FindServices(ctx context.Context, filters *dto.ServiceFilters) ([]model.CategoryService, error)
	FindCharge(ctx context.Context, id int64) (*model.ServiceCharge, error)
	ListCharges(ctx context.Context, serviceID int64) ([]model.ServiceCharge, error)
}
