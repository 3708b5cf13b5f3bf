package catalog

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/cart"
	"github.com/fekuna/omnipos-sales-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
)

var (
	ErrItemNotFound   = errors.New("catalog item not found")
	ErrChargeNotFound = errors.New("service charge not found")
	ErrInvalidPages   = errors.New("number of pages must be at least 1")
	ErrInvalidKind    = errors.New("unknown catalog filter")
)

type UseCase interface {
	Search(ctx context.Context, s auth.Session, filters dto.SearchFilters) ([]cart.Item, error)
	ListCharges(ctx context.Context, serviceID int64) ([]model.ServiceCharge, error)
	QuotePrinting(ctx context.Context, s auth.Session, req dto.PrintingQuote) (*cart.Item, error)

	// LoadForCheckout returns fresh snapshots in the order of refs, bypassing the cache.
	LoadForCheckout(ctx context.Context, s auth.Session, refs []dto.LineRef) ([]cart.Item, error)

	Reindex(ctx context.Context, s auth.Session) (int, error)
	Invalidate(ctx context.Context, siteID *int64)
}
