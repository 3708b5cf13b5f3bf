package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	catalogdto "github.com/fekuna/omnipos-sales-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-sales-service/internal/checkout/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/receipt"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrInsufficientPayment  = errors.New("tendered amount is below the total")
	ErrNoSite               = errors.New("session has no site")
	ErrPaymentFailed        = errors.New("payment failed")
)

// InsufficientPaymentError carries the total the customer has to cover. It matches ErrInsufficientPayment.
type InsufficientPaymentError struct {
	Total    decimal.Decimal
	Tendered decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("%s: total %s, tendered %s", ErrInsufficientPayment, e.Total.StringFixed(2), e.Tendered.StringFixed(2))
}

func (e *InsufficientPaymentError) Is(target error) bool {
	return target == ErrInsufficientPayment
}

type Repository interface {
	// FindByIdempotencyKey looks the key up within one site only.
	FindByIdempotencyKey(ctx context.Context, siteProfileID int64, key string) (*model.Transaction, error)
	InsertTransaction(ctx context.Context, ext postgres.Executor, txn *model.Transaction) error
	InsertItems(ctx context.Context, ext postgres.Executor, items []model.TransactionItem) error
	ListItems(ctx context.Context, transactionID int64) ([]model.TransactionItem, error)
}

type UseCase interface {
	// Checkout commits the sale in one transaction and returns its receipt.
	Checkout(ctx context.Context, s auth.Session, req dto.CheckoutRequest) (*receipt.Receipt, error)
	Quote(ctx context.Context, s auth.Session, lines []catalogdto.LineRef) (*dto.Quote, error)
}
