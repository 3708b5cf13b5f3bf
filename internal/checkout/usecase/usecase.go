package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/cart"
	"github.com/fekuna/omnipos-sales-service/internal/catalog"
	catalogdto "github.com/fekuna/omnipos-sales-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-sales-service/internal/checkout"
	"github.com/fekuna/omnipos-sales-service/internal/checkout/dto"
	"github.com/fekuna/omnipos-sales-service/internal/finance"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	inventorydto "github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/outbox"
	"github.com/fekuna/omnipos-sales-service/internal/profile"
	"github.com/fekuna/omnipos-sales-service/internal/receipt"
	"github.com/fekuna/omnipos-sales-service/internal/storage"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-sales-service/pkg/i18n"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/fekuna/omnipos-sales-service/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	ReceiptBucket      = "receipts"
	DefaultSalesTopic  = "pos.sales"
	resultSuccess      = "success"
	resultRejected     = "rejected"
	resultFailed       = "failed"
	resultIdempotent   = "replayed"
	receiptContentType = "text/plain; charset=utf-8"
)

// Deps wires the sequencer. Blobs and Metrics are optional.
type Deps struct {
	Repo      checkout.Repository
	Tx        postgres.TxManager
	Catalog   catalog.UseCase
	Inventory inventory.UseCase
	Finance   finance.UseCase
	Profiles  profile.UseCase
	Outbox    outbox.Repository
	Blobs     storage.BlobStore
	Localizer *i18n.Localizer
	Metrics   *metrics.CheckoutMetrics
	Logger    logger.ZapLogger

	Location *time.Location
	Topic    string
}

type checkoutUseCase struct {
	Deps
	now func() time.Time
}

func NewCheckoutUseCase(d Deps) checkout.UseCase {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Topic == "" {
		d.Topic = DefaultSalesTopic
	}
	return &checkoutUseCase{Deps: d, now: time.Now}
}

func (uc *checkoutUseCase) Quote(ctx context.Context, s auth.Session, lines []catalogdto.LineRef) (*dto.Quote, error) {
	if len(lines) == 0 {
		return nil, checkout.ErrEmptyCart
	}
	c, err := uc.rebuild(ctx, s, lines)
	if err != nil {
		return nil, err
	}
	return &dto.Quote{Lines: c.Lines(), Total: c.Total(), ItemCount: c.ItemCount()}, nil
}

// rebuild prices the cart from current catalog snapshots; client prices are ignored.
func (uc *checkoutUseCase) rebuild(ctx context.Context, s auth.Session, refs []catalogdto.LineRef) (*cart.Cart, error) {
	items, err := uc.Catalog.LoadForCheckout(ctx, s, refs)
	if err != nil {
		return nil, err
	}
	c := cart.New()
	for i, ref := range refs {
		if err := c.Add(items[i], ref.Quantity); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (uc *checkoutUseCase) Checkout(ctx context.Context, s auth.Session, req dto.CheckoutRequest) (*receipt.Receipt, error) {
	start := time.Now()
	r, result, err := uc.checkout(ctx, s, req)
	if uc.Metrics != nil {
		uc.Metrics.Checkouts.WithLabelValues(result).Inc()
		uc.Metrics.Duration.Observe(time.Since(start).Seconds())
		if result == resultSuccess {
			uc.Metrics.Revenue.Add(r.Total.InexactFloat64())
		}
	}
	return r, err
}

func (uc *checkoutUseCase) checkout(ctx context.Context, s auth.Session, req dto.CheckoutRequest) (*receipt.Receipt, string, error) {
	if s.SiteProfileID == nil {
		return nil, resultRejected, checkout.ErrNoSite
	}
	if len(req.Lines) == 0 {
		return nil, resultRejected, checkout.ErrEmptyCart
	}
	if req.PaymentMethod != model.PaymentMethodCash && req.PaymentMethod != model.PaymentMethodQR {
		return nil, resultRejected, fmt.Errorf("%w: %q", checkout.ErrInvalidPaymentMethod, req.PaymentMethod)
	}
	siteProfileID := *s.SiteProfileID

	if req.IdempotencyKey != "" {
		prior, err := uc.Repo.FindByIdempotencyKey(ctx, siteProfileID, req.IdempotencyKey)
		if err != nil {
			return nil, resultFailed, fmt.Errorf("%w: %w", checkout.ErrPaymentFailed, err)
		}
		if prior != nil {
			return uc.replay(ctx, prior, siteProfileID)
		}
	}

	c, err := uc.rebuild(ctx, s, req.Lines)
	if err != nil {
		if isCartRejection(err) {
			return nil, resultRejected, err
		}
		return nil, resultFailed, fmt.Errorf("%w: %w", checkout.ErrPaymentFailed, err)
	}
	total := c.Total()
	if req.Tendered.LessThan(total) {
		return nil, resultRejected, &checkout.InsufficientPaymentError{Total: total, Tendered: req.Tendered}
	}

	var member *model.MemberProfile
	if req.MemberID != nil {
		member, err = uc.Profiles.GetMember(ctx, *req.MemberID)
		if err != nil {
			if errors.Is(err, profile.ErrMemberNotFound) {
				return nil, resultRejected, err
			}
			return nil, resultFailed, fmt.Errorf("%w: %w", checkout.ErrPaymentFailed, err)
		}
	}

	now := uc.now().In(uc.Location)
	month, year := finance.Period(now)
	lines := c.Lines()

	txn := &model.Transaction{
		SiteProfileID:   siteProfileID,
		MemberID:        req.MemberID,
		Type:            req.PaymentMethod,
		TransactionDate: now,
		PaidAmount:      req.Tendered,
	}
	if req.Remarks != "" {
		remarks := req.Remarks
		txn.Remarks = &remarks
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		txn.IdempotencyKey = &key
	}
	if s.UserID != "" {
		operator := s.UserID
		txn.CreatedBy = &operator
	}

	var items []model.TransactionItem
	err = uc.Tx.WithTx(ctx, func(tx postgres.Executor) error {
		report, err := uc.Finance.ResolveOpenReport(ctx, tx, siteProfileID, month, year)
		if err != nil {
			return err
		}
		ledger, err := uc.Finance.RecordSale(ctx, tx, report.ID, total)
		if err != nil {
			return err
		}

		txn.FinanceItemID = ledger.ID
		if err := uc.Repo.InsertTransaction(ctx, tx, txn); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		items = transactionItems(txn, lines)
		if err := uc.Repo.InsertItems(ctx, tx, items); err != nil {
			return fmt.Errorf("insert transaction items: %w", err)
		}

		for _, l := range lines {
			if !l.Item.Limited() {
				continue
			}
			if err := uc.Inventory.DecrementForSale(ctx, tx, &inventorydto.SaleDecrement{
				ItemID:        l.Item.ID,
				Name:          l.Item.Name,
				Quantity:      l.Quantity,
				TransactionID: txn.ID,
				UserID:        s.UserID,
			}); err != nil {
				return err
			}
		}

		record, err := outbox.NewRecord(uc.Topic, strconv.FormatInt(siteProfileID, 10), outbox.EventSaleCompleted,
			saleEvent(txn, siteProfileID, total, lines))
		if err != nil {
			return err
		}
		return uc.Outbox.Insert(ctx, tx, record)
	})
	if err != nil {
		var ledgerErr *finance.LedgerError
		if errors.As(err, &ledgerErr) || errors.Is(err, inventory.ErrInsufficientStock) {
			uc.Logger.Warn("Checkout rejected", zap.Int64("site_profile_id", siteProfileID), zap.Error(err))
			return nil, resultRejected, err
		}
		// a concurrent request with the same key may have committed first
		if req.IdempotencyKey != "" {
			if prior, lookupErr := uc.Repo.FindByIdempotencyKey(ctx, siteProfileID, req.IdempotencyKey); lookupErr == nil && prior != nil {
				return uc.replay(ctx, prior, siteProfileID)
			}
		}
		uc.Logger.Error("Checkout failed", zap.Int64("site_profile_id", siteProfileID), zap.Error(err))
		return nil, resultFailed, fmt.Errorf("%w: %w", checkout.ErrPaymentFailed, err)
	}

	uc.Logger.Info("Checkout committed",
		zap.Int64("transaction_id", txn.ID),
		zap.Int64("site_profile_id", siteProfileID),
		zap.String("total", total.StringFixed(2)),
	)

	r := receipt.Build(receipt.Input{
		Transaction: *txn,
		Items:       items,
		Member:      member,
		SiteName:    uc.siteName(ctx, siteProfileID),
		CreatorName: uc.operatorName(ctx, s.UserID),
	})
	uc.archive(ctx, siteProfileID, r)
	uc.invalidate(ctx, lines)
	return r, resultSuccess, nil
}

// replay rebuilds the receipt of a committed transaction without writing anything.
func (uc *checkoutUseCase) replay(ctx context.Context, txn *model.Transaction, siteProfileID int64) (*receipt.Receipt, string, error) {
	items, err := uc.Repo.ListItems(ctx, txn.ID)
	if err != nil {
		return nil, resultFailed, fmt.Errorf("%w: %w", checkout.ErrPaymentFailed, err)
	}

	var member *model.MemberProfile
	if txn.MemberID != nil {
		if member, err = uc.Profiles.GetMember(ctx, *txn.MemberID); err != nil {
			uc.Logger.Warn("Receipt member lookup failed", zap.Int64("member_id", *txn.MemberID), zap.Error(err))
			member = nil
		}
	}
	operator := ""
	if txn.CreatedBy != nil {
		operator = uc.operatorName(ctx, *txn.CreatedBy)
	}

	uc.Logger.Info("Checkout replayed", zap.Int64("transaction_id", txn.ID))
	return receipt.Build(receipt.Input{
		Transaction: *txn,
		Items:       items,
		Member:      member,
		SiteName:    uc.siteName(ctx, siteProfileID),
		CreatorName: operator,
	}), resultIdempotent, nil
}

func (uc *checkoutUseCase) siteName(ctx context.Context, siteProfileID int64) string {
	name, err := uc.Profiles.SiteName(ctx, siteProfileID)
	if err != nil {
		uc.Logger.Warn("Receipt site lookup failed", zap.Int64("site_profile_id", siteProfileID), zap.Error(err))
	}
	return name
}

func (uc *checkoutUseCase) operatorName(ctx context.Context, userID string) string {
	name, err := uc.Profiles.OperatorName(ctx, userID)
	if err != nil {
		uc.Logger.Warn("Receipt operator lookup failed", zap.String("user_id", userID), zap.Error(err))
	}
	return name
}

// archive errors are logged only.
func (uc *checkoutUseCase) archive(ctx context.Context, siteProfileID int64, r *receipt.Receipt) {
	if uc.Blobs == nil {
		return
	}
	var buf bytes.Buffer
	if err := receipt.Render(&buf, r, uc.Localizer); err != nil {
		uc.Logger.Warn("Failed to render receipt", zap.String("invoice", r.InvoiceID), zap.Error(err))
		return
	}
	key := fmt.Sprintf("%d/%s.txt", siteProfileID, r.InvoiceID)
	if _, err := uc.Blobs.Put(ctx, ReceiptBucket, key, receiptContentType, &buf); err != nil {
		uc.Logger.Warn("Failed to archive receipt", zap.String("key", key), zap.Error(err))
	}
}

func (uc *checkoutUseCase) invalidate(ctx context.Context, lines []cart.Line) {
	seen := map[int64]bool{}
	for _, l := range lines {
		if l.Item.SiteID == nil || seen[*l.Item.SiteID] {
			continue
		}
		seen[*l.Item.SiteID] = true
		uc.Catalog.Invalidate(ctx, l.Item.SiteID)
	}
	if len(seen) == 0 {
		uc.Catalog.Invalidate(ctx, nil)
	}
}

func isCartRejection(err error) bool {
	for _, target := range []error{
		catalog.ErrItemNotFound,
		catalog.ErrChargeNotFound,
		catalog.ErrInvalidPages,
		catalog.ErrInvalidKind,
		cart.ErrQuantityLimit,
		cart.ErrInvalidQuantity,
		cart.ErrQuantityTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func transactionItems(txn *model.Transaction, lines []cart.Line) []model.TransactionItem {
	items := make([]model.TransactionItem, 0, len(lines))
	for _, l := range lines {
		id := l.Item.ID
		it := model.TransactionItem{
			TransactionID: txn.ID,
			Quantity:      l.Quantity,
			PricePerUnit:  l.Item.UnitPrice,
			TotalPrice:    l.Total(),
			CreatedBy:     txn.CreatedBy,
			Name:          l.Item.Name,
		}
		if l.Item.Kind == cart.KindPhysical {
			it.ItemID = &id
		} else {
			it.ServiceID = &id
		}
		if l.Item.ChargeID != nil && l.Item.Description != "" {
			desc := l.Item.Description
			it.Description = &desc
		}
		items = append(items, it)
	}
	return items
}

func saleEvent(txn *model.Transaction, siteProfileID int64, total decimal.Decimal, lines []cart.Line) dto.SaleCompleted {
	ev := dto.SaleCompleted{
		TransactionID: txn.ID,
		SiteProfileID: siteProfileID,
		FinanceItemID: txn.FinanceItemID,
		PaymentMethod: txn.Type,
		Total:         total,
		Tendered:      txn.PaidAmount,
		MemberID:      txn.MemberID,
		Lines:         make([]dto.SaleLine, 0, len(lines)),
	}
	if txn.CreatedBy != nil {
		ev.CreatedBy = *txn.CreatedBy
	}
	for _, l := range lines {
		ev.Lines = append(ev.Lines, dto.SaleLine{
			Kind:      l.Item.Kind,
			ID:        l.Item.ID,
			Quantity:  l.Quantity,
			UnitPrice: l.Item.UnitPrice,
			Total:     l.Total(),
		})
	}
	return ev
}
