package usecase

import (
	"context"
	"io"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/cart"
	catalogdto "github.com/fekuna/omnipos-sales-service/internal/catalog/dto"
	financedto "github.com/fekuna/omnipos-sales-service/internal/finance/dto"
	inventorydto "github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/shopspring/decimal"
)

// MockRepository implements checkout.Repository for testing
type MockRepository struct {
	Prior        *model.Transaction
	PriorItems   []model.TransactionItem
	Transactions []*model.Transaction
	Items        []model.TransactionItem
	InsertErr    error
	Lookups      int
}

// FindByIdempotencyKey returns Prior only for its own site and key.
func (m *MockRepository) FindByIdempotencyKey(_ context.Context, siteProfileID int64, key string) (*model.Transaction, error) {
	m.Lookups++
	if m.Prior == nil || m.Prior.SiteProfileID != siteProfileID {
		return nil, nil
	}
	if m.Prior.IdempotencyKey == nil || *m.Prior.IdempotencyKey != key {
		return nil, nil
	}
	return m.Prior, nil
}

func (m *MockRepository) InsertTransaction(_ context.Context, _ postgres.Executor, txn *model.Transaction) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	txn.ID = int64(100 + len(m.Transactions))
	txn.CreatedAt = txn.TransactionDate
	m.Transactions = append(m.Transactions, txn)
	return nil
}

func (m *MockRepository) InsertItems(_ context.Context, _ postgres.Executor, items []model.TransactionItem) error {
	m.Items = append(m.Items, items...)
	return nil
}

func (m *MockRepository) ListItems(context.Context, int64) ([]model.TransactionItem, error) {
	return m.PriorItems, nil
}

type MockTxManager struct {
	Calls int
}

func (m *MockTxManager) WithTx(_ context.Context, fn func(tx postgres.Executor) error) error {
	m.Calls++
	return fn(nil)
}

// MockCatalog serves snapshots from a fixed map keyed by kind and id.
type MockCatalog struct {
	Items       map[string]cart.Item
	Err         error
	Invalidated []*int64
}

func catalogKey(kind cart.Kind, id int64) string {
	return string(cart.KeyOf(cart.Item{Kind: kind, ID: id}))
}

func (m *MockCatalog) Search(context.Context, auth.Session, catalogdto.SearchFilters) ([]cart.Item, error) {
	return nil, nil
}

func (m *MockCatalog) ListCharges(context.Context, int64) ([]model.ServiceCharge, error) {
	return nil, nil
}

func (m *MockCatalog) QuotePrinting(context.Context, auth.Session, catalogdto.PrintingQuote) (*cart.Item, error) {
	return nil, nil
}

func (m *MockCatalog) LoadForCheckout(_ context.Context, _ auth.Session, refs []catalogdto.LineRef) ([]cart.Item, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]cart.Item, 0, len(refs))
	for _, ref := range refs {
		out = append(out, m.Items[catalogKey(ref.Kind, ref.ID)])
	}
	return out, nil
}

func (m *MockCatalog) Reindex(context.Context, auth.Session) (int, error) {
	return 0, nil
}

func (m *MockCatalog) Invalidate(_ context.Context, siteID *int64) {
	m.Invalidated = append(m.Invalidated, siteID)
}

type MockInventory struct {
	Decrements []*inventorydto.SaleDecrement
	Err        error
}

func (m *MockInventory) GetInventory(context.Context, auth.Session, int64) (*model.Inventory, error) {
	return nil, nil
}

func (m *MockInventory) AdjustInventory(context.Context, auth.Session, *inventorydto.AdjustInventoryInput) (*model.Inventory, error) {
	return nil, nil
}

func (m *MockInventory) ListMovements(context.Context, *inventorydto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return nil, 0, nil
}

func (m *MockInventory) DecrementForSale(_ context.Context, _ postgres.Executor, input *inventorydto.SaleDecrement) error {
	if m.Err != nil {
		return m.Err
	}
	m.Decrements = append(m.Decrements, input)
	return nil
}

type MockFinance struct {
	ResolveErr error
	LastSite   int64
	LastMonth  string
	LastYear   string
	Sales      []decimal.Decimal
}

func (m *MockFinance) ResolveOpenReport(_ context.Context, _ postgres.Executor, siteID int64, month, year string) (*model.FinanceReport, error) {
	m.LastSite, m.LastMonth, m.LastYear = siteID, month, year
	if m.ResolveErr != nil {
		return nil, m.ResolveErr
	}
	return &model.FinanceReport{ID: 11, SiteID: siteID, Month: month, Year: year}, nil
}

func (m *MockFinance) RecordSale(_ context.Context, _ postgres.Executor, reportID int64, total decimal.Decimal) (*model.FinanceReportItem, error) {
	m.Sales = append(m.Sales, total)
	return &model.FinanceReportItem{ID: 55, FinanceReportID: reportID, Balance: total}, nil
}

func (m *MockFinance) ListReports(context.Context, auth.Session, financedto.ReportFilters) ([]model.FinanceReport, int, error) {
	return nil, 0, nil
}

func (m *MockFinance) ListItems(context.Context, auth.Session, int64, int, int) ([]model.FinanceReportItem, int, error) {
	return nil, 0, nil
}

func (m *MockFinance) UpdateStatus(context.Context, auth.Session, financedto.StatusUpdate) (*model.FinanceReport, error) {
	return nil, nil
}

func (m *MockFinance) UploadAttachment(context.Context, string, string, io.Reader) (string, error) {
	return "", nil
}

type MockProfiles struct {
	Member *model.MemberProfile
	Err    error
}

func (m *MockProfiles) SearchMembers(context.Context, string) ([]model.MemberProfile, error) {
	return nil, nil
}

func (m *MockProfiles) GetMember(context.Context, int64) (*model.MemberProfile, error) {
	return m.Member, m.Err
}

func (m *MockProfiles) SiteName(context.Context, int64) (string, error) {
	return "NADI Kg Baru", nil
}

func (m *MockProfiles) OperatorName(context.Context, string) (string, error) {
	return "Siti", nil
}

type MockOutbox struct {
	Records []*model.OutboxRecord
}

func (m *MockOutbox) Insert(_ context.Context, _ postgres.Executor, record *model.OutboxRecord) error {
	m.Records = append(m.Records, record)
	return nil
}

func (m *MockOutbox) FetchPending(context.Context, postgres.Executor, int) ([]model.OutboxRecord, error) {
	return nil, nil
}

func (m *MockOutbox) MarkSent(context.Context, postgres.Executor, []int64) error {
	return nil
}

type MockBlobStore struct {
	Keys   []string
	Bodies []string
	Err    error
}

func (m *MockBlobStore) Put(_ context.Context, bucket, key, _ string, body io.Reader) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	b, _ := io.ReadAll(body)
	m.Keys = append(m.Keys, bucket+"/"+key)
	m.Bodies = append(m.Bodies, string(b))
	return "http://files/" + bucket + "/" + key, nil
}

func ptr[T any](v T) *T { return &v }
