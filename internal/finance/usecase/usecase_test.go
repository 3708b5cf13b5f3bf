package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/finance"
	"github.com/fekuna/omnipos-sales-service/internal/finance/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRepository implements finance.Repository for testing
type MockRepository struct {
	Report   *model.FinanceReport
	Statuses map[string]int64
	Phases   map[string]int64
	Regions  map[string]int64

	Inserted     []*model.FinanceReport
	InsertExists bool
	Items        []*model.FinanceReportItem
	StatusSet    *int64
	LastQuery    *dto.ReportQuery
	LastScope    *dto.ReportScope
	Err          error
}

func (m *MockRepository) FindReport(context.Context, postgres.Executor, int64, string, string) (*model.FinanceReport, error) {
	return m.Report, m.Err
}

// FindReportByID honours the site part of the scope.
func (m *MockRepository) FindReportByID(_ context.Context, _ postgres.Executor, _ int64, scope dto.ReportScope) (*model.FinanceReport, error) {
	m.LastScope = &scope
	if m.Report != nil && scope.SiteID != nil && *scope.SiteID != m.Report.SiteID {
		return nil, m.Err
	}
	return m.Report, m.Err
}

func (m *MockRepository) ListReports(_ context.Context, q *dto.ReportQuery) ([]model.FinanceReport, int, error) {
	m.LastQuery = q
	return []model.FinanceReport{{ID: 1}}, 1, m.Err
}

func (m *MockRepository) UpdateReportStatus(_ context.Context, _ postgres.Executor, _ int64, statusID int64) error {
	m.StatusSet = &statusID
	return nil
}

func (m *MockRepository) InsertReport(_ context.Context, _ postgres.Executor, report *model.FinanceReport) (bool, error) {
	if m.InsertExists {
		return false, nil
	}
	m.Inserted = append(m.Inserted, report)
	return true, nil
}

func (m *MockRepository) InsertItem(_ context.Context, _ postgres.Executor, item *model.FinanceReportItem) error {
	if m.Err != nil {
		return m.Err
	}
	item.ID = int64(len(m.Items) + 1)
	m.Items = append(m.Items, item)
	return nil
}

func (m *MockRepository) ListItems(context.Context, int64, int, int) ([]model.FinanceReportItem, int, error) {
	return []model.FinanceReportItem{{ID: 1}}, 1, m.Err
}

func (m *MockRepository) FindStatusID(_ context.Context, _ postgres.Executor, status string) (*int64, error) {
	return lookup(m.Statuses, status), nil
}

func (m *MockRepository) FindPhaseID(_ context.Context, name string) (*int64, error) {
	return lookup(m.Phases, name), nil
}

func (m *MockRepository) FindRegionID(_ context.Context, eng string) (*int64, error) {
	return lookup(m.Regions, eng), nil
}

func lookup(m map[string]int64, k string) *int64 {
	if v, ok := m[k]; ok {
		return &v
	}
	return nil
}

// MockTxManager runs the function without a real transaction.
type MockTxManager struct {
	Calls int
}

func (m *MockTxManager) WithTx(_ context.Context, fn func(tx postgres.Executor) error) error {
	m.Calls++
	return fn(nil)
}

type MockBlobStore struct {
	Bucket, Key string
	Body        string
}

func (m *MockBlobStore) Put(_ context.Context, bucket, key, _ string, body io.Reader) (string, error) {
	data, _ := io.ReadAll(body)
	m.Bucket, m.Key, m.Body = bucket, key, string(data)
	return "http://files.local/" + bucket + "/" + key, nil
}

func statuses() map[string]int64 {
	return map[string]int64{"editing": 1, "submitted": 2, "approved": 3}
}

func ptr[T any](v T) *T { return &v }

var admin = auth.Session{UserID: "root", UserType: auth.UserTypeSuperAdmin}

func TestResolveOpenReport(t *testing.T) {
	repo := &MockRepository{Report: &model.FinanceReport{ID: 5, Status: ptr("editing")}}
	uc := NewFinanceUseCase(repo, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())

	report, err := uc.ResolveOpenReport(context.Background(), nil, 4, "March", "2024")
	require.NoError(t, err)
	assert.Equal(t, int64(5), report.ID)
}

func TestResolveOpenReport_Missing(t *testing.T) {
	uc := NewFinanceUseCase(&MockRepository{}, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())

	_, err := uc.ResolveOpenReport(context.Background(), nil, 4, "March", "2024")
	assert.ErrorIs(t, err, finance.ErrLedgerNotFound)

	var ledgerErr *finance.LedgerError
	require.True(t, errors.As(err, &ledgerErr))
	assert.Equal(t, "March", ledgerErr.Month)
	assert.Equal(t, "2024", ledgerErr.Year)
}

func TestResolveOpenReport_Closed(t *testing.T) {
	repo := &MockRepository{Report: &model.FinanceReport{ID: 5, Status: ptr("submitted")}}
	uc := NewFinanceUseCase(repo, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())

	_, err := uc.ResolveOpenReport(context.Background(), nil, 4, "March", "2024")
	assert.ErrorIs(t, err, finance.ErrLedgerClosed)
}

func TestRecordSale(t *testing.T) {
	repo := &MockRepository{}
	uc := NewFinanceUseCase(repo, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())

	item, err := uc.RecordSale(context.Background(), nil, 5, decimal.NewFromInt(25))
	require.NoError(t, err)
	assert.Equal(t, finance.SaleDescription, item.Description)
	assert.True(t, item.Debit.Valid)
	assert.True(t, decimal.NewFromInt(25).Equal(item.Debit.Decimal))
	assert.True(t, item.Credit.Decimal.IsZero())
	assert.True(t, decimal.NewFromInt(25).Equal(item.Balance))
	assert.Nil(t, item.DebitType)
	assert.Nil(t, item.CreditType)
}

func TestListReports_ScopesAndLookups(t *testing.T) {
	repo := &MockRepository{
		Statuses: statuses(),
		Phases:   map[string]int64{"Phase 1": 7},
		Regions:  map[string]int64{"Central": 9},
	}
	uc := NewFinanceUseCase(repo, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())

	s := auth.Session{UserID: "u", UserGroupName: auth.UserGroupTP, OrganizationID: ptr(int64(3))}
	_, total, err := uc.ListReports(context.Background(), s, dto.ReportFilters{
		Status: "submitted", Phase: "Phase 1", Region: "Central", Page: 2, PerPage: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	q := repo.LastQuery
	require.NotNil(t, q)
	assert.Equal(t, int64(3), *q.OrganizationID)
	assert.Equal(t, int64(2), *q.StatusID)
	assert.Equal(t, int64(7), *q.PhaseID)
	assert.Equal(t, int64(9), *q.RegionID)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 20, q.PerPage)
}

func TestListReports_SiteUserScopedToSite(t *testing.T) {
	repo := &MockRepository{}
	uc := NewFinanceUseCase(repo, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())

	_, _, err := uc.ListReports(context.Background(), auth.Session{UserID: "u", SiteProfileID: ptr(int64(4))}, dto.ReportFilters{SiteIDs: []int64{8}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), *repo.LastQuery.SiteID)
	assert.Empty(t, repo.LastQuery.SiteIDs)
	assert.Equal(t, 1, repo.LastQuery.Page)
	assert.Equal(t, 10, repo.LastQuery.PerPage)
}

func TestListReports_UnknownNamesGiveEmptyPage(t *testing.T) {
	repo := &MockRepository{Statuses: statuses()}
	uc := NewFinanceUseCase(repo, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())

	for _, f := range []dto.ReportFilters{{Status: "archived"}, {Phase: "Phase 9"}, {Region: "Atlantis"}} {
		reports, total, err := uc.ListReports(context.Background(), admin, f)
		require.NoError(t, err)
		assert.Empty(t, reports)
		assert.Zero(t, total)
	}
	assert.Nil(t, repo.LastQuery)
}

func TestUpdateStatus_SubmittedRollsOver(t *testing.T) {
	repo := &MockRepository{
		Report:   &model.FinanceReport{ID: 5, SiteID: 4, Month: "December", Year: "2024", Status: ptr("editing")},
		Statuses: statuses(),
	}
	tx := &MockTxManager{}
	uc := NewFinanceUseCase(repo, tx, &MockBlobStore{}, logger.NewNop())

	report, err := uc.UpdateStatus(context.Background(), admin, dto.StatusUpdate{
		ReportID: 5, Status: "submitted", BalanceForward: ptr(decimal.RequireFromString("120.50")),
	})
	require.NoError(t, err)
	assert.Equal(t, "submitted", *report.Status)
	assert.Equal(t, int64(2), *repo.StatusSet)
	assert.Equal(t, 1, tx.Calls)

	require.Len(t, repo.Inserted, 1)
	next := repo.Inserted[0]
	assert.Equal(t, int64(4), next.SiteID)
	assert.Equal(t, "January", next.Month)
	assert.Equal(t, "2025", next.Year)
	assert.Equal(t, int64(1), *next.StatusID)
	assert.True(t, decimal.RequireFromString("120.50").Equal(next.BalanceForward))
}

func TestUpdateStatus_NoRolloverWithoutBalance(t *testing.T) {
	repo := &MockRepository{
		Report:   &model.FinanceReport{ID: 5, SiteID: 4, Month: "March", Year: "2024"},
		Statuses: statuses(),
	}
	uc := NewFinanceUseCase(repo, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())

	_, err := uc.UpdateStatus(context.Background(), admin, dto.StatusUpdate{ReportID: 5, Status: "submitted"})
	require.NoError(t, err)
	assert.Empty(t, repo.Inserted)

	_, err = uc.UpdateStatus(context.Background(), admin, dto.StatusUpdate{ReportID: 5, Status: "approved", BalanceForward: ptr(decimal.NewFromInt(1))})
	require.NoError(t, err)
	assert.Empty(t, repo.Inserted)
}

func TestUpdateStatus_ExistingNextReportUntouched(t *testing.T) {
	repo := &MockRepository{
		Report:       &model.FinanceReport{ID: 5, SiteID: 4, Month: "March", Year: "2024"},
		Statuses:     statuses(),
		InsertExists: true,
	}
	uc := NewFinanceUseCase(repo, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())

	_, err := uc.UpdateStatus(context.Background(), admin, dto.StatusUpdate{ReportID: 5, Status: "submitted", BalanceForward: ptr(decimal.NewFromInt(1))})
	require.NoError(t, err)
	assert.Empty(t, repo.Inserted)
}

func TestUpdateStatus_Errors(t *testing.T) {
	uc := NewFinanceUseCase(&MockRepository{Statuses: statuses()}, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())
	_, err := uc.UpdateStatus(context.Background(), admin, dto.StatusUpdate{ReportID: 5, Status: "submitted"})
	assert.ErrorIs(t, err, finance.ErrReportNotFound)

	repo := &MockRepository{Report: &model.FinanceReport{ID: 5}, Statuses: statuses()}
	uc = NewFinanceUseCase(repo, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())
	_, err = uc.UpdateStatus(context.Background(), admin, dto.StatusUpdate{ReportID: 5, Status: "archived"})
	assert.ErrorIs(t, err, finance.ErrUnknownStatus)
}

func TestUpdateStatus_OtherSiteIsNotFound(t *testing.T) {
	repo := &MockRepository{
		Report:   &model.FinanceReport{ID: 5, SiteID: 9, Month: "March", Year: "2024", Status: ptr("editing")},
		Statuses: statuses(),
	}
	uc := NewFinanceUseCase(repo, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())

	_, err := uc.UpdateStatus(context.Background(), auth.Session{UserID: "u", SiteProfileID: ptr(int64(4))},
		dto.StatusUpdate{ReportID: 5, Status: "approved"})
	assert.ErrorIs(t, err, finance.ErrReportNotFound)
	assert.Nil(t, repo.StatusSet)
	assert.Equal(t, "editing", *repo.Report.Status)
}

func TestUpdateStatus_ScopeFollowsSession(t *testing.T) {
	tests := []struct {
		name    string
		session auth.Session
		want    dto.ReportScope
	}{
		{"super admin", admin, dto.ReportScope{}},
		{"tp admin", auth.Session{UserID: "u", UserGroupName: auth.UserGroupTP, OrganizationID: ptr(int64(3))}, dto.ReportScope{OrganizationID: ptr(int64(3))}},
		{"site user", auth.Session{UserID: "u", SiteProfileID: ptr(int64(9))}, dto.ReportScope{SiteID: ptr(int64(9))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockRepository{
				Report:   &model.FinanceReport{ID: 5, SiteID: 9, Month: "March", Year: "2024"},
				Statuses: statuses(),
			}
			uc := NewFinanceUseCase(repo, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())

			_, err := uc.UpdateStatus(context.Background(), tt.session, dto.StatusUpdate{ReportID: 5, Status: "approved"})
			require.NoError(t, err)
			require.NotNil(t, repo.LastScope)
			assert.Equal(t, tt.want, *repo.LastScope)
		})
	}
}

func TestUpdateStatus_WithoutScopeTouchesNothing(t *testing.T) {
	repo := &MockRepository{Report: &model.FinanceReport{ID: 5, SiteID: 9}, Statuses: statuses()}
	tx := &MockTxManager{}
	uc := NewFinanceUseCase(repo, tx, &MockBlobStore{}, logger.NewNop())

	_, err := uc.UpdateStatus(context.Background(), auth.Session{UserID: "u"}, dto.StatusUpdate{ReportID: 5, Status: "approved"})
	assert.ErrorIs(t, err, finance.ErrReportNotFound)
	assert.Zero(t, tx.Calls)
	assert.Nil(t, repo.LastScope)
}

func TestListItems_Scoped(t *testing.T) {
	repo := &MockRepository{Report: &model.FinanceReport{ID: 5, SiteID: 9}}
	uc := NewFinanceUseCase(repo, &MockTxManager{}, &MockBlobStore{}, logger.NewNop())

	items, total, err := uc.ListItems(context.Background(), auth.Session{UserID: "u", SiteProfileID: ptr(int64(9))}, 5, 0, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)

	_, _, err = uc.ListItems(context.Background(), auth.Session{UserID: "u", SiteProfileID: ptr(int64(4))}, 5, 1, 10)
	assert.ErrorIs(t, err, finance.ErrReportNotFound)

	_, _, err = uc.ListItems(context.Background(), auth.Session{UserID: "u"}, 5, 1, 10)
	assert.ErrorIs(t, err, finance.ErrReportNotFound)
}

func TestUploadAttachment(t *testing.T) {
	blobs := &MockBlobStore{}
	uc := NewFinanceUseCase(&MockRepository{}, &MockTxManager{}, blobs, logger.NewNop()).(*financeUseCase)
	uc.now = func() time.Time { return time.UnixMilli(1700000000123) }

	u, err := uc.UploadAttachment(context.Background(), "C:\\docs\\slip.pdf", "application/pdf", strings.NewReader("pdf"))
	require.NoError(t, err)
	assert.Equal(t, finance.AttachmentBucket, blobs.Bucket)
	assert.True(t, strings.HasPrefix(blobs.Key, "1700000000123-slip.pdf-"), blobs.Key)
	assert.Len(t, blobs.Key, len("1700000000123-slip.pdf-")+36)
	assert.Equal(t, "pdf", blobs.Body)
	assert.Contains(t, u, "/finance-report/")
}
