package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-sales-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/cache"
	"github.com/fekuna/omnipos-sales-service/pkg/search"
	"github.com/redis/go-redis/v9"
)

// MockRepository implements catalog.Repository for testing
type MockRepository struct {
	SiteIDs  map[int64]int64 // site profile -> nd_site
	Items    []model.Inventory
	Services []model.CategoryService
	Charges  []model.ServiceCharge
	Err      error

	ItemCalls    []dto.ItemFilters
	ServiceCalls []dto.ServiceFilters
}

func (m *MockRepository) ResolveSiteID(_ context.Context, siteProfileID int64) (*int64, error) {
	if id, ok := m.SiteIDs[siteProfileID]; ok {
		return &id, nil
	}
	return nil, nil
}

func (m *MockRepository) FindItems(_ context.Context, f *dto.ItemFilters) ([]model.Inventory, error) {
	m.ItemCalls = append(m.ItemCalls, *f)
	if m.Err != nil {
		return nil, m.Err
	}
	out := []model.Inventory{}
	for _, it := range m.Items {
		if f.SiteID != nil && (it.SiteID == nil || *it.SiteID != *f.SiteID) {
			continue
		}
		if f.ExcludeCategoryID != nil && it.CategoryID != nil && *it.CategoryID == *f.ExcludeCategoryID {
			continue
		}
		if len(f.IDs) > 0 && !contains(f.IDs, it.ID) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (m *MockRepository) FindServices(_ context.Context, f *dto.ServiceFilters) ([]model.CategoryService, error) {
	m.ServiceCalls = append(m.ServiceCalls, *f)
	if m.Err != nil {
		return nil, m.Err
	}
	out := []model.CategoryService{}
	for _, s := range m.Services {
		if len(f.IDs) > 0 && !contains(f.IDs, s.ID) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *MockRepository) FindCharge(_ context.Context, id int64) (*model.ServiceCharge, error) {
	for _, c := range m.Charges {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) ListCharges(_ context.Context, serviceID int64) ([]model.ServiceCharge, error) {
	out := []model.ServiceCharge{}
	for _, c := range m.Charges {
		if c.ServiceID == serviceID {
			out = append(out, c)
		}
	}
	return out, nil
}

// MockSearcher implements Searcher for testing
type MockSearcher struct {
	HitIDs  []int64
	Err     error
	Indexed []string
}

func (m *MockSearcher) CreateIndex(context.Context, string, string) error { return nil }

func (m *MockSearcher) Index(_ context.Context, _ string, id string, _ interface{}) error {
	m.Indexed = append(m.Indexed, id)
	return nil
}

func (m *MockSearcher) Search(context.Context, string, map[string]interface{}) (*search.SearchResponse, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	res := &search.SearchResponse{}
	for _, id := range m.HitIDs {
		res.Hits.Hits = append(res.Hits.Hits, search.Hit{ID: strconv.FormatInt(id, 10)})
	}
	res.Hits.Total.Value = len(m.HitIDs)
	return res, nil
}

var errBoom = errors.New("boom")

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func newTestCache(t *testing.T) (*cache.RedisClient, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := cache.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func ptr[T any](v T) *T { return &v }
