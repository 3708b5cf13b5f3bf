package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/cart"
	"github.com/fekuna/omnipos-sales-service/internal/catalog"
	"github.com/fekuna/omnipos-sales-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/cache"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/fekuna/omnipos-sales-service/pkg/search"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	IndexName       = "pos_catalog"
	cacheTTL        = 5 * time.Minute
	browseLimit     = 10
	cacheKeySpace   = "catalog:search"
	invalidateBatch = 100
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "long" },
			"site_id": { "type": "long" },
			"category_id": { "type": "long" },
			"name": { "type": "text" },
			"description": { "type": "text" },
			"barcode": { "type": "keyword" }
		}
	}
}`

// Searcher is the part of the search client the catalog needs.
type Searcher interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
}

type catalogUseCase struct {
	repo   catalog.Repository
	cache  *cache.RedisClient
	es     Searcher
	logger logger.ZapLogger
	sfg    singleflight.Group
}

// NewCatalogUseCase accepts a nil es, in which case every search runs on Postgres.
func NewCatalogUseCase(repo catalog.Repository, cache *cache.RedisClient, es Searcher, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

// scope is the visibility a session has on the catalog.
type scope struct {
	Unrestricted bool   `json:"unrestricted"`
	SiteID       *int64 `json:"site_id"`       // nd_site id for inventory
	AssetSiteID  *int64 `json:"asset_site_id"` // site profile for tp_site services
}

func (uc *catalogUseCase) resolveScope(ctx context.Context, s auth.Session) (scope, bool, error) {
	if s.IsSuperAdmin() {
		return scope{Unrestricted: true}, true, nil
	}
	return uc.siteScope(ctx, s)
}

// siteScope limits items to the session's own site, whatever the user type.
func (uc *catalogUseCase) siteScope(ctx context.Context, s auth.Session) (scope, bool, error) {
	var sc scope
	if s.IsTPSite() && s.SiteProfileID != nil {
		id := *s.SiteProfileID
		sc.AssetSiteID = &id
	}
	if s.SiteProfileID == nil {
		return sc, false, nil
	}
	siteID, err := uc.repo.ResolveSiteID(ctx, *s.SiteProfileID)
	if err != nil {
		return sc, false, fmt.Errorf("resolve site: %w", err)
	}
	if siteID == nil {
		return sc, false, nil
	}
	sc.SiteID = siteID
	return sc, true, nil
}

func (uc *catalogUseCase) Search(ctx context.Context, s auth.Session, filters dto.SearchFilters) ([]cart.Item, error) {
	if filters.Kind == "" {
		filters.Kind = dto.KindAll
	}
	switch filters.Kind {
	case dto.KindAll, dto.KindItems, dto.KindServices:
	default:
		return nil, catalog.ErrInvalidKind
	}

	sc, ok, err := uc.resolveScope(ctx, s)
	if err != nil {
		return nil, err
	}
	if filters.Kind != dto.KindServices && !ok {
		// a site user without a site sees nothing
		return []cart.Item{}, nil
	}

	key := uc.cacheKey(sc, filters)
	v, err, _ := uc.sfg.Do(key, func() (interface{}, error) {
		if cached, ok := uc.getCached(ctx, key); ok {
			return cached, nil
		}

		var items []cart.Item
		var err error
		if filters.Kind == dto.KindServices {
			items, err = uc.searchServices(ctx, sc, filters.Query)
		} else {
			items, err = uc.searchItems(ctx, sc, filters)
		}
		if err != nil {
			return nil, err
		}

		uc.setCached(ctx, key, items)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]cart.Item), nil
}

func (uc *catalogUseCase) searchItems(ctx context.Context, sc scope, filters dto.SearchFilters) ([]cart.Item, error) {
	f := &dto.ItemFilters{SiteID: sc.SiteID, Query: filters.Query}
	if filters.Kind == dto.KindItems {
		printing := model.PrintingCategoryID
		f.ExcludeCategoryID = &printing
	}
	if filters.Query == "" && filters.Kind == dto.KindAll {
		f.Limit = browseLimit
	}

	if filters.Query != "" && uc.es != nil {
		ids, err := uc.searchIndex(ctx, f)
		if err == nil {
			return uc.hydrate(ctx, sc, ids)
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	rows, err := uc.repo.FindItems(ctx, f)
	if err != nil {
		return nil, err
	}
	return itemsFromInventory(rows), nil
}

func (uc *catalogUseCase) searchIndex(ctx context.Context, f *dto.ItemFilters) ([]int64, error) {
	filter := []map[string]interface{}{}
	if f.SiteID != nil {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"site_id": *f.SiteID}})
	}
	boolQuery := map[string]interface{}{
		"must": []map[string]interface{}{
			{
				"query_string": map[string]interface{}{
					"query":  fmt.Sprintf("*%s*", f.Query),
					"fields": []string{"name^3", "description", "barcode"},
				},
			},
		},
		"filter": filter,
	}
	if f.ExcludeCategoryID != nil {
		boolQuery["must_not"] = []map[string]interface{}{
			{"term": map[string]interface{}{"category_id": *f.ExcludeCategoryID}},
		}
	}

	res, err := uc.es.Search(ctx, IndexName, map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"size":  50,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// hydrate reloads indexed ids from Postgres for current price and stock, keeping hit order.
func (uc *catalogUseCase) hydrate(ctx context.Context, sc scope, ids []int64) ([]cart.Item, error) {
	if len(ids) == 0 {
		return []cart.Item{}, nil
	}
	rows, err := uc.repo.FindItems(ctx, &dto.ItemFilters{SiteID: sc.SiteID, IDs: ids})
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Inventory, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	ordered := make([]model.Inventory, 0, len(rows))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return itemsFromInventory(ordered), nil
}

func (uc *catalogUseCase) searchServices(ctx context.Context, sc scope, query string) ([]cart.Item, error) {
	f := &dto.ServiceFilters{AssetSiteID: sc.AssetSiteID, Query: query}
	if query == "" && sc.AssetSiteID == nil {
		f.Limit = browseLimit
	}
	rows, err := uc.repo.FindServices(ctx, f)
	if err != nil {
		return nil, err
	}
	return itemsFromServices(rows), nil
}

func (uc *catalogUseCase) ListCharges(ctx context.Context, serviceID int64) ([]model.ServiceCharge, error) {
	return uc.repo.ListCharges(ctx, serviceID)
}

func (uc *catalogUseCase) QuotePrinting(ctx context.Context, s auth.Session, req dto.PrintingQuote) (*cart.Item, error) {
	if req.Pages < 1 {
		return nil, catalog.ErrInvalidPages
	}

	sc, _, err := uc.resolveScope(ctx, s)
	if err != nil {
		return nil, err
	}
	services, err := uc.repo.FindServices(ctx, &dto.ServiceFilters{AssetSiteID: sc.AssetSiteID, IDs: []int64{req.ServiceID}})
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("%w: service %d", catalog.ErrItemNotFound, req.ServiceID)
	}

	charge, err := uc.repo.FindCharge(ctx, req.ChargeID)
	if err != nil {
		return nil, err
	}
	if charge == nil || charge.ServiceID != req.ServiceID {
		return nil, catalog.ErrChargeNotFound
	}

	item := serviceItem(services[0])
	chargeID := charge.ID
	item.ChargeID = &chargeID
	item.Pages = req.Pages
	item.UnitPrice = PrintingSubtotal(req.ServiceID, charge.Fee, req.Pages)
	item.Description = fmt.Sprintf("%s × %d", charge.Description, req.Pages)
	return &item, nil
}

// LoadForCheckout reads items from the session's site only, since the sale posts to that site's ledger.
func (uc *catalogUseCase) LoadForCheckout(ctx context.Context, s auth.Session, refs []dto.LineRef) ([]cart.Item, error) {
	sc, ok, err := uc.siteScope(ctx, s)
	if err != nil {
		return nil, err
	}

	var itemIDs, serviceIDs []int64
	for _, ref := range refs {
		switch ref.Kind {
		case cart.KindPhysical:
			itemIDs = append(itemIDs, ref.ID)
		case cart.KindService:
			serviceIDs = append(serviceIDs, ref.ID)
		default:
			return nil, fmt.Errorf("%w: %q", catalog.ErrInvalidKind, ref.Kind)
		}
	}

	items := map[int64]cart.Item{}
	if len(itemIDs) > 0 && ok {
		rows, err := uc.repo.FindItems(ctx, &dto.ItemFilters{SiteID: sc.SiteID, IDs: itemIDs})
		if err != nil {
			return nil, err
		}
		for _, it := range itemsFromInventory(rows) {
			items[it.ID] = it
		}
	}
	services := map[int64]cart.Item{}
	if len(serviceIDs) > 0 {
		rows, err := uc.repo.FindServices(ctx, &dto.ServiceFilters{AssetSiteID: sc.AssetSiteID, IDs: serviceIDs})
		if err != nil {
			return nil, err
		}
		for _, it := range itemsFromServices(rows) {
			services[it.ID] = it
		}
	}

	out := make([]cart.Item, 0, len(refs))
	for _, ref := range refs {
		if ref.Kind == cart.KindPhysical {
			it, found := items[ref.ID]
			if !found {
				return nil, fmt.Errorf("%w: item %d", catalog.ErrItemNotFound, ref.ID)
			}
			out = append(out, it)
			continue
		}

		if _, found := services[ref.ID]; !found {
			return nil, fmt.Errorf("%w: service %d", catalog.ErrItemNotFound, ref.ID)
		}
		if ref.ChargeID != nil {
			priced, err := uc.QuotePrinting(ctx, s, dto.PrintingQuote{ServiceID: ref.ID, ChargeID: *ref.ChargeID, Pages: ref.Pages})
			if err != nil {
				return nil, err
			}
			out = append(out, *priced)
			continue
		}
		out = append(out, services[ref.ID])
	}
	return out, nil
}

func (uc *catalogUseCase) Reindex(ctx context.Context, s auth.Session) (int, error) {
	if uc.es == nil {
		return 0, errors.New("search index is not configured")
	}
	sc, ok, err := uc.resolveScope(ctx, s)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	if err := uc.es.CreateIndex(ctx, IndexName, indexMapping); err != nil {
		return 0, fmt.Errorf("create index: %w", err)
	}

	rows, err := uc.repo.FindItems(ctx, &dto.ItemFilters{SiteID: sc.SiteID})
	if err != nil {
		return 0, err
	}
	indexed := 0
	for _, r := range rows {
		doc := dto.IndexDocument{ID: r.ID, SiteID: r.SiteID, CategoryID: r.CategoryID, Name: r.Name}
		if r.Description != nil {
			doc.Description = *r.Description
		}
		if r.Barcode != nil {
			doc.Barcode = *r.Barcode
		}
		if err := uc.es.Index(ctx, IndexName, strconv.FormatInt(r.ID, 10), doc); err != nil {
			uc.logger.Error("failed to index item", zap.Int64("item_id", r.ID), zap.Error(err))
			continue
		}
		indexed++
	}
	return indexed, nil
}

// Invalidate drops cached searches for a site and the unrestricted views that include it.
func (uc *catalogUseCase) Invalidate(ctx context.Context, siteID *int64) {
	patterns := []string{fmt.Sprintf("%s:all:*", cacheKeySpace)}
	if siteID != nil {
		patterns = append(patterns, fmt.Sprintf("%s:%d:*", cacheKeySpace, *siteID))
	}
	for _, pattern := range patterns {
		if err := uc.deleteMatching(ctx, pattern); err != nil {
			uc.logger.Warn("catalog cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}

// deleteMatching walks the pattern with SCAN and deletes in batches.
func (uc *catalogUseCase) deleteMatching(ctx context.Context, pattern string) error {
	iter := uc.cache.Client.Scan(ctx, 0, pattern, invalidateBatch).Iterator()
	batch := make([]string, 0, invalidateBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) < invalidateBatch {
			continue
		}
		if err := uc.cache.Client.Del(ctx, batch...).Err(); err != nil {
			return err
		}
		batch = batch[:0]
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}
	return uc.cache.Client.Del(ctx, batch...).Err()
}

func (uc *catalogUseCase) cacheKey(sc scope, filters dto.SearchFilters) string {
	data, _ := json.Marshal(struct {
		Scope   scope             `json:"scope"`
		Filters dto.SearchFilters `json:"filters"`
	}{sc, filters})

	site := "all"
	if sc.SiteID != nil {
		site = strconv.FormatInt(*sc.SiteID, 10)
	}
	return fmt.Sprintf("%s:%s:%x", cacheKeySpace, site, md5.Sum(data))
}

func (uc *catalogUseCase) getCached(ctx context.Context, key string) ([]cart.Item, bool) {
	val, err := uc.cache.Client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			uc.logger.Warn("catalog cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var items []cart.Item
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, false
	}
	return items, true
}

func (uc *catalogUseCase) setCached(ctx context.Context, key string, items []cart.Item) {
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := uc.cache.Client.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		uc.logger.Warn("catalog cache set failed", zap.Error(err))
	}
}
