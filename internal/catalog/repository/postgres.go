package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-sales-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const itemColumns = `
        i.id, i.site_id, i.category_id, i.type_id, i.name, i.description, i.barcode,
        i.price, i.quantity, i.created_at, i.updated_at, i.updated_by, i.deleted_at,
        (SELECT a.file_path FROM nd_inventory_attachment a
          WHERE a.inventory_id = i.id ORDER BY a.id LIMIT 1) AS image_url`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ResolveSiteID(ctx context.Context, siteProfileID int64) (*int64, error) {
	var id int64
	err := r.DB.GetContext(ctx, &id, `SELECT id FROM nd_site WHERE site_profile_id = $1 LIMIT 1`, siteProfileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

func (r *PGRepository) FindItems(ctx context.Context, f *dto.ItemFilters) ([]model.Inventory, error) {
	conditions := []string{"i.deleted_at IS NULL"}
	args := map[string]interface{}{}

	if f.SiteID != nil {
		conditions = append(conditions, "i.site_id = :site_id")
		args["site_id"] = *f.SiteID
	}
	if f.ExcludeCategoryID != nil {
		conditions = append(conditions, "(i.category_id <> :exclude_category_id OR i.category_id IS NULL)")
		args["exclude_category_id"] = *f.ExcludeCategoryID
	}
	if f.Query != "" {
		conditions = append(conditions, "(i.name ILIKE :search OR i.description ILIKE :search OR i.barcode ILIKE :search)")
		args["search"] = "%" + f.Query + "%"
	}
	if len(f.IDs) > 0 {
		conditions = append(conditions, "i.id IN (:ids)")
		args["ids"] = f.IDs
	}

	query := "SELECT" + itemColumns + " FROM nd_inventory i WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY i.created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	items := []model.Inventory{}
	if err := r.selectNamed(ctx, &items, query, args); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PGRepository) FindServices(ctx context.Context, f *dto.ServiceFilters) ([]model.CategoryService, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	from := "nd_category_service s"
	selectClause := "SELECT s.id, s.eng, s.bm, s.image_url, s.created_at"
	if f.AssetSiteID != nil {
		// tp sites only sell services their active assets can deliver
		selectClause = "SELECT DISTINCT s.id, s.eng, s.bm, s.image_url, s.created_at"
		from = `nd_asset a
        JOIN nd_asset_type_services ats ON ats.asset_type_id = a.type_id
        JOIN nd_category_service s ON s.id = ats.service_id`
		conditions = append(conditions, "a.site_id = :asset_site_id", "a.is_active = TRUE", "a.deleted_at IS NULL")
		args["asset_site_id"] = *f.AssetSiteID
	}
	if f.Query != "" {
		conditions = append(conditions, "(s.eng ILIKE :search OR s.bm ILIKE :search)")
		args["search"] = "%" + f.Query + "%"
	}
	if len(f.IDs) > 0 {
		conditions = append(conditions, "s.id IN (:ids)")
		args["ids"] = f.IDs
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := selectClause + " FROM " + from + whereClause + " ORDER BY s.created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	services := []model.CategoryService{}
	if err := r.selectNamed(ctx, &services, query, args); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *PGRepository) FindCharge(ctx context.Context, id int64) (*model.ServiceCharge, error) {
	var charge model.ServiceCharge
	err := r.DB.GetContext(ctx, &charge, `SELECT id, category_id, description, fee FROM nd_service_charge WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &charge, nil
}

func (r *PGRepository) ListCharges(ctx context.Context, serviceID int64) ([]model.ServiceCharge, error) {
	charges := []model.ServiceCharge{}
	err := r.DB.SelectContext(ctx, &charges,
		`SELECT id, category_id, description, fee FROM nd_service_charge WHERE category_id = $1 ORDER BY id`, serviceID)
	return charges, err
}

// selectNamed binds :name parameters, expands IN lists and rebinds for postgres.
func (r *PGRepository) selectNamed(ctx context.Context, dest interface{}, query string, args map[string]interface{}) error {
	q, params, err := sqlx.Named(query, args)
	if err != nil {
		return err
	}
	q, params, err = sqlx.In(q, params...)
	if err != nil {
		return err
	}
	return r.DB.SelectContext(ctx, dest, r.DB.Rebind(q), params...)
}
