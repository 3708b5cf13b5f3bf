package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const insertMovementQuery = `
        INSERT INTO nd_inventory_movement (
            id, inventory_id, movement_type, quantity_change, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :inventory_id, :movement_type, :quantity_change, :quantity_before, :quantity_after,
            :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id int64, siteProfileID *int64) (*model.Inventory, error) {
	var inv model.Inventory
	query := `
        SELECT i.id, i.site_id, i.category_id, i.type_id, i.name, i.description, i.barcode,
               i.price, i.quantity, i.created_at, i.updated_at, i.updated_by, i.deleted_at
        FROM nd_inventory i
        LEFT JOIN nd_site s ON s.id = i.site_id
        WHERE i.id = $1 AND i.deleted_at IS NULL`
	args := []interface{}{id}

	if siteProfileID != nil {
		query += ` AND s.site_profile_id = $2`
		args = append(args, *siteProfileID)
	}

	err := r.DB.GetContext(ctx, &inv, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepository) LogMovement(ctx context.Context, ext postgres.Executor, m *model.InventoryMovement) error {
	_, err := ext.NamedExecContext(ctx, insertMovementQuery, m)
	return err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	items := []model.InventoryMovement{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ItemID != 0 {
		conditions = append(conditions, "inventory_id = :inventory_id")
		args["inventory_id"] = f.ItemID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM nd_inventory_movement"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM nd_inventory_movement" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	err = r.DB.SelectContext(ctx, &items, r.DB.Rebind(listQuery), listArgs...)
	return items, count, err
}

func (r *PGRepository) AdjustStockWithMovement(ctx context.Context, movement *model.InventoryMovement) (*model.Inventory, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// 1. Update Inventory; the guard keeps stock from going negative
	var inv model.Inventory
	err = tx.GetContext(ctx, &inv, `
        UPDATE nd_inventory
        SET quantity = quantity + $1, updated_at = $2, updated_by = $3
        WHERE id = $4 AND deleted_at IS NULL AND quantity + $1 >= 0
        RETURNING id, site_id, category_id, type_id, name, description, barcode,
                  price, quantity, created_at, updated_at, updated_by, deleted_at`,
		movement.QuantityChange, movement.CreatedAt, movement.CreatedBy, movement.InventoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}

	// 2. Log Movement
	movement.QuantityAfter = inv.Quantity
	movement.QuantityBefore = inv.Quantity - movement.QuantityChange
	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, movement); err != nil {
		return nil, fmt.Errorf("failed to log movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepository) DecrementStock(ctx context.Context, ext postgres.Executor, itemID int64, qty int, updatedBy *string) (int, bool, error) {
	var after int
	err := ext.GetContext(ctx, &after, `
        UPDATE nd_inventory
        SET quantity = quantity - $1, updated_at = NOW(), updated_by = $2
        WHERE id = $3 AND deleted_at IS NULL AND quantity >= $1
        RETURNING quantity`, qty, updatedBy, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return after, true, nil
}
