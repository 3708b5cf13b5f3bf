package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const transactionColumns = `id, site_profile_id, member_id, type, transaction_date, remarks, finance_item_id,
        paid_amount, idempotency_key, created_by, created_at`

func (r *PGRepository) FindByIdempotencyKey(ctx context.Context, siteProfileID int64, key string) (*model.Transaction, error) {
	var txn model.Transaction
	query := `SELECT ` + transactionColumns + `
        FROM nd_pos_transaction
        WHERE site_profile_id = $1 AND idempotency_key = $2`
	err := r.DB.GetContext(ctx, &txn, query, siteProfileID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *PGRepository) InsertTransaction(ctx context.Context, ext postgres.Executor, txn *model.Transaction) error {
	query := `
		INSERT INTO nd_pos_transaction (
			site_profile_id, member_id, type, transaction_date, remarks, finance_item_id,
			paid_amount, idempotency_key, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	return ext.GetContext(ctx, txn, query,
		txn.SiteProfileID, txn.MemberID, txn.Type, txn.TransactionDate, txn.Remarks, txn.FinanceItemID,
		txn.PaidAmount, txn.IdempotencyKey, txn.CreatedBy,
	)
}

func (r *PGRepository) InsertItems(ctx context.Context, ext postgres.Executor, items []model.TransactionItem) error {
	query := `
		INSERT INTO nd_pos_transaction_item (
			transaction_id, item_id, service_id, description, quantity,
			price_per_unit, total_price, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	for i := range items {
		it := &items[i]
		if err := ext.GetContext(ctx, it, query,
			it.TransactionID, it.ItemID, it.ServiceID, it.Description, it.Quantity,
			it.PricePerUnit, it.TotalPrice, it.CreatedBy,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepository) ListItems(ctx context.Context, transactionID int64) ([]model.TransactionItem, error) {
	items := []model.TransactionItem{}
	query := `
		SELECT ti.id, ti.transaction_id, ti.item_id, ti.service_id, ti.description, ti.quantity,
		       ti.price_per_unit, ti.total_price, ti.created_by, ti.created_at,
		       COALESCE(i.name, s.eng, '') AS name
		FROM nd_pos_transaction_item ti
		LEFT JOIN nd_inventory i ON i.id = ti.item_id
		LEFT JOIN nd_category_service s ON s.id = ti.service_id
		WHERE ti.transaction_id = $1
		ORDER BY ti.id
	`
	err := r.DB.SelectContext(ctx, &items, query, transactionID)
	return items, err
}
