package repository

import (
	"context"

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

func (r *PGRepository) Insert(ctx context.Context, ext postgres.Executor, record *model.OutboxRecord) error {
	query := `
		INSERT INTO pos_outbox (event_id, topic, key, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return ext.GetContext(ctx, record, query, record.EventID, record.Topic, record.Key, record.Payload)
}

func (r *PGRepository) FetchPending(ctx context.Context, ext postgres.Executor, limit int) ([]model.OutboxRecord, error) {
	records := []model.OutboxRecord{}
	query := `
		SELECT id, event_id, topic, key, payload, created_at, sent_at
		FROM pos_outbox
		WHERE sent_at IS NULL
		ORDER BY id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	err := ext.SelectContext(ctx, &records, query, limit)
	return records, err
}

func (r *PGRepository) MarkSent(ctx context.Context, ext postgres.Executor, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE pos_outbox SET sent_at = NOW() WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	_, err = ext.ExecContext(ctx, ext.Rebind(query), args...)
	return err
}
