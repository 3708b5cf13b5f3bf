package relay

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/outbox"
	"github.com/fekuna/omnipos-sales-service/pkg/broker"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"go.uber.org/zap"
)

const (
	DefaultBatch  = 50
	DefaultPeriod = 2 * time.Second
)

// Relay moves committed outbox rows to the broker.
type Relay struct {
	repo      outbox.Repository
	tx        postgres.TxManager
	publisher broker.Publisher
	logger    logger.ZapLogger
	batch     int
	period    time.Duration
}

func NewRelay(repo outbox.Repository, tx postgres.TxManager, publisher broker.Publisher, log logger.ZapLogger, batch int, period time.Duration) *Relay {
	if batch <= 0 {
		batch = DefaultBatch
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Relay{
		repo:      repo,
		tx:        tx,
		publisher: publisher,
		logger:    log,
		batch:     batch,
		period:    period,
	}
}

func (r *Relay) Start(ctx context.Context) {
	r.logger.Info("Starting outbox relay", zap.Int("batch", r.batch), zap.Duration("period", r.period))
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Stopping outbox relay")
			return
		case <-ticker.C:
			for {
				n, err := r.Flush(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					r.logger.Error("Failed to relay outbox batch", zap.Error(err))
					break
				}
				// a full batch usually means more rows are waiting
				if n < r.batch {
					break
				}
			}
		}
	}
}

// Flush publishes one batch and returns how many rows were sent.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	sent := 0
	err := r.tx.WithTx(ctx, func(tx postgres.Executor) error {
		records, err := r.repo.FetchPending(ctx, tx, r.batch)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		msgs := make([]broker.Message, 0, len(records))
		ids := make([]int64, 0, len(records))
		for _, rec := range records {
			msgs = append(msgs, broker.Message{
				Topic:   rec.Topic,
				Key:     rec.Key,
				Value:   rec.Payload,
				Headers: map[string]string{"event_id": rec.EventID},
			})
			ids = append(ids, rec.ID)
		}

		if err := r.publisher.Publish(ctx, msgs...); err != nil {
			return err
		}
		if err := r.repo.MarkSent(ctx, tx, ids); err != nil {
			return err
		}
		sent = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if sent > 0 {
		r.logger.Debug("Relayed outbox events", zap.Int("count", sent))
	}
	return sent, nil
}
