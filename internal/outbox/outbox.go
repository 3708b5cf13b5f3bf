package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/google/uuid"
)

const EventSaleCompleted = "pos.sale.completed"

type Repository interface {
	Insert(ctx context.Context, ext postgres.Executor, record *model.OutboxRecord) error
	// FetchPending locks up to limit unsent rows for the lifetime of ext.
	FetchPending(ctx context.Context, ext postgres.Executor, limit int) ([]model.OutboxRecord, error)
	MarkSent(ctx context.Context, ext postgres.Executor, ids []int64) error
}

// Envelope is the JSON body written to the broker.
type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewRecord(topic, key, eventType string, payload interface{}) (*model.OutboxRecord, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	id := uuid.NewString()
	envelope, err := json.Marshal(Envelope{
		EventID:   id,
		EventType: eventType,
		Payload:   body,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	return &model.OutboxRecord{
		EventID: id,
		Topic:   topic,
		Key:     key,
		Payload: envelope,
	}, nil
}
