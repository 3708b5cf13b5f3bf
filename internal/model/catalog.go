package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PhotocopyServiceID is the service whose first pages are free.
const PhotocopyServiceID int64 = 3

type CategoryService struct {
	ID        int64     `db:"id" json:"id"`
	Eng       string    `db:"eng" json:"eng"`
	BM        *string   `db:"bm" json:"bm"`
	ImageURL  *string   `db:"image_url" json:"image_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ServiceCharge struct {
	ID          int64           `db:"id" json:"id"`
	ServiceID   int64           `db:"category_id" json:"service_id"`
	Description string          `db:"description" json:"description"`
	Fee         decimal.Decimal `db:"fee" json:"fee"`
}
