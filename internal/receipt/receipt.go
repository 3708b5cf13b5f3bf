package receipt

import (
	"strconv"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/shopspring/decimal"
)

type Line struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

type Member struct {
	ID       int64  `json:"id"`
	Fullname string `json:"fullname"`
}

type Receipt struct {
	TransactionID int64           `json:"transaction_id"`
	InvoiceID     string          `json:"invoice_id"`
	Date          time.Time       `json:"date"`
	Lines         []Line          `json:"items"`
	Member        *Member         `json:"customer"`
	PaymentMethod string          `json:"payment_method"`
	Remarks       string          `json:"remarks,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	Balance       decimal.Decimal `json:"balance"`
	CreatorName   string          `json:"creator_name"`
	SiteName      string          `json:"site_name"`
}

// Input is everything a committed checkout knows about the sale.
type Input struct {
	Transaction model.Transaction
	Items       []model.TransactionItem
	Member      *model.MemberProfile
	SiteName    string
	CreatorName string
}

// InvoiceID is "t" followed by the unix seconds of the transaction creation time.
func InvoiceID(createdAt time.Time) string {
	return "t" + strconv.FormatInt(createdAt.Unix(), 10)
}

// Build does not re-validate: the transaction has already been accepted.
func Build(in Input) *Receipt {
	r := &Receipt{
		TransactionID: in.Transaction.ID,
		InvoiceID:     InvoiceID(in.Transaction.CreatedAt),
		Date:          in.Transaction.TransactionDate,
		Lines:         make([]Line, 0, len(in.Items)),
		PaymentMethod: in.Transaction.Type,
		Tax:           decimal.Zero,
		PaymentAmount: in.Transaction.PaidAmount,
		CreatorName:   in.CreatorName,
		SiteName:      in.SiteName,
	}
	if in.Transaction.Remarks != nil {
		r.Remarks = *in.Transaction.Remarks
	}
	if in.Member != nil {
		r.Member = &Member{ID: in.Member.ID, Fullname: in.Member.Fullname}
	}

	subtotal := decimal.Zero
	for _, it := range in.Items {
		line := Line{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.PricePerUnit,
			Total:     it.TotalPrice,
		}
		if it.Description != nil {
			line.Description = *it.Description
		}
		r.Lines = append(r.Lines, line)
		subtotal = subtotal.Add(it.TotalPrice)
	}

	r.Subtotal = subtotal
	r.Total = subtotal.Add(r.Tax)
	r.Balance = r.PaymentAmount.Sub(r.Total)
	return r
}
