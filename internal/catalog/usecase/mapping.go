package usecase

import (
	"github.com/fekuna/omnipos-sales-service/internal/cart"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/shopspring/decimal"
)

const freePhotocopyPages = 10

var photocopyPageFee = decimal.RequireFromString("0.10")

// PrintingSubtotal prices a printing job. Photocopies are free up to ten pages and
// RM0.10 per page after that; other services charge the fee per page.
func PrintingSubtotal(serviceID int64, fee decimal.Decimal, pages int) decimal.Decimal {
	if serviceID == model.PhotocopyServiceID {
		if pages <= freePhotocopyPages {
			return decimal.Zero
		}
		return photocopyPageFee.Mul(decimal.NewFromInt(int64(pages - freePhotocopyPages))).Round(2)
	}
	return fee.Mul(decimal.NewFromInt(int64(pages))).Round(2)
}

func itemsFromInventory(rows []model.Inventory) []cart.Item {
	items := make([]cart.Item, 0, len(rows))
	for _, r := range rows {
		it := cart.Item{
			ID:        r.ID,
			Kind:      cart.KindPhysical,
			Name:      r.Name,
			UnitPrice: r.Price,
			Stock:     r.Quantity,
			SiteID:    r.SiteID,
		}
		if r.Description != nil {
			it.Description = *r.Description
		}
		if r.Barcode != nil {
			it.Barcode = *r.Barcode
		}
		if r.ImageURL != nil {
			it.ImageURL = *r.ImageURL
		}
		items = append(items, it)
	}
	return items
}

func itemsFromServices(rows []model.CategoryService) []cart.Item {
	items := make([]cart.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, serviceItem(r))
	}
	return items
}

// serviceItem maps a service with no price of its own; printing lines get priced later.
func serviceItem(s model.CategoryService) cart.Item {
	it := cart.Item{
		ID:        s.ID,
		Kind:      cart.KindService,
		Name:      s.Eng,
		UnitPrice: decimal.Zero,
	}
	if s.BM != nil {
		it.Description = *s.BM
	}
	if s.ImageURL != nil {
		it.ImageURL = *s.ImageURL
	}
	return it
}
