package httpx

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/cart"
	"github.com/fekuna/omnipos-sales-service/internal/catalog"
	"github.com/fekuna/omnipos-sales-service/internal/checkout"
	"github.com/fekuna/omnipos-sales-service/internal/finance"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/profile"
	"github.com/fekuna/omnipos-sales-service/internal/storage"
)

type Mapped struct {
	Status    int
	Code      string
	MessageID string
	Data      map[string]interface{}
}

type rule struct {
	target error
	status int
	code   string
}

// Order matters: the first matching rule wins.
var rules = []rule{
	{auth.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
	{ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},

	{checkout.ErrNoSite, http.StatusUnprocessableEntity, "no_site"},
	{checkout.ErrEmptyCart, http.StatusUnprocessableEntity, "empty_cart"},
	{checkout.ErrInvalidPaymentMethod, http.StatusUnprocessableEntity, "invalid_payment_method"},
	{checkout.ErrInsufficientPayment, http.StatusUnprocessableEntity, "insufficient_payment"},
	{cart.ErrQuantityLimit, http.StatusUnprocessableEntity, "quantity_limit"},
	{cart.ErrInvalidQuantity, http.StatusUnprocessableEntity, "invalid_quantity"},
	{cart.ErrQuantityTooLarge, http.StatusUnprocessableEntity, "quantity_too_large"},
	{cart.ErrLineNotFound, http.StatusNotFound, "line_not_found"},
	{catalog.ErrInvalidPages, http.StatusUnprocessableEntity, "invalid_pages"},
	{catalog.ErrInvalidKind, http.StatusUnprocessableEntity, "invalid_request"},
	{catalog.ErrItemNotFound, http.StatusNotFound, "item_not_found"},
	{catalog.ErrChargeNotFound, http.StatusNotFound, "item_not_found"},
	{profile.ErrMemberNotFound, http.StatusNotFound, "member_not_found"},

	{inventory.ErrInventoryNotFound, http.StatusNotFound, "item_not_found"},
	{inventory.ErrInsufficientInventory, http.StatusUnprocessableEntity, "insufficient_stock"},
	{inventory.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
	{inventory.ErrSystemBusy, http.StatusConflict, "system_busy"},

	{finance.ErrLedgerNotFound, http.StatusNotFound, "ledger_not_found"},
	{finance.ErrLedgerClosed, http.StatusConflict, "ledger_closed"},
	{finance.ErrReportNotFound, http.StatusNotFound, "report_not_found"},
	{finance.ErrUnknownStatus, http.StatusUnprocessableEntity, "unknown_status"},
	{finance.ErrInvalidMonth, http.StatusUnprocessableEntity, "invalid_month"},
	{storage.ErrInvalidKey, http.StatusUnprocessableEntity, "invalid_request"},

	{checkout.ErrPaymentFailed, http.StatusInternalServerError, "payment_failed"},
}

func Classify(err error) Mapped {
	for _, r := range rules {
		if errors.Is(err, r.target) {
			return Mapped{Status: r.status, Code: r.code, MessageID: "error." + r.code, Data: templateData(err)}
		}
	}
	return Mapped{Status: http.StatusInternalServerError, Code: "internal", MessageID: "error.internal"}
}

func templateData(err error) map[string]interface{} {
	var (
		limitErr  *cart.QuantityLimitError
		stockErr  *inventory.StockError
		ledgerErr *finance.LedgerError
		payErr    *checkout.InsufficientPaymentError
	)
	switch {
	case errors.As(err, &limitErr):
		return map[string]interface{}{"Name": limitErr.Name}
	case errors.As(err, &stockErr):
		return map[string]interface{}{"Name": stockErr.Name}
	case errors.As(err, &ledgerErr):
		return map[string]interface{}{"Month": ledgerErr.Month, "Year": ledgerErr.Year}
	case errors.As(err, &payErr):
		return map[string]interface{}{"Total": payErr.Total.StringFixed(2)}
	case errors.Is(err, cart.ErrQuantityTooLarge):
		return map[string]interface{}{"Max": cart.MaxLineQuantity}
	}
	return nil
}
