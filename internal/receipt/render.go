package receipt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fekuna/omnipos-sales-service/pkg/i18n"
	"github.com/shopspring/decimal"
)

const (
	width      = 40
	dateLayout = "02/01/2006 15:04"
)

// Render writes a plain-text receipt. A nil localizer prints message ids.
func Render(w io.Writer, r *Receipt, loc *i18n.Localizer) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("-", width)

	fmt.Fprintln(bw, center(r.SiteName))
	fmt.Fprintln(bw, center(loc.T("receipt.title", nil)))
	fmt.Fprintln(bw, rule)

	tw := tabwriter.NewWriter(bw, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "%s:\t%s\n", loc.T("receipt.invoice", nil), r.InvoiceID)
	fmt.Fprintf(tw, "%s:\t%s\n", loc.T("receipt.date", nil), r.Date.Format(dateLayout))
	fmt.Fprintf(tw, "%s:\t%s\n", loc.T("receipt.cashier", nil), r.CreatorName)
	customer := loc.T("receipt.walk_in", nil)
	if r.Member != nil {
		customer = r.Member.Fullname
	}
	fmt.Fprintf(tw, "%s:\t%s\n", loc.T("receipt.customer", nil), customer)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(bw, rule)

	tw = tabwriter.NewWriter(bw, 0, 0, 1, ' ', tabwriter.AlignRight)
	for _, l := range r.Lines {
		fmt.Fprintf(tw, "%s\t\t\n", l.Name)
		if l.Description != "" {
			fmt.Fprintf(tw, "  %s\t\t\n", l.Description)
		}
		fmt.Fprintf(tw, "  %d x %s\t%s\t\n", l.Quantity, money(l.UnitPrice), money(l.Total))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(bw, rule)

	tw = tabwriter.NewWriter(bw, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t%s\t\n", loc.T("receipt.subtotal", nil), money(r.Subtotal))
	fmt.Fprintf(tw, "%s\t%s\t\n", loc.T("receipt.tax", nil), money(r.Tax))
	fmt.Fprintf(tw, "%s\t%s\t\n", loc.T("receipt.total", nil), money(r.Total))
	fmt.Fprintf(tw, "%s\t%s\t\n", loc.T("receipt.payment_method", nil), strings.ToUpper(r.PaymentMethod))
	fmt.Fprintf(tw, "%s\t%s\t\n", loc.T("receipt.payment_amount", nil), money(r.PaymentAmount))
	fmt.Fprintf(tw, "%s\t%s\t\n", loc.T("receipt.balance", nil), money(r.Balance))
	if err := tw.Flush(); err != nil {
		return err
	}

	if r.Remarks != "" {
		fmt.Fprintln(bw, rule)
		fmt.Fprintf(bw, "%s: %s\n", loc.T("receipt.remarks", nil), r.Remarks)
	}
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, center(loc.T("receipt.thanks", nil)))
	return bw.Flush()
}

func money(d decimal.Decimal) string {
	return "RM " + d.StringFixed(2)
}

func center(s string) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", (width-len(s))/2) + s
}
