package locale

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/message"
)

// FormatIDR renders a rupiah amount rounded to whole units with locale digit
// grouping, e.g. "Rp 4.500" for Indonesian and "Rp 4,500" for English.
func FormatIDR(p *message.Printer, amount decimal.Decimal) string {
	return p.Sprintf("%v %d", currency.NarrowSymbol(currency.IDR), amount.Round(0).IntPart())
}
