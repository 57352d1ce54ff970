package domain

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/procurement/internal/locale"
	"github.com/jafarshop/procurement/pkg/errors"
)

// CurrencyScale is the number of decimal places subtotals are rounded to,
// matching the API's decimal(15,2) columns.
const CurrencyScale = 2

// Field names used in validation errors.
const (
	FieldSupplier = "supplier"
	FieldItem     = "item"
	FieldQuantity = "quantity"
	FieldCart     = "cart"
	FieldPrice    = "price"
)

// CartLine is one product and quantity within a pending order. Name and
// price are copied from the catalog when the line is added.
type CartLine struct {
	ItemID    int64           `json:"itemId"`
	ItemName  string          `json:"itemName"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func (l *CartLine) recompute() {
	l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(CurrencyScale)
}

// Cart holds at most one line per item, in the order items were first added.
// The zero value is an empty cart.
type Cart struct {
	lines []CartLine
}

// Add merges quantity into the existing line for the item or appends a new
// line. Quantity must already be validated as positive.
func (c *Cart) Add(item CatalogItem, quantity int) CartLine {
	if i := c.indexOf(item.ID); i >= 0 {
		c.lines[i].Quantity += quantity
		c.lines[i].recompute()
		return c.lines[i]
	}

	line := CartLine{
		ItemID:    item.ID,
		ItemName:  item.Name,
		UnitPrice: item.Price,
		Quantity:  quantity,
	}
	line.recompute()
	c.lines = append(c.lines, line)
	return line
}

// Remove deletes the line for itemID and reports whether one existed.
func (c *Cart) Remove(itemID int64) bool {
	i := c.indexOf(itemID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// GrandTotal sums the line subtotals. Zero for an empty cart.
func (c *Cart) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal)
	}
	return total
}

func (c *Cart) Reset() {
	c.lines = nil
}

// Request builds the outbound order for supplierID. A missing supplier and
// an empty cart are reported as separate fields.
func (c *Cart) Request(supplierID int64) (PurchaseOrderRequest, error) {
	verr := errors.NewValidationError()
	if supplierID <= 0 {
		verr.Add(FieldSupplier, locale.MsgSupplierRequired)
	}
	if c.IsEmpty() {
		verr.Add(FieldCart, locale.MsgCartEmpty)
	}
	if err := verr.OrNil(); err != nil {
		return PurchaseOrderRequest{}, err
	}

	details := make([]PurchaseOrderLine, 0, len(c.lines))
	for _, line := range c.lines {
		details = append(details, PurchaseOrderLine{ItemID: line.ItemID, Quantity: line.Quantity})
	}

	return PurchaseOrderRequest{
		SupplierID: supplierID,
		Details:    details,
	}, nil
}

func (c *Cart) indexOf(itemID int64) int {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// ParseQuantity reads a quantity typed into a form. Missing, non-numeric,
// zero and negative input all fail.
func ParseQuantity(raw string) (int, bool) {
	qty, err := strconv.Atoi(raw)
	if err != nil || qty < 1 {
		return 0, false
	}
	return qty, true
}

// ParseID reads an identifier typed into a form; zero means "none selected".
func ParseID(raw string) (int64, bool) {
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
