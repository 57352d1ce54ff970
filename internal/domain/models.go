package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier represents a supplier/vendor known to the procurement API
type Supplier struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// CatalogItem is a read-only snapshot of a purchasable item
type CatalogItem struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Stock      int             `json:"stock"`
	Price      decimal.Decimal `json:"price"`
	SupplierID int64           `json:"supplierId"`
}

// User is the profile kept alongside the bearer token
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// PurchaseOrderLine is one detail row of an outbound order
type PurchaseOrderLine struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"qty"`
}

// PurchaseOrderRequest is the body of POST /purchasings. Prices are not
// sent; the server computes them at commit time.
type PurchaseOrderRequest struct {
	SupplierID int64               `json:"supplierId"`
	Details    []PurchaseOrderLine `json:"details"`
}

// PurchaseOrder is the purchasing header returned by the API
type PurchaseOrder struct {
	ID         int64           `json:"id"`
	Date       time.Time       `json:"date"`
	SupplierID int64           `json:"supplierId"`
	UserID     int64           `json:"userId"`
	GrandTotal decimal.Decimal `json:"grandTotal"`

	Details []PurchaseOrderDetail `json:"details,omitempty"`
}

// PurchaseOrderDetail is a committed detail row with the server's subtotal
type PurchaseOrderDetail struct {
	ID           int64           `json:"id"`
	PurchasingID int64           `json:"purchasingId"`
	ItemID       int64           `json:"itemId"`
	Quantity     int             `json:"qty"`
	SubTotal     decimal.Decimal `json:"subTotal"`
}

// DashboardStats summarizes the inventory for the dashboard
type DashboardStats struct {
	TotalItems      int             `json:"totalItems"`
	LowStockItems   int             `json:"lowStockItems"`
	TotalStockValue decimal.Decimal `json:"totalStockValue"`
}
