package service

import (
	"github.com/shopspring/decimal"

	"github.com/jafarshop/procurement/internal/domain"
)

// CartState is what the purchase page renders
type CartState struct {
	SupplierID int64                `json:"supplierId"`
	Lines      []domain.CartLine    `json:"lines"`
	GrandTotal decimal.Decimal      `json:"grandTotal"`
	Submitting bool                 `json:"submitting"`
	Catalog    []domain.CatalogItem `json:"catalog"`
	Suppliers  []domain.Supplier    `json:"suppliers"`
}

// SelectSupplierRequest is the supplierChanged event. A missing or zero
// supplier clears the selection.
type SelectSupplierRequest struct {
	SupplierID int64 `json:"supplierId" binding:"min=0"`
}

// AddLineRequest is the addLineRequested event. Missing fields decode as
// zero and fail validation.
type AddLineRequest struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// ItemView is a catalog item with its dashboard stock status
type ItemView struct {
	domain.CatalogItem
	Status domain.StockStatus `json:"status"`
}

// ItemMatch is a search hit together with the supplier that sells it
type ItemMatch struct {
	Item         domain.CatalogItem `json:"item"`
	SupplierName string             `json:"supplierName"`
}
