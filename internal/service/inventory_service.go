package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/jafarshop/procurement/internal/domain"
	"github.com/jafarshop/procurement/internal/locale"
	"github.com/jafarshop/procurement/internal/notify"
	"github.com/jafarshop/procurement/internal/procurement"
	"github.com/jafarshop/procurement/pkg/errors"
)

// InventoryAPI is the part of the procurement API behind the dashboard and
// the item and supplier pages.
type InventoryAPI interface {
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	CreateSupplier(ctx context.Context, in procurement.SupplierInput) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, in procurement.SupplierInput) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error

	ListItems(ctx context.Context, supplierID int64) ([]domain.CatalogItem, error)
	CreateItem(ctx context.Context, in procurement.ItemInput) (*domain.CatalogItem, error)
	UpdateItem(ctx context.Context, id int64, in procurement.ItemInput) (*domain.CatalogItem, error)
	DeleteItem(ctx context.Context, id int64) error
}

type inventoryService struct {
	api      InventoryAPI
	sessions SessionGate
	printer  *message.Printer
	logger   *zap.Logger
}

// NewInventoryService creates a new inventory service. An API call rejected
// as unauthorized clears sessions.
func NewInventoryService(api InventoryAPI, sessions SessionGate, printer *message.Printer, logger *zap.Logger) *inventoryService {
	return &inventoryService{
		api:      api,
		sessions: sessions,
		printer:  printer,
		logger:   logger,
	}
}

// Dashboard computes the item count, the low stock count and the total
// stock value over the whole catalog.
func (s *inventoryService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	items, err := s.api.ListItems(ctx, 0)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	stats := &domain.DashboardStats{
		TotalItems:      len(items),
		TotalStockValue: decimal.Zero,
	}
	for _, item := range items {
		if item.Stock < domain.LowStockThreshold {
			stats.LowStockItems++
		}
		stats.TotalStockValue = stats.TotalStockValue.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Stock))))
	}
	stats.TotalStockValue = stats.TotalStockValue.Round(domain.CurrencyScale)

	return stats, nil
}

// Items lists the catalog with stock status, optionally for one supplier
func (s *inventoryService) Items(ctx context.Context, supplierID int64) ([]ItemView, error) {
	items, err := s.api.ListItems(ctx, supplierID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, ItemView{CatalogItem: item, Status: domain.StockStatusOf(item.Stock)})
	}
	return views, nil
}

// FindItems searches every supplier's catalog for names containing query,
// case-insensitively. Suppliers whose catalog fails to load are skipped.
func (s *inventoryService) FindItems(ctx context.Context, query string) ([]ItemMatch, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		verr := errors.NewValidationError()
		verr.Add(domain.FieldItem, locale.MsgItemRequired)
		return nil, verr
	}

	suppliers, err := s.api.ListSuppliers(ctx)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	matches := []ItemMatch{}
	for _, supplier := range suppliers {
		items, err := s.api.ListItems(ctx, supplier.ID)
		if err != nil {
			if errors.KindOf(err) == errors.KindAuth {
				return nil, s.fail(ctx, err)
			}
			s.logger.Warn("Skipping supplier catalog",
				zap.Int64("supplier_id", supplier.ID),
				zap.Error(err),
			)
			continue
		}

		for _, item := range items {
			if strings.Contains(strings.ToLower(item.Name), query) {
				matches = append(matches, ItemMatch{Item: item, SupplierName: supplier.Name})
			}
		}
	}

	return matches, nil
}

// Suppliers lists all suppliers
func (s *inventoryService) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers, err := s.api.ListSuppliers(ctx)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return suppliers, nil
}

// SaveSupplier creates a supplier when id is zero and updates it otherwise
func (s *inventoryService) SaveSupplier(ctx context.Context, id int64, in procurement.SupplierInput) (*domain.Supplier, error) {
	var (
		supplier *domain.Supplier
		err      error
	)
	if id == 0 {
		supplier, err = s.api.CreateSupplier(ctx, in)
	} else {
		supplier, err = s.api.UpdateSupplier(ctx, id, in)
	}
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.logger.Info("Supplier saved", zap.Int64("supplier_id", supplier.ID))
	return supplier, nil
}

// DeleteSupplier asks for confirmation and deletes the supplier. It reports
// false when the operator declined.
func (s *inventoryService) DeleteSupplier(ctx context.Context, notifier notify.Notifier, id int64, name string) (bool, error) {
	return s.confirmAndDelete(ctx, notifier, name, func() error {
		return s.api.DeleteSupplier(ctx, id)
	})
}

// SaveItem creates an item when id is zero and updates it otherwise
func (s *inventoryService) SaveItem(ctx context.Context, id int64, in procurement.ItemInput) (*domain.CatalogItem, error) {
	if in.Price.IsNegative() {
		verr := errors.NewValidationError()
		verr.Add(domain.FieldPrice, locale.MsgPriceInvalid)
		return nil, verr
	}

	var (
		item *domain.CatalogItem
		err  error
	)
	if id == 0 {
		item, err = s.api.CreateItem(ctx, in)
	} else {
		item, err = s.api.UpdateItem(ctx, id, in)
	}
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.logger.Info("Item saved", zap.Int64("item_id", item.ID))
	return item, nil
}

// DeleteItem asks for confirmation and deletes the item. It reports false
// when the operator declined.
func (s *inventoryService) DeleteItem(ctx context.Context, notifier notify.Notifier, id int64, name string) (bool, error) {
	return s.confirmAndDelete(ctx, notifier, name, func() error {
		return s.api.DeleteItem(ctx, id)
	})
}

func (s *inventoryService) confirmAndDelete(ctx context.Context, notifier notify.Notifier, name string, del func() error) (bool, error) {
	ok, err := notifier.Confirm(ctx, locale.MsgConfirmTitle, s.printer.Sprintf(locale.MsgConfirmDelete, name))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := del(); err != nil {
		apiErr := s.fail(ctx, err)
		notifier.Error(locale.MsgErrorTitle, apiErr.Message, apiErr.Detail)
		return false, apiErr
	}
	return true, nil
}

// fail classifies an API failure. An unauthorized answer ends the session.
func (s *inventoryService) fail(ctx context.Context, err error) *errors.APIError {
	apiErr := errors.Classify(err)
	if apiErr.Kind == errors.KindAuth {
		clearExpiredSession(ctx, s.sessions, s.logger)
	}
	return apiErr
}
