package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/procurement/internal/domain"
	"github.com/jafarshop/procurement/internal/procurement"
)

type fakeAPI struct {
	mu        sync.Mutex
	suppliers []domain.Supplier
	items     map[int64][]domain.CatalogItem
	listErr   error
	itemsErr  map[int64]error

	// ListItems for a gated supplier signals entered, then waits on the gate
	gates   map[int64]chan struct{}
	entered chan int64

	// CreatePurchaseOrder signals submitting, then waits on submitGate when set
	submitGate chan struct{}
	submitting chan struct{}
	submitErr  error
	orderTotal decimal.Decimal
	requests   []domain.PurchaseOrderRequest

	deleted  []int64
	deleteFn func(id int64) error
	saved    []procurement.ItemInput
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		suppliers: []domain.Supplier{
			{ID: 1, Name: "PT Sumber Makmur"},
			{ID: 2, Name: "CV Kantor Jaya"},
		},
		items: map[int64][]domain.CatalogItem{
			1: {
				{ID: 1, Name: "Kertas A4", Stock: 20, Price: decimal.NewFromInt(1000), SupplierID: 1},
				{ID: 2, Name: "Tinta Printer", Stock: 5, Price: decimal.NewFromInt(2500), SupplierID: 1},
			},
			2: {
				{ID: 3, Name: "Map Plastik", Stock: 0, Price: decimal.NewFromInt(750), SupplierID: 2},
			},
		},
		itemsErr:   map[int64]error{},
		gates:      map[int64]chan struct{}{},
		entered:    make(chan int64, 8),
		submitting: make(chan struct{}, 8),
	}
}

func (f *fakeAPI) gate(supplierID int64) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[supplierID] = ch
	return ch
}

func (f *fakeAPI) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Supplier(nil), f.suppliers...), nil
}

func (f *fakeAPI) ListItems(ctx context.Context, supplierID int64) ([]domain.CatalogItem, error) {
	f.mu.Lock()
	gate := f.gates[supplierID]
	err := f.itemsErr[supplierID]
	var items []domain.CatalogItem
	if supplierID == 0 {
		for _, list := range f.items {
			items = append(items, list...)
		}
	} else {
		items = append(items, f.items[supplierID]...)
	}
	f.mu.Unlock()

	if gate != nil {
		f.entered <- supplierID
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *fakeAPI) CreatePurchaseOrder(ctx context.Context, req domain.PurchaseOrderRequest) (*domain.PurchaseOrder, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate := f.submitGate
	err := f.submitErr
	total := f.orderTotal
	f.mu.Unlock()

	if gate != nil {
		f.submitting <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &domain.PurchaseOrder{ID: 42, SupplierID: req.SupplierID, GrandTotal: total}, nil
}

func (f *fakeAPI) submitCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) CreateSupplier(ctx context.Context, in procurement.SupplierInput) (*domain.Supplier, error) {
	return &domain.Supplier{ID: 10, Name: in.Name, Email: in.Email, Address: in.Address}, nil
}

func (f *fakeAPI) UpdateSupplier(ctx context.Context, id int64, in procurement.SupplierInput) (*domain.Supplier, error) {
	return &domain.Supplier{ID: id, Name: in.Name, Email: in.Email, Address: in.Address}, nil
}

func (f *fakeAPI) DeleteSupplier(ctx context.Context, id int64) error {
	return f.delete(id)
}

func (f *fakeAPI) CreateItem(ctx context.Context, in procurement.ItemInput) (*domain.CatalogItem, error) {
	f.mu.Lock()
	f.saved = append(f.saved, in)
	f.mu.Unlock()
	return &domain.CatalogItem{ID: 11, Name: in.Name, Stock: in.Stock, Price: in.Price, SupplierID: in.SupplierID}, nil
}

func (f *fakeAPI) UpdateItem(ctx context.Context, id int64, in procurement.ItemInput) (*domain.CatalogItem, error) {
	f.mu.Lock()
	f.saved = append(f.saved, in)
	f.mu.Unlock()
	return &domain.CatalogItem{ID: id, Name: in.Name, Stock: in.Stock, Price: in.Price, SupplierID: in.SupplierID}, nil
}

func (f *fakeAPI) DeleteItem(ctx context.Context, id int64) error {
	return f.delete(id)
}

func (f *fakeAPI) delete(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteFn != nil {
		if err := f.deleteFn(id); err != nil {
			return err
		}
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSessions struct {
	mu      sync.Mutex
	active  bool
	cleared int
}

func (s *fakeSessions) HasSession(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *fakeSessions) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.cleared++
	return nil
}

func (s *fakeSessions) clearCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}
