package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/jafarshop/procurement/internal/domain"
	"github.com/jafarshop/procurement/internal/locale"
	"github.com/jafarshop/procurement/internal/notify"
	"github.com/jafarshop/procurement/pkg/errors"
)

// CatalogAPI is the part of the procurement API the cart builder consumes.
type CatalogAPI interface {
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	ListItems(ctx context.Context, supplierID int64) ([]domain.CatalogItem, error)
	CreatePurchaseOrder(ctx context.Context, req domain.PurchaseOrderRequest) (*domain.PurchaseOrder, error)
}

// ErrSubmissionInProgress is returned for any cart change, and for a second
// submission, while an order is being submitted.
var ErrSubmissionInProgress = &errors.ErrInvalidStateTransition{
	From: domain.SubmissionSubmitting,
	To:   domain.SubmissionSubmitting,
}

// CartBuilder owns the pending purchase order for one page session: the
// selected supplier, its catalog, the cart and the submission state.
// Network calls run outside the lock. Notices go to the notifier carried by
// the call's context (notify.WithNotifier), or to the builder's own.
type CartBuilder struct {
	mu         sync.Mutex
	cart       domain.Cart
	supplierID int64
	catalog    []domain.CatalogItem
	generation uint64
	suppliers  []domain.Supplier
	state      domain.SubmissionState

	api      CatalogAPI
	sessions SessionGate
	notifier notify.Notifier
	printer  *message.Printer
	logger   *zap.Logger

	logoutDelay      time.Duration
	onSessionExpired func()
	expiry           *time.Timer
}

// NewCartBuilder creates a cart builder with an empty cart
func NewCartBuilder(
	api CatalogAPI,
	sessions SessionGate,
	notifier notify.Notifier,
	printer *message.Printer,
	logoutDelay time.Duration,
	logger *zap.Logger,
) *CartBuilder {
	return &CartBuilder{
		state:       domain.SubmissionIdle,
		api:         api,
		sessions:    sessions,
		notifier:    notifier,
		printer:     printer,
		logger:      logger,
		logoutDelay: logoutDelay,
	}
}

// OnSessionExpired registers fn to run logoutDelay after an auth failure
// cleared the session.
func (b *CartBuilder) OnSessionExpired(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onSessionExpired = fn
}

// Close stops a pending session-expired callback
func (b *CartBuilder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.expiry != nil {
		b.expiry.Stop()
		b.expiry = nil
	}
}

// Open gates the page on an existing session and loads the supplier list.
func (b *CartBuilder) Open(ctx context.Context) ([]domain.Supplier, error) {
	if !b.sessions.HasSession(ctx) {
		return nil, &errors.ErrUnauthorized{Message: "no active session"}
	}
	return b.LoadSuppliers(ctx)
}

// LoadSuppliers refreshes the selectable suppliers
func (b *CartBuilder) LoadSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers, err := b.api.ListSuppliers(ctx)
	if err != nil {
		return nil, b.report(ctx, err, locale.MsgLoadFailed)
	}

	b.mu.Lock()
	b.suppliers = suppliers
	b.mu.Unlock()

	b.logger.Debug("Suppliers loaded", zap.Int("count", len(suppliers)))
	return suppliers, nil
}

// SelectSupplier clears the cart, then loads the catalog for supplierID.
// Zero selects nothing and leaves the catalog empty. A catalog that arrives
// after a newer selection is dropped.
func (b *CartBuilder) SelectSupplier(ctx context.Context, supplierID int64) (CartState, error) {
	b.mu.Lock()
	if b.state == domain.SubmissionSubmitting {
		b.mu.Unlock()
		return b.Snapshot(), ErrSubmissionInProgress
	}
	b.cart.Reset()
	b.supplierID = supplierID
	b.catalog = nil
	b.generation++
	gen := b.generation
	b.mu.Unlock()

	if supplierID <= 0 {
		return b.Snapshot(), nil
	}

	items, err := b.api.ListItems(ctx, supplierID)

	b.mu.Lock()
	if gen != b.generation {
		b.mu.Unlock()
		b.logger.Debug("Discarding superseded catalog",
			zap.Int64("supplier_id", supplierID),
			zap.Uint64("generation", gen),
		)
		// The catalog is stale but a rejected token still ends the session.
		if err != nil && errors.KindOf(err) == errors.KindAuth {
			b.report(ctx, err, locale.MsgLoadFailed)
		}
		return b.Snapshot(), nil
	}
	if err == nil {
		b.catalog = items
	}
	b.mu.Unlock()

	if err != nil {
		return b.Snapshot(), b.report(ctx, err, locale.MsgLoadFailed)
	}

	b.logger.Debug("Catalog loaded",
		zap.Int64("supplier_id", supplierID),
		zap.Int("items", len(items)),
	)
	return b.Snapshot(), nil
}

// AddLine adds quantity of itemID from the loaded catalog, merging into an
// existing line. Field errors come back as *errors.ValidationError; an item
// missing from the catalog is a not-found error.
func (b *CartBuilder) AddLine(ctx context.Context, itemID int64, quantity int) (CartState, error) {
	line, err := b.addLine(itemID, quantity)
	if err != nil {
		if errors.KindOf(err) == errors.KindNotFound {
			b.report(ctx, err, locale.MsgErrorTitle)
		}
		return b.Snapshot(), err
	}

	b.logger.Debug("Line added",
		zap.Int64("item_id", line.ItemID),
		zap.Int("quantity", line.Quantity),
		zap.String("subtotal", line.Subtotal.String()),
	)
	return b.Snapshot(), nil
}

// AddLineForm is AddLine for raw form input
func (b *CartBuilder) AddLineForm(ctx context.Context, rawItemID, rawQuantity string) (CartState, error) {
	verr := errors.NewValidationError()

	itemID, ok := domain.ParseID(rawItemID)
	if !ok || itemID == 0 {
		verr.Add(domain.FieldItem, locale.MsgItemRequired)
	}
	quantity, ok := domain.ParseQuantity(rawQuantity)
	if !ok {
		verr.Add(domain.FieldQuantity, locale.MsgQuantityInvalid)
	}

	b.mu.Lock()
	if b.supplierID <= 0 {
		verr.Add(domain.FieldSupplier, locale.MsgSupplierRequired)
	}
	b.mu.Unlock()

	if err := verr.OrNil(); err != nil {
		return b.Snapshot(), err
	}
	return b.AddLine(ctx, itemID, quantity)
}

func (b *CartBuilder) addLine(itemID int64, quantity int) (domain.CartLine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == domain.SubmissionSubmitting {
		return domain.CartLine{}, ErrSubmissionInProgress
	}

	verr := errors.NewValidationError()
	if b.supplierID <= 0 {
		verr.Add(domain.FieldSupplier, locale.MsgSupplierRequired)
	}
	if itemID <= 0 {
		verr.Add(domain.FieldItem, locale.MsgItemRequired)
	}
	if quantity <= 0 {
		verr.Add(domain.FieldQuantity, locale.MsgQuantityInvalid)
	}
	if err := verr.OrNil(); err != nil {
		return domain.CartLine{}, err
	}

	item, ok := b.findItem(itemID)
	if !ok {
		return domain.CartLine{}, &errors.ErrNotFound{Resource: "item", ID: strconv.FormatInt(itemID, 10)}
	}
	return b.cart.Add(item, quantity), nil
}

// RemoveLine removes the line for itemID. Removing an absent item is a no-op.
func (b *CartBuilder) RemoveLine(itemID int64) (CartState, error) {
	b.mu.Lock()
	if b.state == domain.SubmissionSubmitting {
		b.mu.Unlock()
		return b.Snapshot(), ErrSubmissionInProgress
	}
	b.cart.Remove(itemID)
	b.mu.Unlock()

	return b.Snapshot(), nil
}

// GrandTotal is the sum of the line subtotals
func (b *CartBuilder) GrandTotal() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cart.GrandTotal()
}

// Reset empties the cart and clears the supplier selection
func (b *CartBuilder) Reset() (CartState, error) {
	b.mu.Lock()
	if b.state == domain.SubmissionSubmitting {
		b.mu.Unlock()
		return b.Snapshot(), ErrSubmissionInProgress
	}
	b.resetLocked()
	b.mu.Unlock()

	return b.Snapshot(), nil
}

// Submit sends the cart as a purchase order. Only one submission runs at a
// time. On success the cart and supplier are cleared; on failure both are
// kept so the order can be retried.
func (b *CartBuilder) Submit(ctx context.Context) (*domain.PurchaseOrder, error) {
	b.mu.Lock()
	if !b.state.CanTransitionTo(domain.SubmissionSubmitting) {
		b.mu.Unlock()
		b.logger.Warn("Rejecting submission while another is in flight")
		return nil, ErrSubmissionInProgress
	}
	req, err := b.cart.Request(b.supplierID)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	b.state = domain.SubmissionSubmitting
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.state = domain.SubmissionIdle
		b.mu.Unlock()
	}()

	b.logger.Info("Submitting purchase order",
		zap.Int64("supplier_id", req.SupplierID),
		zap.Int("lines", len(req.Details)),
	)

	order, err := b.api.CreatePurchaseOrder(ctx, req)
	if err != nil {
		return nil, b.report(ctx, err, locale.MsgOrderFailed)
	}

	b.mu.Lock()
	b.resetLocked()
	b.mu.Unlock()

	b.logger.Info("Purchase order created",
		zap.Int64("order_id", order.ID),
		zap.String("grand_total", order.GrandTotal.String()),
	)
	b.notifierFor(ctx).Success(locale.MsgSuccessTitle,
		b.printer.Sprintf(locale.MsgOrderCreated, locale.FormatIDR(b.printer, order.GrandTotal)))

	return order, nil
}

// Snapshot returns the state the purchase page renders
func (b *CartBuilder) Snapshot() CartState {
	b.mu.Lock()
	defer b.mu.Unlock()

	catalog := make([]domain.CatalogItem, len(b.catalog))
	copy(catalog, b.catalog)
	suppliers := make([]domain.Supplier, len(b.suppliers))
	copy(suppliers, b.suppliers)

	return CartState{
		SupplierID: b.supplierID,
		Lines:      b.cart.Lines(),
		GrandTotal: b.cart.GrandTotal(),
		Submitting: b.state == domain.SubmissionSubmitting,
		Catalog:    catalog,
		Suppliers:  suppliers,
	}
}

func (b *CartBuilder) resetLocked() {
	b.cart.Reset()
	b.supplierID = 0
	b.catalog = nil
	b.generation++
}

func (b *CartBuilder) findItem(itemID int64) (domain.CatalogItem, bool) {
	for _, item := range b.catalog {
		if item.ID == itemID {
			return item, true
		}
	}
	return domain.CatalogItem{}, false
}

// notifierFor returns the notifier of the request behind ctx, falling back
// to the builder's own.
func (b *CartBuilder) notifierFor(ctx context.Context) notify.Notifier {
	return notify.FromContext(ctx, b.notifier)
}

// report classifies err and notifies the operator. Local field errors are
// returned without a notification. Auth failures clear the session and
// schedule the session-expired callback.
func (b *CartBuilder) report(ctx context.Context, err error, title string) *errors.APIError {
	apiErr := errors.Classify(err)

	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		return apiErr
	}

	b.logger.Warn("Purchase workflow failed",
		zap.String("kind", apiErr.Kind.String()),
		zap.Int("status", apiErr.Status),
		zap.Error(err),
	)

	if apiErr.Kind == errors.KindAuth {
		b.notifierFor(ctx).Error(locale.MsgErrorTitle, apiErr.Message, apiErr.Detail)
		b.expireSession(ctx)
		return apiErr
	}

	b.notifierFor(ctx).Error(title, apiErr.Message, apiErr.Detail)
	return apiErr
}

func (b *CartBuilder) expireSession(ctx context.Context) {
	clearExpiredSession(ctx, b.sessions, b.logger)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.onSessionExpired == nil || b.expiry != nil {
		return
	}
	fn := b.onSessionExpired
	b.expiry = time.AfterFunc(b.logoutDelay, func() {
		b.mu.Lock()
		b.expiry = nil
		b.mu.Unlock()
		fn()
	})
}
