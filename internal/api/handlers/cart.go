package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/jafarshop/procurement/internal/domain"
	"github.com/jafarshop/procurement/internal/notify"
	"github.com/jafarshop/procurement/internal/service"
)

// CartResponse is the purchase page state plus the notices raised while
// producing it
type CartResponse struct {
	Cart    service.CartState `json:"cart"`
	Notices []notify.Notice   `json:"notices"`
}

// SubmitResponse is returned once a purchase order exists
type SubmitResponse struct {
	Order   *domain.PurchaseOrder `json:"order"`
	Cart    service.CartState     `json:"cart"`
	Notices []notify.Notice       `json:"notices"`
}

// CartHandler serves the purchase page events. Each request collects the
// notices the builder raises for it and returns them in its own response.
type CartHandler struct {
	builder *service.CartBuilder
	printer *message.Printer
	logger  *zap.Logger
}

// NewCartHandler creates a cart handler
func NewCartHandler(builder *service.CartBuilder, printer *message.Printer, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		builder: builder,
		printer: printer,
		logger:  logger,
	}
}

// HandleGetCart handles GET /v1/cart
func (h *CartHandler) HandleGetCart(c *gin.Context) {
	_, notices := h.begin(c)
	h.respond(c, http.StatusOK, h.builder.Snapshot(), notices)
}

// HandleOpen handles POST /v1/cart/open. It gates the page on the
// session and refreshes the supplier list.
func (h *CartHandler) HandleOpen(c *gin.Context) {
	ctx, notices := h.begin(c)
	if _, err := h.builder.Open(ctx); err != nil {
		h.fail(c, err, notices)
		return
	}
	h.respond(c, http.StatusOK, h.builder.Snapshot(), notices)
}

// HandleSelectSupplier handles PUT /v1/cart/supplier
func (h *CartHandler) HandleSelectSupplier(c *gin.Context) {
	ctx, notices := h.begin(c)

	var req service.SelectSupplierRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err, notices)
		return
	}

	state, err := h.builder.SelectSupplier(ctx, req.SupplierID)
	if err != nil {
		h.fail(c, err, notices)
		return
	}
	h.respond(c, http.StatusOK, state, notices)
}

// HandleAddLine handles POST /v1/cart/lines. Form posts go through the raw
// form parser so non-numeric input is reported per field.
func (h *CartHandler) HandleAddLine(c *gin.Context) {
	ctx, notices := h.begin(c)

	var (
		state service.CartState
		err   error
	)

	if c.ContentType() == "application/x-www-form-urlencoded" {
		state, err = h.builder.AddLineForm(ctx, c.PostForm("itemId"), c.PostForm("quantity"))
	} else {
		var req service.AddLineRequest
		if err := bindJSON(c, &req); err != nil {
			h.fail(c, err, notices)
			return
		}
		state, err = h.builder.AddLine(ctx, req.ItemID, req.Quantity)
	}

	if err != nil {
		h.fail(c, err, notices)
		return
	}
	h.respond(c, http.StatusOK, state, notices)
}

// HandleRemoveLine handles DELETE /v1/cart/lines/:itemId
func (h *CartHandler) HandleRemoveLine(c *gin.Context) {
	_, notices := h.begin(c)

	itemID, err := parseIDParam(c, "itemId", domain.FieldItem)
	if err != nil {
		h.fail(c, err, notices)
		return
	}

	state, err := h.builder.RemoveLine(itemID)
	if err != nil {
		h.fail(c, err, notices)
		return
	}
	h.respond(c, http.StatusOK, state, notices)
}

// HandleReset handles POST /v1/cart/reset
func (h *CartHandler) HandleReset(c *gin.Context) {
	_, notices := h.begin(c)

	state, err := h.builder.Reset()
	if err != nil {
		h.fail(c, err, notices)
		return
	}
	h.respond(c, http.StatusOK, state, notices)
}

// HandleSubmit handles POST /v1/cart/submit
func (h *CartHandler) HandleSubmit(c *gin.Context) {
	ctx, notices := h.begin(c)

	order, err := h.builder.Submit(ctx)
	if err != nil {
		h.fail(c, err, notices)
		return
	}

	c.JSON(http.StatusCreated, SubmitResponse{
		Order:   order,
		Cart:    h.builder.Snapshot(),
		Notices: notices.Drain(),
	})
}

// begin routes the builder's notices for this request into a fresh recorder
func (h *CartHandler) begin(c *gin.Context) (context.Context, *notify.Recorder) {
	notices := notify.NewRecorder(h.printer, false)
	return notify.WithNotifier(c.Request.Context(), notices), notices
}

func (h *CartHandler) respond(c *gin.Context, status int, state service.CartState, notices *notify.Recorder) {
	c.JSON(status, CartResponse{
		Cart:    state,
		Notices: notices.Drain(),
	})
}

func (h *CartHandler) fail(c *gin.Context, err error, notices *notify.Recorder) {
	respondError(c, err, h.printer, notices, h.logger)
}
