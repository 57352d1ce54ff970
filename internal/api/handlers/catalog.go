package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/jafarshop/procurement/internal/api/middleware"
	"github.com/jafarshop/procurement/internal/domain"
	"github.com/jafarshop/procurement/internal/notify"
	"github.com/jafarshop/procurement/internal/procurement"
	"github.com/jafarshop/procurement/internal/service"
	"github.com/jafarshop/procurement/pkg/errors"
)

// Inventory is the dashboard, item and supplier management behind /v1
type Inventory interface {
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)
	Items(ctx context.Context, supplierID int64) ([]service.ItemView, error)
	FindItems(ctx context.Context, query string) ([]service.ItemMatch, error)
	Suppliers(ctx context.Context) ([]domain.Supplier, error)
	SaveSupplier(ctx context.Context, id int64, in procurement.SupplierInput) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, notifier notify.Notifier, id int64, name string) (bool, error)
	SaveItem(ctx context.Context, id int64, in procurement.ItemInput) (*domain.CatalogItem, error)
	DeleteItem(ctx context.Context, notifier notify.Notifier, id int64, name string) (bool, error)
}

// DeleteResponse reports whether a delete went ahead
type DeleteResponse struct {
	Deleted bool            `json:"deleted"`
	Notices []notify.Notice `json:"notices"`
}

// HandleDashboard handles GET /v1/dashboard
func HandleDashboard(inv Inventory, printer *message.Printer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := inv.Dashboard(c.Request.Context())
		if err != nil {
			respondError(c, err, printer, nil, logger)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// HandleListSuppliers handles GET /v1/suppliers
func HandleListSuppliers(inv Inventory, printer *message.Printer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		suppliers, err := inv.Suppliers(c.Request.Context())
		if err != nil {
			respondError(c, err, printer, nil, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": suppliers})
	}
}

// HandleSaveSupplier handles POST /v1/suppliers and PUT /v1/suppliers/:id
func HandleSaveSupplier(inv Inventory, printer *message.Printer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id int64
		if c.Param("id") != "" {
			var err error
			if id, err = parseIDParam(c, "id", domain.FieldSupplier); err != nil {
				respondError(c, err, printer, nil, logger)
				return
			}
		}

		var req procurement.SupplierInput
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err, printer, nil, logger)
			return
		}

		supplier, err := inv.SaveSupplier(c.Request.Context(), id, req)
		if err != nil {
			respondError(c, err, printer, nil, logger)
			return
		}

		status := http.StatusOK
		if id == 0 {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{"data": supplier})
	}
}

// HandleDeleteSupplier handles DELETE /v1/suppliers/:id?confirm=true&name=
func HandleDeleteSupplier(inv Inventory, printer *message.Printer, logger *zap.Logger) gin.HandlerFunc {
	return handleDelete(domain.FieldSupplier, inv.DeleteSupplier, printer, logger)
}

// HandleListItems handles GET /v1/items?supplierId=
func HandleListItems(inv Inventory, printer *message.Printer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplierID, ok := domain.ParseID(c.Query("supplierId"))
		if !ok {
			verr := errors.NewValidationError()
			verr.Add(fieldMessage("supplierId"))
			respondError(c, verr, printer, nil, logger)
			return
		}

		items, err := inv.Items(c.Request.Context(), supplierID)
		if err != nil {
			respondError(c, err, printer, nil, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}

// HandleSearchItems handles GET /v1/items/search?q=
func HandleSearchItems(inv Inventory, printer *message.Printer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		matches, err := inv.FindItems(c.Request.Context(), c.Query("q"))
		if err != nil {
			respondError(c, err, printer, nil, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": matches})
	}
}

// HandleSaveItem handles POST /v1/items and PUT /v1/items/:id
func HandleSaveItem(inv Inventory, printer *message.Printer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id int64
		if c.Param("id") != "" {
			var err error
			if id, err = parseIDParam(c, "id", domain.FieldItem); err != nil {
				respondError(c, err, printer, nil, logger)
				return
			}
		}

		var req procurement.ItemInput
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err, printer, nil, logger)
			return
		}

		item, err := inv.SaveItem(c.Request.Context(), id, req)
		if err != nil {
			respondError(c, err, printer, nil, logger)
			return
		}

		status := http.StatusOK
		if id == 0 {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{"data": service.ItemView{CatalogItem: *item, Status: domain.StockStatusOf(item.Stock)}})
	}
}

// HandleDeleteItem handles DELETE /v1/items/:id?confirm=true&name=
func HandleDeleteItem(inv Inventory, printer *message.Printer, logger *zap.Logger) gin.HandlerFunc {
	return handleDelete(domain.FieldItem, inv.DeleteItem, printer, logger)
}

type deleteFunc func(ctx context.Context, notifier notify.Notifier, id int64, name string) (bool, error)

// handleDelete answers the confirmation from the confirm query parameter,
// since the console has no dialog of its own.
func handleDelete(field string, del deleteFunc, printer *message.Printer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c, "id", field)
		if err != nil {
			respondError(c, err, printer, nil, logger)
			return
		}

		name := c.DefaultQuery("name", c.Param("id"))
		notices := notify.NewRecorder(printer, c.Query("confirm") == "true")

		deleted, err := del(c.Request.Context(), notices, id, name)
		if err != nil {
			respondError(c, err, printer, notices, logger)
			return
		}

		if deleted {
			logger.Info("Deleted", zap.String("resource", field), zap.Int64("id", id))
		}
		c.JSON(http.StatusOK, DeleteResponse{Deleted: deleted, Notices: notices.Drain()})
	}
}

// HandleMe handles GET /v1/me
func HandleMe(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
