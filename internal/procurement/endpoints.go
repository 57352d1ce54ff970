package procurement

import (
	"github.com/shopspring/decimal"

	"github.com/jafarshop/procurement/internal/domain"
)

// Endpoint paths, relative to the API base URL
const (
	PathHealth      = "/health"
	PathLogin       = "/login"
	PathRegister    = "/register"
	PathItems       = "/items"
	PathSuppliers   = "/suppliers"
	PathPurchasings = "/purchasings"
)

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by POST /login
type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user,omitempty"`
}

// RegisterRequest is the body of POST /register
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=admin staff"`
}

// SupplierInput is the body for creating or updating a supplier
type SupplierInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address"`
}

// ItemInput is the body for creating or updating an item
type ItemInput struct {
	Name       string          `json:"name" binding:"required"`
	Stock      int             `json:"stock" binding:"min=0"`
	Price      decimal.Decimal `json:"price"`
	SupplierID int64           `json:"supplierId" binding:"required"`
}

// dataEnvelope wraps list and CRUD responses: {"message": ..., "data": ...}
type dataEnvelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// purchasingEnvelope is the body returned by POST /purchasings
type purchasingEnvelope struct {
	Message    string                       `json:"message"`
	Purchasing domain.PurchaseOrder         `json:"purchasing"`
	Details    []domain.PurchaseOrderDetail `json:"details"`
}

// errorBody is the JSON error shape the API answers with
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
