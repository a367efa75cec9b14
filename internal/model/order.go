package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// OrderStatusPending is the status every new order starts in.
const OrderStatusPending OrderStatus = "pending"

// ShippingDetails holds the delivery address and the chosen shipping quote.
type ShippingDetails struct {
	FirstName    string  `json:"firstName" validate:"required"`
	LastName     string  `json:"lastName" validate:"required"`
	Address      string  `json:"address" validate:"required,min=5"`
	Province     string  `json:"province" validate:"required"`
	City         string  `json:"city" validate:"required"`
	PostalCode   string  `json:"postalCode" validate:"required"`
	Phone        string  `json:"phone" validate:"required"`
	Courier      string  `json:"courier" validate:"required"`
	Service      string  `json:"service" validate:"required"`
	ShippingCost float64 `json:"shippingCost" validate:"gte=0"`
}

// Order represents a customer order.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          string          `json:"userId" db:"user_id"`
	Status          OrderStatus     `json:"status" db:"status"`
	Total           decimal.Decimal `json:"total" db:"total"`
	ShippingDetails ShippingDetails `json:"shippingDetails" db:"shipping_details"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"orderId" db:"order_id"`
	ProductID int64           `json:"productId" db:"product_id"`
	VariantID *int64          `json:"variantId" db:"variant_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingDetails ShippingDetails    `json:"shippingDetails"`
}

// OrderItemRequest represents a single item in an order request.
// Prices are never accepted from the client.
type OrderItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// OrderWithItems is an order together with its line items.
type OrderWithItems struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
