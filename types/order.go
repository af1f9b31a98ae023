package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusPending is the status assigned to every newly placed order.
const OrderStatusPending = "pending"

// Order represents a placed customer order together with its line items.
//
// TotalPrice is derived at placement time as the exact decimal sum of the
// item subtotals and is never recomputed afterwards.
type Order struct {
	// ID is the unique identifier of the order.
	ID int `json:"id" db:"id"`

	// CustomerName is the name given by the buyer at checkout.
	CustomerName string `json:"customer_name" db:"customer_name"`

	// CustomerEmail is the email address given by the buyer at checkout.
	CustomerEmail string `json:"customer_email" db:"customer_email"`

	// Status is the fulfilment status of the order. New orders start
	// as OrderStatusPending.
	Status string `json:"status" db:"status"`

	// TotalPrice is the fixed-point sum of all item subtotals.
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`

	// Items are the line items belonging to this order, in the order
	// they were requested.
	Items []OrderItem `json:"items" db:"-"`

	// CreatedAt is the timestamp at which the order was placed.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// OrderItem is a single line of an order.
//
// Price is a snapshot of the referenced product's price at the moment the
// order was placed; later changes to the product never affect it.
// Subtotal is Price multiplied by Qty, computed once with fixed-point
// arithmetic.
type OrderItem struct {
	// ID is the unique identifier of the order item.
	ID int `json:"id" db:"id"`

	// OrderID is the identifier of the owning order.
	OrderID int `json:"order_id" db:"order_id"`

	// ProductID references the ordered product. The reference is
	// non-owning: the product may change independently.
	ProductID int `json:"product_id" db:"product_id"`

	// Qty is the ordered quantity. Always positive.
	Qty int `json:"qty" db:"qty"`

	// Price is the unit price snapshot taken at order time.
	Price decimal.Decimal `json:"price" db:"price"`

	// Subtotal is Price x Qty, fixed at order time.
	Subtotal decimal.Decimal `json:"subtotal" db:"subtotal"`
}
