package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus checks an inbound status value against the declared set.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return st, nil
	}
	return "", ErrUnknownOrderStatus
}

type Order struct {
	ID          string
	TotalAmount decimal.Decimal
	TotalItems  int
	Status      OrderStatus
	Paid        bool
	PaidAt      *time.Time
	ChargeID    string
	CreatedAt   time.Time
	Items       []OrderItem
	Receipt     *Receipt
}

// OrderItem holds the price snapshot taken at order creation.
// Name is transient catalog enrichment, never persisted.
type OrderItem struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
	Name      string
}

type Receipt struct {
	OrderID    string
	ReceiptURL string
	CreatedAt  time.Time
}

// NewOrderItem is a requested order line before catalog validation.
type NewOrderItem struct {
	ProductID string
	Quantity  int
}

// OrderPage is one window of a filtered order listing.
type OrderPage struct {
	Orders    []*Order
	Page      int
	TotalRows int64
	LastPage  int
}
