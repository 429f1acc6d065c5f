package entity

import "time"

const (
	OrderStatusPending   = "PENDING"
	OrderStatusSuccess   = "SUCCESS"
	OrderStatusCancelled = "CANCELLED"
)

type Order struct {
	ID uint64

	PayerEmail       string
	TotalAmountPaise int64
	Status           string
	PaymentMethod    string
	DeliveryAddress  string
	OrderDate        time.Time

	// Items are owned exclusively by the order: written and removed in the
	// same transaction as the order row, never addressed on their own.
	Items []OrderItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID      uint64
	OrderID uint64

	Name           string
	Quantity       int32
	UnitPricePaise int64
	SubtotalPaise  int64
}

// Terminal reports whether the order has reached a final settlement state.
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusSuccess || o.Status == OrderStatusCancelled
}
