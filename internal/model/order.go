package model

import (
	"errors"
	"time"
)

// CartItem is a product together with the quantity in the cart.  The
// product fields are embedded so an order keeps a full snapshot of what
// was bought, independent of later catalog edits.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ErrInvalidTransition is returned when a status change is not one of
// PENDING→SHIPPED, SHIPPED→DELIVERED or PENDING→CANCELLED.
var ErrInvalidTransition = errors.New("invalid order status transition")

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

// Valid reports whether s is one of the four known states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition reports whether an order may move from one status to
// another.  Same-state writes are not transitions and are rejected.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a placed order.  Items is an immutable snapshot of the cart at
// placement time.
//
// Fields:
//  ID        – business key, "ORD-" followed by nine upper-case base36 chars.
//  UserID    – business key of the owning user.
//  Items     – deep copy of the cart contents.
//  Total     – subtotal plus shipping, see OrderTotal.
//  Status    – lifecycle state.
//  CreatedAt – placement time (UTC).
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Items     []CartItem  `json:"items"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Clone returns a copy of the order that shares no slices with o.
func (o Order) Clone() Order {
	o.Items = CloneItems(o.Items)
	return o
}

// CloneItems deep-copies a cart or order item list.
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
