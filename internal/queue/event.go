// Package queue defines the order event payloads exchanged over the
// message broker and the consumer that journals them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/crimson-storefront/internal/model"
)

// Event types.
const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
)

// OrderEvent is published after an order is stored or moves status.  It
// carries enough for downstream consumers to log or notify without
// querying the API.
type OrderEvent struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	OrderID    string            `json:"order_id"`
	UserID     string            `json:"user_id"`
	Status     model.OrderStatus `json:"status"`
	PrevStatus model.OrderStatus `json:"prev_status,omitempty"`
	Total      float64           `json:"total"`
	Units      int               `json:"units"`
	Actor      string            `json:"actor"` // token subject or "guest"
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewOrderEvent stamps an event for o with a fresh id.
func NewOrderEvent(typ string, o model.Order, prev model.OrderStatus, actor string) OrderEvent {
	units := 0
	for _, it := range o.Items {
		units += it.Quantity
	}
	return OrderEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		PrevStatus: prev,
		Total:      o.Total,
		Units:      units,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}
}
