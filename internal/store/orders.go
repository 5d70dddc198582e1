package store

import (
	"context"
	"fmt"

	"github.com/iliyamo/crimson-storefront/internal/model"
)

// PlaceOrder turns the cart into a PENDING order for the signed-in user.
// It returns false when the cart is empty or nobody is signed in.
func (s *Store) PlaceOrder() (model.Order, bool) {
	s.mu.Lock()
	if len(s.cart) == 0 || s.user == nil {
		s.mu.Unlock()
		return model.Order{}, false
	}
	items := model.CloneItems(s.cart)
	o := model.Order{
		ID:        s.newOrderID(),
		UserID:    s.user.ID,
		Items:     items,
		Total:     model.OrderTotal(items),
		Status:    model.OrderStatusPending,
		CreatedAt: s.now().UTC(),
	}
	s.orders = append([]model.Order{o}, s.orders...)
	s.cart = nil
	rev := s.orderEdits.mark(o.ID)
	s.mu.Unlock()

	s.log.Info().Str("order_id", o.ID).Str("user_id", o.UserID).Float64("total", o.Total).Msg("store: order placed")

	out := o.Clone()
	s.async("create order", func(ctx context.Context) error {
		saved, err := s.remote.CreateOrder(ctx, o.Clone())
		if err != nil {
			return err
		}
		s.reconcileOrder(o.ID, rev, saved)
		return nil
	})
	return out, true
}

// UpdateOrderStatus moves an order along the status machine.  Only an
// admin session may do it.
func (s *Store) UpdateOrderStatus(orderID string, status model.OrderStatus) error {
	s.mu.Lock()
	if s.user == nil || !s.user.IsAdmin() {
		s.mu.Unlock()
		return ErrForbidden
	}
	idx := -1
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrOrderNotFound
	}
	from := s.orders[idx].Status
	if !model.CanTransition(from, status) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, from, status)
	}
	s.orders[idx].Status = status
	o := s.orders[idx].Clone()
	rev := s.orderEdits.mark(o.ID)
	s.mu.Unlock()

	s.async("update order", func(ctx context.Context) error {
		saved, err := s.remote.UpdateOrder(ctx, o)
		if err != nil {
			return err
		}
		s.reconcileOrder(o.ID, rev, saved)
		return nil
	})
	return nil
}

// reconcileOrder settles the change made at rev and replaces the local
// copy with the server's, if it is still present and nothing newer has been
// done to it locally.
func (s *Store) reconcileOrder(id string, rev uint64, saved model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderEdits.settle(id, rev)
	if saved.ID != id || !s.orderEdits.latest(id, rev) {
		return
	}
	for i := range s.orders {
		if s.orders[i].ID != saved.ID {
			continue
		}
		if len(saved.Items) == 0 {
			saved.Items = s.orders[i].Items
		}
		if saved.CreatedAt.IsZero() {
			saved.CreatedAt = s.orders[i].CreatedAt
		}
		s.orders[i] = saved
		return
	}
}
