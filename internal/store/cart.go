package store

import "github.com/iliyamo/crimson-storefront/internal/model"

// AddToCart adds one unit of p, merging with an existing line.
func (s *Store) AddToCart(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].ID == p.ID {
			s.cart[i].Quantity++
			return
		}
	}
	s.cart = append(s.cart, model.CartItem{Product: p, Quantity: 1})
}

// UpdateQuantity sets the quantity of a line, clamped to at least 1.
// Unknown ids are ignored.
func (s *Store) UpdateQuantity(productID string, qty int) {
	if qty < 1 {
		qty = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].ID == productID {
			s.cart[i].Quantity = qty
			return
		}
	}
}

// RemoveFromCart drops a line.
func (s *Store) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.cart[:0]
	for _, it := range s.cart {
		if it.ID != productID {
			out = append(out, it)
		}
	}
	s.cart = out
}

// ClearCart empties the cart.
func (s *Store) ClearCart() {
	s.mu.Lock()
	s.cart = nil
	s.mu.Unlock()
}
