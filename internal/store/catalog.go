package store

import (
	"context"

	"github.com/iliyamo/crimson-storefront/internal/model"
)

// AddProduct lists p at the head of the catalog.  An empty id gets a
// generated one; an existing entry with the same id is replaced.
func (s *Store) AddProduct(p model.Product) model.Product {
	if p.ID == "" {
		p.ID = model.NewProductID()
	}
	s.mu.Lock()
	rest := make([]model.Product, 0, len(s.products)+1)
	rest = append(rest, p)
	for _, q := range s.products {
		if q.ID != p.ID {
			rest = append(rest, q)
		}
	}
	s.products = rest
	rev := s.productEdits.mark(p.ID)
	s.mu.Unlock()

	s.async("create product", func(ctx context.Context) error {
		saved, err := s.remote.CreateProduct(ctx, p)
		if err != nil {
			return err
		}
		s.reconcileProduct(p.ID, rev, saved)
		return nil
	})
	return p
}

// UpdateProduct replaces the catalog entry with the same id.
func (s *Store) UpdateProduct(p model.Product) {
	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			break
		}
	}
	rev := s.productEdits.mark(p.ID)
	s.mu.Unlock()

	s.async("update product", func(ctx context.Context) error {
		saved, err := s.remote.UpdateProduct(ctx, p)
		if err != nil {
			return err
		}
		s.reconcileProduct(p.ID, rev, saved)
		return nil
	})
}

// DeleteProduct delists a product.  Cart lines holding it are left alone.
func (s *Store) DeleteProduct(productID string) {
	s.mu.Lock()
	out := s.products[:0]
	for _, q := range s.products {
		if q.ID != productID {
			out = append(out, q)
		}
	}
	s.products = out
	rev := s.productEdits.mark(productID)
	s.mu.Unlock()

	s.async("delete product", func(ctx context.Context) error {
		if err := s.remote.DeleteProduct(ctx, productID); err != nil {
			return err
		}
		s.mu.Lock()
		s.productEdits.settle(productID, rev)
		s.mu.Unlock()
		return nil
	})
}

// reconcileProduct settles the change made at rev and adopts the server's
// copy unless a newer local change has been made since.
func (s *Store) reconcileProduct(id string, rev uint64, saved model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productEdits.settle(id, rev)
	if saved.ID != id || !s.productEdits.latest(id, rev) {
		return
	}
	for i := range s.products {
		if s.products[i].ID == saved.ID {
			s.products[i] = saved
			return
		}
	}
}
