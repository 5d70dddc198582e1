package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/crimson-storefront/internal/model"
)

// Seed fills an empty store with the bundled catalog, the master admin and
// the launch sale events.  Each table is only seeded when it is empty.
func Seed(ctx context.Context, products *ProductRepo, users *UserRepo, events *SaleEventRepo, hash func(string) (string, error), now time.Time) error {
	n, err := products.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if n == 0 {
		// p1 gets the latest timestamp so the catalog lists in bundle order.
		for i, p := range model.DefaultCatalog() {
			if err := products.insert(ctx, p, now.Add(-time.Duration(i)*time.Second).UTC()); err != nil {
				return fmt.Errorf("seed product %s: %w", p.ID, err)
			}
		}
	}

	if _, err := users.Get(ctx, model.MasterIdentifier); errors.Is(err, ErrNotFound) {
		h, err := hash(model.MasterSecret)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if err := users.Create(ctx, model.MasterAdmin(), h); err != nil && !errors.Is(err, ErrEmailExists) {
			return fmt.Errorf("seed admin: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	n, err = events.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed sale events: %w", err)
	}
	if n == 0 {
		for _, e := range model.DefaultSaleEvents(now) {
			if err := events.Create(ctx, e); err != nil {
				return fmt.Errorf("seed sale event %s: %w", e.ID, err)
			}
		}
	}
	return nil
}
