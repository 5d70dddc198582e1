package repository

import (
	"context"
	"time"

	"github.com/iliyamo/crimson-storefront/internal/database"
	"github.com/iliyamo/crimson-storefront/internal/model"
)

const saleEventCols = "id, title, description, discount_percentage, start_date, end_date, image, is_active, type"

// SaleEventRepo holds promotional banners.
type SaleEventRepo struct{ db *database.DB }

func NewSaleEventRepo(db *database.DB) *SaleEventRepo { return &SaleEventRepo{db: db} }

// Active returns the events running at t, soonest ending first.
func (r *SaleEventRepo) Active(ctx context.Context, t time.Time) ([]model.SaleEvent, error) {
	q := r.db.Rebind("SELECT " + saleEventCols + " FROM sale_events WHERE is_active = ? AND start_date <= ? AND end_date >= ? ORDER BY end_date ASC")
	rows, err := r.db.QueryContext(ctx, q, true, t.UTC(), t.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SaleEvent{}
	for rows.Next() {
		var (
			e   model.SaleEvent
			typ string
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.DiscountPercentage, &e.StartDate, &e.EndDate, &e.Image, &e.IsActive, &typ); err != nil {
			return nil, err
		}
		e.Type = model.SaleEventType(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create stores e.
func (r *SaleEventRepo) Create(ctx context.Context, e model.SaleEvent) error {
	q := r.db.Rebind("INSERT INTO sale_events (" + saleEventCols + ") VALUES (?,?,?,?,?,?,?,?,?)")
	_, err := r.db.ExecContext(ctx, q, e.ID, e.Title, e.Description, e.DiscountPercentage, e.StartDate.UTC(), e.EndDate.UTC(), e.Image, e.IsActive, string(e.Type))
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// Count returns the number of stored events.
func (r *SaleEventRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sale_events").Scan(&n)
	return n, err
}
