package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/crimson-storefront/internal/database"
	"github.com/iliyamo/crimson-storefront/internal/model"
)

const orderCols = "id, user_id, items, total, status, created_at"

// OrderRepo stores orders with their item snapshots in a JSON column.
type OrderRepo struct{ db *database.DB }

func NewOrderRepo(db *database.DB) *OrderRepo { return &OrderRepo{db: db} }

func scanOrder(row interface{ Scan(...any) error }) (model.Order, error) {
	var (
		o      model.Order
		items  []byte
		status string
	)
	if err := row.Scan(&o.ID, &o.UserID, &items, &o.Total, &status, &o.CreatedAt); err != nil {
		return model.Order{}, err
	}
	o.Status = model.OrderStatus(status)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return model.Order{}, fmt.Errorf("order %s: decode items: %w", o.ID, err)
	}
	return o, nil
}

func (r *OrderRepo) list(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// List returns every order, newest first.
func (r *OrderRepo) List(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, "SELECT "+orderCols+" FROM orders ORDER BY created_at DESC")
}

// ListByUser returns one customer's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return r.list(ctx, "SELECT "+orderCols+" FROM orders WHERE user_id = ? ORDER BY created_at DESC", userID)
}

// Get returns one order or ErrNotFound.
func (r *OrderRepo) Get(ctx context.Context, id string) (model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, r.db.Rebind("SELECT "+orderCols+" FROM orders WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNotFound
	}
	return o, err
}

// Create stores o.  A taken id is ErrConflict.
func (r *OrderRepo) Create(ctx context.Context, o model.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	q := r.db.Rebind("INSERT INTO orders (" + orderCols + ") VALUES (?,?,?,?,?,?)")
	_, err = r.db.ExecContext(ctx, q, o.ID, o.UserID, items, o.Total, string(o.Status), o.CreatedAt.UTC())
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// UpdateStatus overwrites the status of an existing order.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE orders SET status = ? WHERE id = ?"), string(status), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
