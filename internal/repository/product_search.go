package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/crimson-storefront/internal/model"
)

// ProductSearchQuery defines filters and pagination for searching the
// catalog.
type ProductSearchQuery struct {
	Text     string // matched against name and description
	Category string // exact, case-insensitive
	MinPrice float64
	MaxPrice float64 // 0 means no upper bound
	InStock  bool
	Page     int
	PageSize int
}

// Search returns one page of matching products, newest first, and the
// total number of matches.
func (r *ProductRepo) Search(ctx context.Context, q ProductSearchQuery) ([]model.Product, int64, error) {
	where := []string{}
	args := []any{}

	if q.Text != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		like := "%" + strings.ToLower(q.Text) + "%"
		args = append(args, like, like)
	}
	if q.Category != "" {
		where = append(where, "LOWER(category) = ?")
		args = append(args, strings.ToLower(q.Category))
	}
	if q.MinPrice > 0 {
		where = append(where, "price >= ?")
		args = append(args, q.MinPrice)
	}
	if q.MaxPrice > 0 {
		where = append(where, "price <= ?")
		args = append(args, q.MaxPrice)
	}
	if q.InStock {
		where = append(where, "stock > 0")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := r.db.Rebind("SELECT COUNT(*) FROM products WHERE " + cond)
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	dataSQL := r.db.Rebind("SELECT " + productCols + " FROM products WHERE " + cond +
		" ORDER BY created_at DESC LIMIT ? OFFSET ?")
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
