package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/crimson-storefront/internal/database"
	"github.com/iliyamo/crimson-storefront/internal/model"
)

const productCols = "id, name, description, category, image, rating, price, stock"

// ProductRepo reads and writes the catalog.
type ProductRepo struct {
	db  *database.DB
	now func() time.Time
}

func NewProductRepo(db *database.DB) *ProductRepo {
	return &ProductRepo{db: db, now: time.Now}
}

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Image, &p.Rating, &p.Price, &p.Stock)
	return p, err
}

// List returns the catalog newest first.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productCols+" FROM products ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns one product or ErrNotFound.
func (r *ProductRepo) Get(ctx context.Context, id string) (model.Product, error) {
	q := r.db.Rebind("SELECT " + productCols + " FROM products WHERE id = ?")
	p, err := scanProduct(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// Create inserts p as the newest product.  A taken id is ErrConflict.
func (r *ProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.insert(ctx, p, r.now().UTC()); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductRepo) insert(ctx context.Context, p model.Product, at time.Time) error {
	q := r.db.Rebind("INSERT INTO products (" + productCols + ", created_at) VALUES (?,?,?,?,?,?,?,?,?)")
	_, err := r.db.ExecContext(ctx, q, p.ID, p.Name, p.Description, p.Category, p.Image, p.Rating, p.Price, p.Stock, at)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// Update overwrites every field of an existing product.
func (r *ProductRepo) Update(ctx context.Context, p model.Product) (model.Product, error) {
	if _, err := r.Get(ctx, p.ID); err != nil {
		return model.Product{}, err
	}
	q := r.db.Rebind("UPDATE products SET name = ?, description = ?, category = ?, image = ?, rating = ?, price = ?, stock = ? WHERE id = ?")
	if _, err := r.db.ExecContext(ctx, q, p.Name, p.Description, p.Category, p.Image, p.Rating, p.Price, p.Stock, p.ID); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// Delete removes a product.  Past orders keep their own item snapshots.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM products WHERE id = ?"), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of products.
func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}
