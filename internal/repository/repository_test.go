package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/crimson-storefront/internal/database"
	"github.com/iliyamo/crimson-storefront/internal/model"
)

func newMock(t *testing.T, driverName string) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return database.Wrap(db, driverName), mock
}

var productColumns = []string{"id", "name", "description", "category", "image", "rating", "price", "stock"}

func TestProductListNewestFirst(t *testing.T) {
	db, mock := newMock(t, database.MySQL)
	mock.ExpectQuery(regexp.QuoteMeta("FROM products ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("p2", "Watch", "", "Electronics", "", 4.5, 12999.0, 30).
			AddRow("p1", "Headphones", "", "Electronics", "", 4.8, 8999.0, 15))

	ps, err := NewProductRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "p2", ps[0].ID)
	assert.Equal(t, 15, ps[1].Stock)
}

func TestProductGetNotFound(t *testing.T) {
	db, mock := newMock(t, database.Postgres)
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(productColumns))

	_, err := NewProductRepo(db).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductCreateDuplicate(t *testing.T) {
	db, mock := newMock(t, database.MySQL)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := NewProductRepo(db).Create(context.Background(), model.Product{ID: "p1"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestProductDeleteMissing(t *testing.T) {
	db, mock := newMock(t, database.MySQL)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = ?")).
		WithArgs("p9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewProductRepo(db).Delete(context.Background(), "p9"), ErrNotFound)
}

var userColumns = []string{"id", "name", "email", "role", "avatar", "phone", "address", "password_hash"}

func TestFindForLoginMatchesIdEmailOrName(t *testing.T) {
	db, mock := newMock(t, database.MySQL)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ? OR email = ? OR LOWER(name) = ?")).
		WithArgs("Asha@Example.com", "asha@example.com", "asha@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "Asha", "asha@example.com", "ADMIN", "", "", "", "$2a$10$hash"))

	u, err := NewUserRepo(db).FindForLogin(context.Background(), " Asha@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)
}

func TestUserListHidesHashAndDefaultsRole(t *testing.T) {
	db, mock := newMock(t, database.MySQL)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY created_at ASC")).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "Asha", "asha@example.com", "weird", "", "", "", "secret"))

	us, err := NewUserRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, us, 1)
	assert.Equal(t, model.RoleUser, us[0].Role)
	raw, _ := json.Marshal(us[0])
	assert.NotContains(t, string(raw), "secret")
}

func TestUserUpsert(t *testing.T) {
	t.Run("inserts unknown id", func(t *testing.T) {
		db, mock := newMock(t, database.Postgres)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs("u-2").
			WillReturnRows(sqlmock.NewRows(userColumns))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("u-2", "Ravi", "ravi@example.com", "USER", "", "", "", "", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		u, err := NewUserRepo(db).Upsert(context.Background(), model.User{ID: "u-2", Name: "Ravi", Email: "Ravi@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "ravi@example.com", u.Email)
		assert.Equal(t, model.RoleUser, u.Role)
	})
	t.Run("updates known id", func(t *testing.T) {
		db, mock := newMock(t, database.MySQL)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
			WithArgs("u-2").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-2", "Ravi", "ravi@example.com", "USER", "", "", "", "h"))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = ?")).
			WithArgs("Ravi K", "ravi@example.com", "ADMIN", "", "", "", "u-2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		_, err := NewUserRepo(db).Upsert(context.Background(), model.User{ID: "u-2", Name: "Ravi K", Email: "ravi@example.com", Role: model.RoleAdmin})
		require.NoError(t, err)
	})
	t.Run("email collision", func(t *testing.T) {
		db, mock := newMock(t, database.Postgres)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WillReturnRows(sqlmock.NewRows(userColumns))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := NewUserRepo(db).Upsert(context.Background(), model.User{ID: "u-3", Email: "taken@example.com"})
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

var orderColumns = []string{"id", "user_id", "items", "total", "status", "created_at"}

func TestOrderCreateStoresItemsAsJSON(t *testing.T) {
	db, mock := newMock(t, database.MySQL)
	o := model.Order{
		ID:        "ORD-ABC",
		UserID:    "u-1",
		Items:     []model.CartItem{{Product: model.Product{ID: "p1", Price: 500}, Quantity: 2}},
		Total:     1099,
		Status:    model.OrderStatusPending,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	items, _ := json.Marshal(o.Items)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs("ORD-ABC", "u-1", items, 1099.0, "PENDING", o.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewOrderRepo(db).Create(context.Background(), o))
}

func TestOrderListByUserDecodesItems(t *testing.T) {
	db, mock := newMock(t, database.Postgres)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 ORDER BY created_at DESC")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow("ORD-2", "u-1", []byte(`[{"id":"p1","name":"Headphones","price":500,"quantity":2}]`), 1099.0, "SHIPPED", at))

	list, err := NewOrderRepo(db).ListByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.OrderStatusShipped, list[0].Status)
	require.Len(t, list[0].Items, 1)
	assert.Equal(t, 2, list[0].Items[0].Quantity)
	assert.Equal(t, "Headphones", list[0].Items[0].Name)
}

func TestOrderUpdateStatusMissing(t *testing.T) {
	db, mock := newMock(t, database.MySQL)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = ?")).
		WithArgs("SHIPPED", "ORD-X").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewOrderRepo(db).UpdateStatus(context.Background(), "ORD-X", model.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, IsUnavailable(driver.ErrBadConn))
	assert.True(t, IsUnavailable(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.False(t, IsUnavailable(errors.New("syntax error")))
	assert.False(t, IsUnavailable(nil))
}

func TestSeedEmptyStore(t *testing.T) {
	db, mock := newMock(t, database.MySQL)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	for range model.DefaultCatalog() {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs(model.MasterIdentifier).
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(model.MasterIdentifier, "Tejovanth", "tejovanth@mycart.com", "ADMIN", sqlmock.AnyArg(), "", "", "hashed:1234", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sale_events")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	for range model.DefaultSaleEvents(now) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sale_events")).WillReturnResult(sqlmock.NewResult(0, 1))
	}

	hash := func(s string) (string, error) { return "hashed:" + s, nil }
	err := Seed(context.Background(), NewProductRepo(db), NewUserRepo(db), NewSaleEventRepo(db), hash, now)
	require.NoError(t, err)
}

func TestSeedSkipsPopulatedStore(t *testing.T) {
	db, mock := newMock(t, database.MySQL)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(6))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("tejovanth", "Tejovanth", "tejovanth@mycart.com", "ADMIN", "", "", "", "h"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sale_events")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))

	hash := func(string) (string, error) { return "", errors.New("must not hash") }
	require.NoError(t, Seed(context.Background(), NewProductRepo(db), NewUserRepo(db), NewSaleEventRepo(db), hash, time.Now()))
}

func TestProductSearchBuildsFilters(t *testing.T) {
	db, mock := newMock(t, database.Postgres)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE (LOWER(name) LIKE $1 OR LOWER(description) LIKE $2) AND LOWER(category) = $3 AND stock > 0")).
		WithArgs("%head%", "%head%", "electronics").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $4 OFFSET $5")).
		WithArgs("%head%", "%head%", "electronics", 2, 2).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("p1", "Headphones", "", "Electronics", "", 4.8, 8999.0, 15))

	ps, total, err := NewProductRepo(db).Search(context.Background(), ProductSearchQuery{
		Text: "Head", Category: "Electronics", InStock: true, Page: 2, PageSize: 2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, ps, 1)
	assert.Equal(t, "p1", ps[0].ID)
}
