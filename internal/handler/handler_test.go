package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/crimson-storefront/internal/config"
	"github.com/iliyamo/crimson-storefront/internal/database"
	"github.com/iliyamo/crimson-storefront/internal/middleware"
	"github.com/iliyamo/crimson-storefront/internal/model"
	"github.com/iliyamo/crimson-storefront/internal/queue"
	"github.com/iliyamo/crimson-storefront/internal/repository"
	"github.com/iliyamo/crimson-storefront/internal/utils"
)

var (
	userColumns  = []string{"id", "name", "email", "role", "avatar", "phone", "address", "password_hash"}
	orderColumns = []string{"id", "user_id", "items", "total", "status", "created_at"}
)

func newMock(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return database.Wrap(db, database.MySQL), mock
}

func call(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestHealth(t *testing.T) {
	db, mock := newMock(t)
	h := NewHealthHandler(db)
	h.Now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	e := echo.New()
	e.GET("/healthz", h.Liveness)
	e.GET("/api/health", h.Health)

	assert.Equal(t, "ok", call(e, http.MethodGet, "/healthz", "").Body.String())

	mock.ExpectPing()
	var body map[string]any
	require.NoError(t, json.Unmarshal(call(e, http.MethodGet, "/api/health", "").Body.Bytes(), &body))
	assert.Equal(t, "online", body["status"])
	assert.EqualValues(t, 1, body["code"])
	assert.Equal(t, "2025-01-02T03:04:05Z", body["time"])

	mock.ExpectPing().WillReturnError(errors.New("down"))
	rec := call(e, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"offline"`)
	assert.Contains(t, rec.Body.String(), `"code":0`)
}

func authEcho(db *database.DB) *echo.Echo {
	cfg := config.Config{JWTSecret: "secret", AccessTTLMin: 5, BcryptCost: bcrypt.MinCost}
	a := NewAuthHandler(cfg, repository.NewUserRepo(db), zerolog.Nop())
	e := echo.New()
	e.POST("/api/login", a.Login)
	e.POST("/api/signup", a.Signup)
	return e
}

func TestLoginWithBcryptPassword(t *testing.T) {
	db, mock := newMock(t)
	hash, err := utils.HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ? OR email = ? OR LOWER(name) = ?")).
		WithArgs("Asha@Example.com", "asha@example.com", "asha@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "Asha", "asha@example.com", "USER", "", "", "", hash))

	rec := call(authEcho(db), http.MethodPost, "/api/login", `{"identifier":"Asha@Example.com","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	claims, err := utils.ParseAccessToken("secret", rec.Header().Get(AccessTokenHeader))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "USER", claims.Role)
}

func TestLoginRejectsWrongPasswordAndUnknownUser(t *testing.T) {
	db, mock := newMock(t)
	hash, err := utils.HashPassword("1234", bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery("FROM users").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("tejovanth", "Tejovanth", "admin@crimson.store", "ADMIN", "", "", "", hash))
	mock.ExpectQuery("FROM users").WillReturnRows(sqlmock.NewRows(userColumns))

	e := authEcho(db)
	rec := call(e, http.MethodPost, "/api/login", `{"identifier":"tejovanth","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())

	rec = call(e, http.MethodPost, "/api/login", `{"identifier":"ghost","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get(AccessTokenHeader))
}

func TestLoginUpgradesLegacyPlaintext(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM users").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("tejovanth", "Tejovanth", "admin@crimson.store", "ADMIN", "", "", "", "1234"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = ? WHERE id = ?")).
		WithArgs(sqlmock.AnyArg(), "tejovanth").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := call(authEcho(db), http.MethodPost, "/api/login", `{"identifier":"tejovanth","password":"1234"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"ADMIN"`)
}

func TestLoginDatabaseOffline(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM users").WillReturnError(&net.OpError{Op: "dial", Err: errors.New("connection refused")})

	rec := call(authEcho(db), http.MethodPost, "/api/login", `{"identifier":"a","password":"b"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"database offline"}`, rec.Body.String())
}

func TestSignup(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "Ravi Kumar", "ravi@example.com", "USER",
			AvatarURL("Ravi Kumar"), "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := call(authEcho(db), http.MethodPost, "/api/signup", `{"name":" Ravi Kumar ","email":"Ravi@Example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var u model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Regexp(t, `^u-[0-9a-z]{9}$`, u.ID)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.Equal(t, "https://ui-avatars.com/api/?name=Ravi+Kumar&background=dc2626&color=fff", u.Avatar)
	assert.NotEmpty(t, rec.Header().Get(AccessTokenHeader))
}

func TestSignupDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	e := authEcho(db)
	rec := call(e, http.MethodPost, "/api/signup", `{"name":"A","email":"a@b.c","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"User already exists"}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPost, "/api/signup", `{"name":"A"}`).Code)
}

func TestProductHandlers(t *testing.T) {
	db, mock := newMock(t)
	h := NewProductHandler(repository.NewProductRepo(db), zerolog.Nop())
	e := echo.New()
	e.POST("/api/products", h.Create)
	e.DELETE("/api/products/:id", h.Delete)
	e.GET("/api/products", h.List)

	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPost, "/api/products", `{"price":5}`).Code)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).
		WithArgs("p7", "Lamp", "", "Home", "", 0.0, 499.0, 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	rec := call(e, http.MethodPost, "/api/products", `{"id":"p7","name":"Lamp","category":"Home","price":499,"stock":3}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"p7"`)

	mock.ExpectExec("DELETE FROM products").WithArgs("p9").WillReturnResult(sqlmock.NewResult(0, 0))
	rec = call(e, http.MethodDelete, "/api/products/p9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"product not found"}`, rec.Body.String())

	mock.ExpectQuery("FROM products").WillReturnError(&net.OpError{Op: "read", Err: errors.New("reset")})
	assert.Equal(t, http.StatusServiceUnavailable, call(e, http.MethodGet, "/api/products", "").Code)
}

func TestUserUpdateUnknown(t *testing.T) {
	db, mock := newMock(t)
	h := NewUserHandler(repository.NewUserRepo(db), zerolog.Nop())
	e := echo.New()
	e.PUT("/api/users/:id", h.Update)
	e.POST("/api/users/sync", h.Sync)

	mock.ExpectQuery("FROM users WHERE id = ?").WithArgs("u-x").WillReturnRows(sqlmock.NewRows(userColumns))
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodPut, "/api/users/u-x", `{"name":"X"}`).Code)

	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPost, "/api/users/sync", `{"name":"no id"}`).Code)
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPost, "/api/users/sync", `{"id":"u-1","role":"ROOT"}`).Code)
}

func callAs(e *echo.Echo, userID string, role model.Role, method, target, body string) *httptest.ResponseRecorder {
	tok, err := utils.NewAccessToken("secret", userID, string(role), 15)
	if err != nil {
		panic(err)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func selfOnlyUsers(db *database.DB) *echo.Echo {
	h := NewUserHandler(repository.NewUserRepo(db), zerolog.Nop())
	h.SelfOnly = true
	e := echo.New()
	e.Use(middleware.OptionalJWT("secret"))
	e.POST("/api/users/sync", h.Sync)
	e.PUT("/api/users/:id", h.Update)
	return e
}

func TestSelfSyncKeepsStoredRole(t *testing.T) {
	db, mock := newMock(t)
	e := selfOnlyUsers(db)
	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(userColumns).AddRow("u-1", "Asha", "asha@example.com", "USER", "", "", "", "")
	}
	mock.ExpectQuery("FROM users WHERE id = ?").WithArgs("u-1").WillReturnRows(row())
	mock.ExpectQuery("FROM users WHERE id = ?").WithArgs("u-1").WillReturnRows(row())
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).
		WithArgs("Asha", "asha@example.com", "USER", "", "+91 1", "", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{"id":"u-1","name":"Asha","email":"asha@example.com","role":"ADMIN","phone":"+91 1"}`
	rec := callAs(e, "u-1", model.RoleUser, http.MethodPost, "/api/users/sync", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var u model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, model.RoleUser, u.Role)
}

func TestSelfSyncOfNewUserCreatesPlainUser(t *testing.T) {
	db, mock := newMock(t)
	e := selfOnlyUsers(db)
	mock.ExpectQuery("FROM users WHERE id = ?").WithArgs("u-9").WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery("FROM users WHERE id = ?").WithArgs("u-9").WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u-9", "Ravi", "", "USER", "", "", "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := callAs(e, "u-9", model.RoleUser, http.MethodPost, "/api/users/sync", `{"id":"u-9","name":"Ravi","role":"ADMIN"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"USER"`)
}

func TestSelfOnlyUserWrites(t *testing.T) {
	db, mock := newMock(t)
	e := selfOnlyUsers(db)

	assert.Equal(t, http.StatusForbidden,
		callAs(e, "u-1", model.RoleUser, http.MethodPost, "/api/users/sync", `{"id":"u-2","role":"ADMIN"}`).Code)
	assert.Equal(t, http.StatusForbidden,
		callAs(e, "u-1", model.RoleUser, http.MethodPut, "/api/users/u-2", `{"name":"X"}`).Code)
	assert.Equal(t, http.StatusForbidden, call(e, http.MethodPut, "/api/users/u-2", `{"name":"X"}`).Code)

	mock.ExpectQuery("FROM users WHERE id = ?").WithArgs("u-2").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-2", "Bo", "bo@example.com", "USER", "", "", "", ""))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).
		WithArgs("Bo", "bo@example.com", "ADMIN", "", "", "", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	rec := callAs(e, "u-1", model.RoleAdmin, http.MethodPost, "/api/users/sync", `{"id":"u-2","name":"Bo","email":"bo@example.com","role":"ADMIN"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func orderEcho(db *database.DB, pub *recordingPublisher) *echo.Echo {
	h := NewOrderHandler(repository.NewOrderRepo(db), pub, zerolog.Nop())
	h.Now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	e := echo.New()
	e.Use(middleware.OptionalJWT("secret"))
	e.POST("/api/orders", h.Create)
	e.PUT("/api/orders/:id", h.Update)
	return e
}

func TestCreateOrderRecomputesTotalAndPublishes(t *testing.T) {
	db, mock := newMock(t)
	pub := &recordingPublisher{}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs("ORD-ABC", "u-1", sqlmock.AnyArg(), 1399.0, "PENDING", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	body := `{"id":"ORD-ABC","userId":"u-1","total":1,"status":"DELIVERED","items":[{"id":"p4","name":"Mug","price":650,"quantity":2}]}`
	rec := call(orderEcho(db, pub), http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var o model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, 1399.0, o.Total)
	assert.Equal(t, model.OrderStatusPending, o.Status)

	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.OrderPlaced, pub.events[0].Type)
	assert.Equal(t, middleware.Guest, pub.events[0].Actor)
	assert.Equal(t, 2, pub.events[0].Units)
}

func TestCreateOrderValidation(t *testing.T) {
	db, _ := newMock(t)
	e := orderEcho(db, &recordingPublisher{})
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPost, "/api/orders", `{"items":[{"id":"p1","quantity":1}]}`).Code)
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPost, "/api/orders", `{"userId":"u-1","items":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPost, "/api/orders", `{"userId":"u-1","items":[{"id":"p1","quantity":0}]}`).Code)
}

func orderRow(status string) *sqlmock.Rows {
	return sqlmock.NewRows(orderColumns).
		AddRow("ORD-1", "u-1", []byte(`[{"id":"p1","name":"Headphones","price":8999,"quantity":1}]`), 8999.0, status, time.Now())
}

func TestUpdateOrderStatus(t *testing.T) {
	db, mock := newMock(t)
	pub := &recordingPublisher{}
	e := orderEcho(db, pub)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ?")).WithArgs("ORD-1").WillReturnRows(orderRow("PENDING"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = ?")).
		WithArgs("SHIPPED", "ORD-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	token, err := utils.NewAccessToken("secret", "tejovanth", "ADMIN", 5)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/api/orders/ORD-1", strings.NewReader(`{"status":"SHIPPED"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"SHIPPED"`)
	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.OrderStatusChanged, pub.events[0].Type)
	assert.Equal(t, model.OrderStatusPending, pub.events[0].PrevStatus)
	assert.Equal(t, "tejovanth", pub.events[0].Actor)
}

func TestUpdateOrderRejectsIllegalTransition(t *testing.T) {
	db, mock := newMock(t)
	pub := &recordingPublisher{}
	e := orderEcho(db, pub)

	mock.ExpectQuery("FROM orders WHERE id").WithArgs("ORD-1").WillReturnRows(orderRow("DELIVERED"))
	rec := call(e, http.MethodPut, "/api/orders/ORD-1", `{"status":"CANCELLED"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, pub.events)

	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPut, "/api/orders/ORD-1", `{"status":"LOST"}`).Code)

	mock.ExpectQuery("FROM orders WHERE id").WithArgs("ORD-404").WillReturnRows(sqlmock.NewRows(orderColumns))
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodPut, "/api/orders/ORD-404", `{"status":"SHIPPED"}`).Code)
}

func TestProductSearchPaging(t *testing.T) {
	db, mock := newMock(t)
	h := NewProductHandler(repository.NewProductRepo(db), zerolog.Nop())
	e := echo.New()
	e.GET("/api/products/search", h.Search)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE LOWER(category) = ?")).
		WithArgs("mobiles").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("LIMIT").
		WithArgs("mobiles", 100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "category", "image", "rating", "price", "stock"}))

	rec := call(e, http.MethodGet, "/api/products/search?category=Mobiles&page=0&page_size=500", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"total":0,"page":1,"page_size":100}`, rec.Body.String())
}
