// Package remote is the HTTP client for the storefront API.  It is a thin
// pass-through: no retries, no caching.  Failures come back as either
// ErrUnreachable or *StatusError so callers can apply their own fallback.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/crimson-storefront/internal/model"
)

// DefaultBaseURL matches the API's default listen address.
const DefaultBaseURL = "http://localhost:5000/api"

// TokenHeader carries the access token issued on login and signup.
const TokenHeader = "X-Access-Token"

// Client talks to the storefront API.  It is safe for concurrent use.
type Client struct {
	base string
	http *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (10s timeout).
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithToken seeds the bearer token, e.g. from a persisted session.
func WithToken(tok string) Option { return func(c *Client) { c.token = tok } }

// New returns a client rooted at base (e.g. "http://localhost:5000/api").
func New(base string, opts ...Option) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Token returns the current bearer token ("" when signed out).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

// Health calls GET /health.  A non-2xx answer is returned as a StatusError
// even when the body parses.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &h)
	return h, err
}

// ListProducts calls GET /products.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var ws []wireProduct
	if err := c.do(ctx, http.MethodGet, "/products", nil, &ws); err != nil {
		return nil, err
	}
	out := make([]model.Product, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.canonical())
	}
	return out, nil
}

// CreateProduct calls POST /products and returns the stored record.
func (c *Client) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	var w wireProduct
	err := c.do(ctx, http.MethodPost, "/products", p, &w)
	return w.canonical(), err
}

// UpdateProduct calls PUT /products/{id}.
func (c *Client) UpdateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	var w wireProduct
	err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(p.ID), p, &w)
	return w.canonical(), err
}

// DeleteProduct calls DELETE /products/{id}.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}

// ListUsers calls GET /users.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var ws []wireUser
	if err := c.do(ctx, http.MethodGet, "/users", nil, &ws); err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.canonical())
	}
	return out, nil
}

// SyncUser calls POST /users/sync (upsert by id).
func (c *Client) SyncUser(ctx context.Context, u model.User) (model.User, error) {
	var w wireUser
	err := c.do(ctx, http.MethodPost, "/users/sync", u, &w)
	return w.canonical(), err
}

// Login calls POST /login.  On success the access token from the response
// header replaces the client's token.
func (c *Client) Login(ctx context.Context, identifier, password string) (model.User, error) {
	var w wireUser
	err := c.do(ctx, http.MethodPost, "/login", loginReq{Identifier: identifier, Password: password}, &w)
	return w.canonical(), err
}

// Signup calls POST /signup.
func (c *Client) Signup(ctx context.Context, name, email, password string) (model.User, error) {
	var w wireUser
	err := c.do(ctx, http.MethodPost, "/signup", signupReq{Name: name, Email: email, Password: password}, &w)
	return w.canonical(), err
}

// ListOrders calls GET /orders/{userId}.
func (c *Client) ListOrders(ctx context.Context, userID string) ([]model.Order, error) {
	var ws []wireOrder
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(userID), nil, &ws); err != nil {
		return nil, err
	}
	out := make([]model.Order, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.canonical())
	}
	return out, nil
}

// ListAllOrders calls GET /orders (every customer, newest first).
func (c *Client) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	var ws []wireOrder
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &ws); err != nil {
		return nil, err
	}
	out := make([]model.Order, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.canonical())
	}
	return out, nil
}

// CreateOrder calls POST /orders.
func (c *Client) CreateOrder(ctx context.Context, o model.Order) (model.Order, error) {
	var w wireOrder
	err := c.do(ctx, http.MethodPost, "/orders", o, &w)
	return w.canonical(), err
}

// UpdateOrder calls PUT /orders/{id}.
func (c *Client) UpdateOrder(ctx context.Context, o model.Order) (model.Order, error) {
	var w wireOrder
	err := c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(o.ID), o, &w)
	return w.canonical(), err
}

// ListSaleEvents calls GET /sale-events.
func (c *Client) ListSaleEvents(ctx context.Context) ([]model.SaleEvent, error) {
	var out []model.SaleEvent
	err := c.do(ctx, http.MethodGet, "/sale-events", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("remote: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("remote: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnreachable, method, path, err)
	}
	defer resp.Body.Close()

	if tok := resp.Header.Get(TokenHeader); tok != "" {
		c.SetToken(tok)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %v", ErrUnreachable, method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("remote: decode %s %s: %w", method, path, err)
	}
	return nil
}

func statusError(code int, raw []byte) *StatusError {
	var eb errorBody
	msg := http.StatusText(code)
	if json.Unmarshal(raw, &eb) == nil {
		switch {
		case eb.Error != "":
			msg = eb.Error
		case eb.Message != "":
			msg = eb.Message
		}
	}
	return &StatusError{Code: code, Message: msg}
}
