package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliyamo/crimson-storefront/internal/model"
	"github.com/iliyamo/crimson-storefront/internal/remote"
)

// fakeRemote records every call.  err, when set, is returned by every
// method except Health and Login.
type fakeRemote struct {
	mu    sync.Mutex
	calls map[string]int
	token string

	health    remote.Health
	healthErr error
	block     chan struct{}

	// gates holds the named list calls open until the channel is closed;
	// entered reports each held call as it arrives.
	gates   map[string]chan struct{}
	entered chan string

	products []model.Product
	users    []model.User
	orders   []model.Order
	events   []model.SaleEvent
	err      error

	loginUser model.User
	loginErr  error
	signupErr error

	createdOrders   []model.Order
	createdProducts []model.Product
	synced          []model.User
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		calls:  map[string]int{},
		health: remote.Health{Status: "online", Code: remote.ConnectedCode},
	}
}

// holdOpen makes the named list calls wait for the returned channel.
func (f *fakeRemote) holdOpen(names ...string) chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gates = map[string]chan struct{}{}
	f.entered = make(chan string, 8)
	for _, n := range names {
		f.gates[n] = gate
	}
	return gate
}

func (f *fakeRemote) hold(ctx context.Context, name string) {
	f.mu.Lock()
	gate, entered := f.gates[name], f.entered
	f.mu.Unlock()
	if gate == nil {
		return
	}
	entered <- name
	select {
	case <-gate:
	case <-ctx.Done():
	}
}

func (f *fakeRemote) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.err
}

func (f *fakeRemote) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeRemote) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeRemote) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeRemote) SetToken(tok string) {
	f.mu.Lock()
	f.token = tok
	f.mu.Unlock()
}

func (f *fakeRemote) Health(ctx context.Context) (remote.Health, error) {
	f.mu.Lock()
	f.calls["health"]++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return remote.Health{}, fmt.Errorf("%w: %v", remote.ErrUnreachable, ctx.Err())
		}
	}
	return f.health, f.healthErr
}

func (f *fakeRemote) ListProducts(ctx context.Context) ([]model.Product, error) {
	f.hold(ctx, "list products")
	if err := f.hit("list products"); err != nil {
		return nil, err
	}
	return f.products, nil
}

func (f *fakeRemote) CreateProduct(_ context.Context, p model.Product) (model.Product, error) {
	if err := f.hit("create product"); err != nil {
		return model.Product{}, err
	}
	f.mu.Lock()
	f.createdProducts = append(f.createdProducts, p)
	f.mu.Unlock()
	return p, nil
}

func (f *fakeRemote) UpdateProduct(_ context.Context, p model.Product) (model.Product, error) {
	if err := f.hit("update product"); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (f *fakeRemote) DeleteProduct(context.Context, string) error {
	return f.hit("delete product")
}

func (f *fakeRemote) ListUsers(context.Context) ([]model.User, error) {
	if err := f.hit("list users"); err != nil {
		return nil, err
	}
	return f.users, nil
}

func (f *fakeRemote) SyncUser(_ context.Context, u model.User) (model.User, error) {
	if err := f.hit("sync user"); err != nil {
		return model.User{}, err
	}
	f.mu.Lock()
	f.synced = append(f.synced, u)
	f.mu.Unlock()
	return u, nil
}

func (f *fakeRemote) Login(context.Context, string, string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["login"]++
	if f.loginErr != nil {
		return model.User{}, f.loginErr
	}
	f.token = "tok-" + f.loginUser.ID
	return f.loginUser, nil
}

func (f *fakeRemote) Signup(_ context.Context, name, email, _ string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["signup"]++
	if f.signupErr != nil {
		return model.User{}, f.signupErr
	}
	f.token = "tok-new"
	return model.User{ID: "u-new000001", Name: name, Email: email, Role: model.RoleUser}, nil
}

func (f *fakeRemote) ListOrders(ctx context.Context, _ string) ([]model.Order, error) {
	f.hold(ctx, "list orders")
	if err := f.hit("list orders"); err != nil {
		return nil, err
	}
	return f.orders, nil
}

func (f *fakeRemote) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	f.hold(ctx, "list all orders")
	if err := f.hit("list all orders"); err != nil {
		return nil, err
	}
	return f.orders, nil
}

func (f *fakeRemote) CreateOrder(_ context.Context, o model.Order) (model.Order, error) {
	if err := f.hit("create order"); err != nil {
		return model.Order{}, err
	}
	f.mu.Lock()
	f.createdOrders = append(f.createdOrders, o)
	f.mu.Unlock()
	return o, nil
}

func (f *fakeRemote) UpdateOrder(_ context.Context, o model.Order) (model.Order, error) {
	if err := f.hit("update order"); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (f *fakeRemote) ListSaleEvents(context.Context) ([]model.SaleEvent, error) {
	if err := f.hit("list sale events"); err != nil {
		return nil, err
	}
	return f.events, nil
}
