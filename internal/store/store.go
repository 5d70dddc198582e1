// Package store is the client-side synchronizer that owns the storefront
// state: catalog, cart, orders, user roster and the signed-in session.
//
// Every mutator applies its change locally first and then mirrors it to the
// remote API on a tracked goroutine.  Remote failures are logged and flip
// the online flag; local state is never rolled back.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/crimson-storefront/internal/model"
	"github.com/iliyamo/crimson-storefront/internal/persist"
	"github.com/iliyamo/crimson-storefront/internal/remote"
)

// Remote is the slice of the storefront API the store talks to.
// *remote.Client satisfies it.
type Remote interface {
	Health(ctx context.Context) (remote.Health, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	UpdateProduct(ctx context.Context, p model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]model.User, error)
	SyncUser(ctx context.Context, u model.User) (model.User, error)
	Login(ctx context.Context, identifier, password string) (model.User, error)
	Signup(ctx context.Context, name, email, password string) (model.User, error)
	ListOrders(ctx context.Context, userID string) ([]model.Order, error)
	ListAllOrders(ctx context.Context) ([]model.Order, error)
	CreateOrder(ctx context.Context, o model.Order) (model.Order, error)
	UpdateOrder(ctx context.Context, o model.Order) (model.Order, error)
	ListSaleEvents(ctx context.Context) ([]model.SaleEvent, error)
}

// tokenHolder is implemented by remotes that carry a bearer token.
type tokenHolder interface {
	Token() string
	SetToken(string)
}

// Theme is the persisted UI preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

const (
	defaultInitTimeout = 3 * time.Second
	defaultCallTimeout = 10 * time.Second
)

// Store is safe for concurrent use.
type Store struct {
	remote Remote
	cache  persist.Bridge
	log    zerolog.Logger

	initTimeout time.Duration
	callTimeout time.Duration
	now         func() time.Time
	newOrderID  func() string

	mu         sync.Mutex
	products   []model.Product
	cart       []model.CartItem
	orders     []model.Order
	users      []model.User
	user       *model.User
	saleEvents []model.SaleEvent
	theme      Theme
	online     bool
	loading    bool

	productEdits *edits
	orderEdits   *edits

	inflight  sync.WaitGroup
	startOnce sync.Once
	ready     chan struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger (default: disabled).
func WithLogger(l zerolog.Logger) Option { return func(s *Store) { s.log = l } }

// WithCatalog replaces the bundled catalog shown before the first sync.
func WithCatalog(ps []model.Product) Option {
	return func(s *Store) { s.products = append([]model.Product(nil), ps...) }
}

// WithInitTimeout bounds the background initial sync.
func WithInitTimeout(d time.Duration) Option { return func(s *Store) { s.initTimeout = d } }

// WithCallTimeout bounds each asynchronous mirror call.
func WithCallTimeout(d time.Duration) Option { return func(s *Store) { s.callTimeout = d } }

// WithClock overrides time.Now for order timestamps and sale banners.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithOrderIDs overrides the order id generator.
func WithOrderIDs(gen func() string) Option { return func(s *Store) { s.newOrderID = gen } }

// New builds a store seeded with the bundled catalog.  Call Start to load
// the persisted session and begin the initial sync.
func New(r Remote, cache persist.Bridge, opts ...Option) *Store {
	s := &Store{
		remote:      r,
		cache:       cache,
		log:         zerolog.Nop(),
		initTimeout: defaultInitTimeout,
		callTimeout: defaultCallTimeout,
		now:         time.Now,
		newOrderID:  model.NewOrderID,
		products:    model.DefaultCatalog(),
		theme:       ThemeDark,
		ready:       make(chan struct{}),

		productEdits: newEdits(),
		orderEdits:   newEdits(),
	}
	for _, o := range opts {
		o(s)
	}
	if cache == nil {
		s.cache = persist.NewMemoryStore()
	}
	return s
}

// Snapshot is a deep copy of the store state at one instant.
type Snapshot struct {
	Products   []model.Product
	Cart       []model.CartItem
	Orders     []model.Order
	Users      []model.User
	User       *model.User
	SaleEvents []model.SaleEvent
	Theme      Theme
	Online     bool
	Loading    bool
}

// CartCount is the number of units in the cart.
func (s Snapshot) CartCount() int {
	n := 0
	for _, it := range s.Cart {
		n += it.Quantity
	}
	return n
}

// CartSubtotal is the sum of price × quantity over the cart.
func (s Snapshot) CartSubtotal() float64 { return model.Subtotal(s.Cart) }

// CartTotal is the subtotal plus shipping.
func (s Snapshot) CartTotal() float64 { return model.OrderTotal(s.Cart) }

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Products:   append([]model.Product(nil), s.products...),
		Cart:       model.CloneItems(s.cart),
		Orders:     make([]model.Order, len(s.orders)),
		Users:      append([]model.User(nil), s.users...),
		SaleEvents: append([]model.SaleEvent(nil), s.saleEvents...),
		Theme:      s.theme,
		Online:     s.online,
		Loading:    s.loading,
	}
	for i, o := range s.orders {
		snap.Orders[i] = o.Clone()
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// IsAdmin reports whether the signed-in user holds the ADMIN role.
func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.user.IsAdmin()
}

// Online reports the result of the latest remote interaction.
func (s *Store) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// Ready is closed once the initial sync has finished, successfully or not.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// Wait blocks until the initial sync and every in-flight mirror call have
// returned.
func (s *Store) Wait() { s.inflight.Wait() }

// async runs fn on a tracked goroutine with its own deadline.  Errors are
// logged and never propagate to the caller.
func (s *Store) async(op string, fn func(ctx context.Context) error) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.callTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.remoteFailed(op, err)
			return
		}
		s.mu.Lock()
		s.online = true
		s.mu.Unlock()
	}()
}

func (s *Store) remoteFailed(op string, err error) {
	if remote.IsUnreachable(err) {
		s.mu.Lock()
		s.online = false
		s.mu.Unlock()
		s.log.Warn().Err(err).Str("op", op).Msg("store: remote unreachable")
		return
	}
	s.log.Error().Err(err).Str("op", op).Msg("store: remote rejected")
}

func (s *Store) persistUser(u *model.User) {
	var err error
	if u == nil {
		err = s.cache.Remove(persist.KeyUser)
	} else {
		err = persist.SaveJSON(s.cache, persist.KeyUser, u)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("store: persist user")
	}
}

func (s *Store) persistToken() {
	th, ok := s.remote.(tokenHolder)
	if !ok {
		return
	}
	var err error
	if tok := th.Token(); tok != "" {
		err = s.cache.Save(persist.KeyToken, tok)
	} else {
		err = s.cache.Remove(persist.KeyToken)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("store: persist token")
	}
}
