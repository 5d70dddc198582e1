package store

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/crimson-storefront/internal/model"
	"github.com/iliyamo/crimson-storefront/internal/persist"
)

// errUnhealthy is returned by Refresh when the API answers but reports its
// store as disconnected.
var errUnhealthy = errors.New("store: remote reports database offline")

// Start restores the persisted session synchronously and then runs the
// initial sync in the background, bounded by the init timeout.  Only the
// first call has any effect.
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.restoreSession()

		s.mu.Lock()
		s.loading = true
		s.mu.Unlock()

		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			defer close(s.ready)
			ictx, cancel := context.WithTimeout(ctx, s.initTimeout)
			defer cancel()
			if err := s.sync(ictx); err != nil {
				s.log.Warn().Err(err).Msg("store: initial sync incomplete, running on local data")
			}
		}()
	})
}

// Refresh repeats the sync on demand and reports whether the remote was
// reachable and healthy.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.initTimeout)
	defer cancel()
	return s.sync(ctx)
}

func (s *Store) restoreSession() {
	var u model.User
	ok, err := persist.LoadJSON(s.cache, persist.KeyUser, &u)
	switch {
	case err != nil:
		s.log.Error().Err(err).Msg("store: load persisted user")
	case ok && u.ID != "":
		s.mu.Lock()
		s.user = &u
		s.mu.Unlock()
	case ok:
		_ = s.cache.Remove(persist.KeyUser)
	}

	if th, isHolder := s.remote.(tokenHolder); isHolder {
		if tok, ok, err := s.cache.Load(persist.KeyToken); err == nil && ok {
			th.SetToken(tok)
		}
	}

	if raw, ok, err := s.cache.Load(persist.KeyTheme); err == nil && ok {
		switch Theme(raw) {
		case ThemeDark, ThemeLight:
			s.mu.Lock()
			s.theme = Theme(raw)
			s.mu.Unlock()
		}
	}
}

func (s *Store) sync(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	h, err := s.remote.Health(ctx)
	if err == nil && !h.Healthy() {
		err = errUnhealthy
	}
	if err != nil {
		s.mu.Lock()
		s.online = false
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.online = true
	s.mu.Unlock()

	s.mu.Lock()
	since := s.productEdits.rev
	s.mu.Unlock()
	if ps, err := s.remote.ListProducts(ctx); err != nil {
		s.remoteFailed("list products", err)
	} else if len(ps) > 0 {
		s.mu.Lock()
		s.products = mergeProducts(s.products, ps, s.productEdits, since)
		s.mu.Unlock()
	}

	if us, err := s.remote.ListUsers(ctx); err != nil {
		s.remoteFailed("list users", err)
	} else if len(us) > 0 {
		s.mu.Lock()
		s.users = us
		s.mu.Unlock()
	}

	if evs, err := s.remote.ListSaleEvents(ctx); err != nil {
		s.remoteFailed("list sale events", err)
	} else {
		s.mu.Lock()
		s.saleEvents = evs
		s.mu.Unlock()
	}

	s.mu.Lock()
	var u *model.User
	if s.user != nil {
		cp := *s.user
		u = &cp
	}
	s.mu.Unlock()
	if u != nil {
		if err := s.fetchOrders(ctx, *u); err != nil {
			s.remoteFailed("list orders", err)
		}
	}
	return nil
}

// fetchOrders loads the order history for u: every order for an admin,
// their own otherwise.  The result is merged into the local history and
// dropped if the session changed in the meantime.
func (s *Store) fetchOrders(ctx context.Context, u model.User) error {
	var (
		list []model.Order
		err  error
	)
	s.mu.Lock()
	since := s.orderEdits.rev
	s.mu.Unlock()
	if u.IsAdmin() {
		list, err = s.remote.ListAllOrders(ctx)
	} else {
		list, err = s.remote.ListOrders(ctx, u.ID)
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.ID != u.ID {
		return nil
	}
	s.orders = mergeOrders(s.orders, list, s.orderEdits, since)
	return nil
}

// ActiveSaleEvents returns the banners running at t.
func (s *Store) ActiveSaleEvents(t time.Time) []model.SaleEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SaleEvent
	for _, e := range s.saleEvents {
		if e.ActiveAt(t) {
			out = append(out, e)
		}
	}
	return out
}
