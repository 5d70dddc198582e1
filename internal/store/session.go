package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/iliyamo/crimson-storefront/internal/model"
	"github.com/iliyamo/crimson-storefront/internal/persist"
	"github.com/iliyamo/crimson-storefront/internal/remote"
)

// Login signs a user in.  The master administrator is recognised locally
// and never reaches the API.  On success the user is persisted and their
// order history is fetched in the background.
func (s *Store) Login(ctx context.Context, identifier, secret string) (model.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	secret = strings.TrimSpace(secret)
	if identifier == "" || secret == "" {
		return model.User{}, ErrInvalidInput
	}

	if identifier == model.MasterIdentifier && secret == model.MasterSecret {
		u := model.MasterAdmin()
		if th, ok := s.remote.(tokenHolder); ok {
			th.SetToken("")
		}
		s.adopt(u)
		s.log.Info().Str("user_id", u.ID).Msg("store: master admin signed in")
		return u, nil
	}

	u, err := s.remote.Login(ctx, identifier, secret)
	if err != nil {
		return model.User{}, s.authError(err, ErrInvalidCredentials)
	}
	s.markOnline()
	s.adopt(u)
	s.log.Info().Str("user_id", u.ID).Msg("store: signed in")
	s.async("list orders", func(ctx context.Context) error { return s.fetchOrders(ctx, u) })
	return u, nil
}

// Signup registers a new account and signs it in.
func (s *Store) Signup(ctx context.Context, name, email, password string) (model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return model.User{}, ErrInvalidInput
	}

	u, err := s.remote.Signup(ctx, name, email, password)
	if err != nil {
		if remote.IsStatus(err, http.StatusConflict) {
			return model.User{}, fmt.Errorf("%w: %s", ErrEmailTaken, email)
		}
		return model.User{}, s.authError(err, ErrRejected)
	}
	s.markOnline()
	s.adopt(u)

	s.mu.Lock()
	s.users = upsertUser(s.users, u)
	s.mu.Unlock()

	s.log.Info().Str("user_id", u.ID).Msg("store: signed up")
	return u, nil
}

func (s *Store) markOnline() {
	s.mu.Lock()
	s.online = true
	s.mu.Unlock()
}

// adopt makes u the session user, replacing any previous session.  It
// leaves the online flag alone: the master login never asks the remote.
func (s *Store) adopt(u model.User) {
	s.mu.Lock()
	prev := s.user
	cp := u
	s.user = &cp
	if prev == nil || prev.ID != u.ID {
		s.orders = nil
	}
	s.mu.Unlock()

	s.persistUser(&u)
	s.persistToken()
}

func (s *Store) authError(err, rejected error) error {
	var se *remote.StatusError
	switch {
	case remote.IsUnreachable(err):
		s.mu.Lock()
		s.online = false
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrOffline, err)
	case errors.As(err, &se) && se.Code == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrOffline, se.Message)
	case errors.As(err, &se):
		return fmt.Errorf("%w: %s", rejected, se.Message)
	}
	return fmt.Errorf("%w: %v", rejected, err)
}

// Logout ends the session and forgets the persisted user and token.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.orders = nil
	s.mu.Unlock()

	if th, ok := s.remote.(tokenHolder); ok {
		th.SetToken("")
	}
	s.persistUser(nil)
	if err := s.cache.Remove(persist.KeyToken); err != nil {
		s.log.Error().Err(err).Msg("store: forget token")
	}
}

// UpdateProfile merges patch into the signed-in user and mirrors it.
func (s *Store) UpdateProfile(patch model.ProfilePatch) (model.User, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return model.User{}, ErrNotSignedIn
	}
	u := patch.Apply(*s.user)
	s.user = &u
	s.users = replaceUser(s.users, u)
	s.mu.Unlock()

	s.persistUser(&u)
	s.async("sync user", func(ctx context.Context) error {
		saved, err := s.remote.SyncUser(ctx, u)
		if err != nil {
			return err
		}
		s.reconcileUser(saved)
		return nil
	})
	return u, nil
}

// ToggleUserRole flips a user between USER and ADMIN.  Only an admin
// session may do it.
func (s *Store) ToggleUserRole(userID string) (model.User, error) {
	s.mu.Lock()
	if s.user == nil || !s.user.IsAdmin() {
		s.mu.Unlock()
		return model.User{}, ErrForbidden
	}
	var target *model.User
	for i := range s.users {
		if s.users[i].ID == userID {
			target = &s.users[i]
			break
		}
	}
	if target == nil && s.user != nil && s.user.ID == userID {
		target = s.user
	}
	if target == nil {
		s.mu.Unlock()
		return model.User{}, ErrUserNotFound
	}
	u := *target
	u.Role = u.Role.Toggled()
	s.users = replaceUser(s.users, u)
	self := s.user != nil && s.user.ID == userID
	if self {
		s.user = &u
	}
	s.mu.Unlock()

	if self {
		s.persistUser(&u)
	}
	s.async("sync user", func(ctx context.Context) error {
		saved, err := s.remote.SyncUser(ctx, u)
		if err != nil {
			return err
		}
		s.reconcileUser(saved)
		return nil
	})
	return u, nil
}

func (s *Store) reconcileUser(saved model.User) {
	if saved.ID == "" {
		return
	}
	s.mu.Lock()
	s.users = replaceUser(s.users, saved)
	self := s.user != nil && s.user.ID == saved.ID
	if self {
		cp := saved
		s.user = &cp
	}
	s.mu.Unlock()
	if self {
		s.persistUser(&saved)
	}
}

func replaceUser(list []model.User, u model.User) []model.User {
	for i := range list {
		if list[i].ID == u.ID {
			list[i] = u
			return list
		}
	}
	return list
}

func upsertUser(list []model.User, u model.User) []model.User {
	for i := range list {
		if list[i].ID == u.ID {
			list[i] = u
			return list
		}
	}
	return append(list, u)
}

// Theme returns the current theme.
func (s *Store) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// ToggleTheme switches between dark and light and persists the choice.
func (s *Store) ToggleTheme() Theme {
	s.mu.Lock()
	if s.theme == ThemeDark {
		s.theme = ThemeLight
	} else {
		s.theme = ThemeDark
	}
	t := s.theme
	s.mu.Unlock()

	if err := s.cache.Save(persist.KeyTheme, string(t)); err != nil {
		s.log.Error().Err(err).Msg("store: persist theme")
	}
	return t
}
