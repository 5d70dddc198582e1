package store

import "errors"

var (
	// ErrInvalidCredentials is returned when the API rejects a login.
	ErrInvalidCredentials = errors.New("store: invalid credentials")
	// ErrOffline is returned by login and signup when the API cannot be
	// reached or reports its database offline.
	ErrOffline = errors.New("store: remote offline")

	ErrEmailTaken    = errors.New("store: email already registered")
	ErrRejected      = errors.New("store: rejected by remote")
	ErrInvalidInput  = errors.New("store: missing required field")
	ErrNotSignedIn   = errors.New("store: not signed in")
	ErrOrderNotFound = errors.New("store: order not found")
	ErrUserNotFound  = errors.New("store: user not found")
	ErrForbidden     = errors.New("store: admins only")
)
