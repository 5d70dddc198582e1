// Package repository is the SQL data access layer.  Sentinel errors let
// handlers pick a status code without inspecting driver errors.
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

var (
	// ErrNotFound maps to 404.
	ErrNotFound = errors.New("not found")
	// ErrConflict maps to 409: the id is taken.
	ErrConflict = errors.New("conflict")
	// ErrEmailExists maps to 409 on signup and profile updates.
	ErrEmailExists = errors.New("email already exists")
)

// IsUnavailable reports whether err means the database could not be
// reached, as opposed to a query that failed.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &opErr)
}

// isDuplicate reports a unique key violation on either driver.
func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
