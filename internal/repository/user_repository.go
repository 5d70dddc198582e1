package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/crimson-storefront/internal/database"
	"github.com/iliyamo/crimson-storefront/internal/model"
)

const userCols = "id, name, email, role, avatar, phone, address, password_hash"

// UserRecord is a users row.  PasswordHash never leaves the API.
type UserRecord struct {
	model.User
	PasswordHash string
}

// UserRepo reads and writes accounts.
type UserRepo struct {
	db  *database.DB
	now func() time.Time
}

func NewUserRepo(db *database.DB) *UserRepo { return &UserRepo{db: db, now: time.Now} }

func scanUser(row interface{ Scan(...any) error }) (UserRecord, error) {
	var u UserRecord
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Avatar, &u.Phone, &u.Address, &u.PasswordHash)
	u.Role = model.Role(role)
	if !u.Role.Valid() {
		u.Role = model.RoleUser
	}
	return u, err
}

// List returns every user without password hashes, oldest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userCols+" FROM users ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u.User)
	}
	return out, rows.Err()
}

// Get returns a user by business id or ErrNotFound.
func (r *UserRepo) Get(ctx context.Context, id string) (UserRecord, error) {
	return r.one(ctx, "SELECT "+userCols+" FROM users WHERE id = ?", id)
}

// FindForLogin matches identifier against the id, the email or the display
// name (case-insensitive).
func (r *UserRepo) FindForLogin(ctx context.Context, identifier string) (UserRecord, error) {
	ident := strings.ToLower(strings.TrimSpace(identifier))
	return r.one(ctx,
		"SELECT "+userCols+" FROM users WHERE id = ? OR email = ? OR LOWER(name) = ? LIMIT 1",
		strings.TrimSpace(identifier), ident, ident)
}

func (r *UserRepo) one(ctx context.Context, q string, args ...any) (UserRecord, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.db.Rebind(q), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, ErrNotFound
	}
	return u, err
}

// EmailTaken reports whether email belongs to a user other than exceptID.
func (r *UserRepo) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		r.db.Rebind("SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?"),
		strings.ToLower(strings.TrimSpace(email)), exceptID).Scan(&n)
	return n > 0, err
}

// Create inserts a new account.  A duplicate email is ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u model.User, passwordHash string) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	q := r.db.Rebind("INSERT INTO users (" + userCols + ", created_at) VALUES (?,?,?,?,?,?,?,?,?)")
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Name, u.Email, string(u.Role), u.Avatar, u.Phone, u.Address, passwordHash, r.now().UTC())
	if isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// Update writes the profile fields and role of an existing user.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	q := r.db.Rebind("UPDATE users SET name = ?, email = ?, role = ?, avatar = ?, phone = ?, address = ? WHERE id = ?")
	_, err := r.db.ExecContext(ctx, q, u.Name, u.Email, string(u.Role), u.Avatar, u.Phone, u.Address, u.ID)
	if isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// Upsert creates or updates a user by business id.  Users created this way
// have no password and cannot log in until one is set.
func (r *UserRepo) Upsert(ctx context.Context, u model.User) (model.User, error) {
	if !u.Role.Valid() {
		u.Role = model.RoleUser
	}
	_, err := r.Get(ctx, u.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		err = r.Create(ctx, u, "")
	case err == nil:
		err = r.Update(ctx, u)
	}
	if err != nil {
		return model.User{}, err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return u, nil
}

// SetPasswordHash replaces the stored hash.
func (r *UserRepo) SetPasswordHash(ctx context.Context, id, hash string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE users SET password_hash = ? WHERE id = ?"), hash, id)
	return err
}

// Count returns the number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}
