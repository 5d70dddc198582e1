package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/crimson-storefront/internal/middleware"
	"github.com/iliyamo/crimson-storefront/internal/model"
	"github.com/iliyamo/crimson-storefront/internal/repository"
)

// UserHandler serves the roster.  Password hashes never appear in a
// response.
//
// With SelfOnly set, a caller without the ADMIN role may only write their
// own record and can never change its role.
type UserHandler struct {
	Users    *repository.UserRepo
	Log      zerolog.Logger
	SelfOnly bool
}

func NewUserHandler(u *repository.UserRepo, log zerolog.Logger) *UserHandler {
	return &UserHandler{Users: u, Log: log}
}

// List handles GET /api/users.
func (h *UserHandler) List(c echo.Context) error {
	us, err := h.Users.List(c.Request().Context())
	if err != nil {
		return storeError(c, h.Log, err, "user")
	}
	return c.JSON(http.StatusOK, us)
}

// Sync handles POST /api/users/sync: create or overwrite a user by
// business id.
func (h *UserHandler) Sync(c echo.Context) error {
	var u model.User
	if err := c.Bind(&u); err != nil {
		return badRequest(c, "invalid body")
	}
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		return badRequest(c, "id is required")
	}
	if u.Role != "" && !u.Role.Valid() {
		return badRequest(c, "role must be USER or ADMIN")
	}
	ctx := c.Request().Context()
	if h.restricted(c) {
		if middleware.UserID(c) != u.ID {
			return forbidden(c)
		}
		rec, err := h.Users.Get(ctx, u.ID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			u.Role = model.RoleUser
		case err != nil:
			return storeError(c, h.Log, err, "user")
		default:
			u.Role = rec.Role
		}
	}
	out, err := h.Users.Upsert(ctx, u)
	if err != nil {
		return storeError(c, h.Log, err, "user")
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PUT /api/users/:id with a partial profile.
func (h *UserHandler) Update(c echo.Context) error {
	var patch model.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "invalid body")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return badRequest(c, "name must not be empty")
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		return badRequest(c, "email must not be empty")
	}

	if h.restricted(c) && middleware.UserID(c) != c.Param("id") {
		return forbidden(c)
	}
	ctx := c.Request().Context()
	rec, err := h.Users.Get(ctx, c.Param("id"))
	if err != nil {
		return storeError(c, h.Log, err, "user")
	}
	u := patch.Apply(rec.User)
	if err := h.Users.Update(ctx, u); err != nil {
		return storeError(c, h.Log, err, "user")
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) restricted(c echo.Context) bool {
	return h.SelfOnly && middleware.Role(c) != string(model.RoleAdmin)
}
