package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/crimson-storefront/internal/config"
	"github.com/iliyamo/crimson-storefront/internal/model"
	"github.com/iliyamo/crimson-storefront/internal/repository"
	"github.com/iliyamo/crimson-storefront/internal/utils"
)

// AccessTokenHeader carries the JWT issued on login and signup.
const AccessTokenHeader = "X-Access-Token"

// AuthHandler bundles dependencies for the login and signup endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Log   zerolog.Logger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Log: log}
}

// ----- DTOs -----

type loginReq struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login matches the identifier against id, email or name and verifies the
// password.  Legacy plaintext rows are upgraded to bcrypt on success.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		return badRequest(c, "identifier/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Users.FindForLogin(ctx, req.Identifier)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}
	if err != nil {
		return storeError(c, h.Log, err, "user")
	}
	ok, rehash := utils.VerifyPassword(rec.PasswordHash, req.Password)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}
	if rehash {
		if hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost); err == nil {
			if err := h.Users.SetPasswordHash(ctx, rec.ID, hash); err != nil {
				h.Log.Warn().Err(err).Str("user", rec.ID).Msg("password rehash failed")
			}
		}
	}
	if err := h.issue(c, rec.User); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, rec.User)
}

// Signup creates a USER account.  A taken email is 409.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return badRequest(c, "name/email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	u := model.User{
		ID:     model.NewUserID(),
		Name:   req.Name,
		Email:  req.Email,
		Role:   model.RoleUser,
		Avatar: AvatarURL(req.Name),
	}
	if err := h.Users.Create(ctx, u, hash); err != nil {
		return storeError(c, h.Log, err, "user")
	}
	if err := h.issue(c, u); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) issue(c echo.Context, u model.User) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), h.Cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	c.Response().Header().Set(AccessTokenHeader, access.Token)
	return nil
}

// AvatarURL is the generated avatar for a new account.
func AvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=dc2626&color=fff"
}
