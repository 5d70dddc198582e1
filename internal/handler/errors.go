package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/crimson-storefront/internal/repository"
)

// storeError maps a repository error to a status and an {"error": ...}
// body.  what names the entity for 404 and 409 messages.
func storeError(c echo.Context, log zerolog.Logger, err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "User already exists"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": what + " already exists"})
	case repository.IsUnavailable(err):
		log.Error().Err(err).Str("path", c.Path()).Msg("database offline")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "database offline"})
	}
	log.Error().Err(err).Str("path", c.Path()).Str("entity", what).Msg("query failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}
