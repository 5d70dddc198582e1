package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/crimson-storefront/internal/repository"
)

// SaleEventHandler serves the promotional banners.
type SaleEventHandler struct {
	Events *repository.SaleEventRepo
	Log    zerolog.Logger
	Now    func() time.Time
}

func NewSaleEventHandler(e *repository.SaleEventRepo, log zerolog.Logger) *SaleEventHandler {
	return &SaleEventHandler{Events: e, Log: log, Now: time.Now}
}

// Active handles GET /api/sale-events: events running right now.
func (h *SaleEventHandler) Active(c echo.Context) error {
	es, err := h.Events.Active(c.Request().Context(), h.Now())
	if err != nil {
		return storeError(c, h.Log, err, "sale event")
	}
	return c.JSON(http.StatusOK, es)
}
