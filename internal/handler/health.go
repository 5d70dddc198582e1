package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crimson-storefront/internal/database"
)

// ServiceName is reported by GET /api/health.
const ServiceName = "crimson-api"

// HealthHandler reports process liveness and whether the SQL store is
// reachable.
type HealthHandler struct {
	DB  *database.DB
	Now func() time.Time
}

func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{DB: db, Now: time.Now}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Health handles GET /api/health.  It always answers 200; code is 1 only
// when the store answers a ping within two seconds.
func (h *HealthHandler) Health(c echo.Context) error {
	status, code := "online", 1
	if h.DB == nil || h.DB.PingWithin(c.Request().Context(), 2*time.Second) != nil {
		status, code = "offline", 0
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  status,
		"code":    code,
		"service": ServiceName,
		"time":    h.Now().UTC().Format(time.RFC3339),
	})
}
