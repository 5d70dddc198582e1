package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/crimson-storefront/internal/middleware"
	"github.com/iliyamo/crimson-storefront/internal/model"
	"github.com/iliyamo/crimson-storefront/internal/queue"
	"github.com/iliyamo/crimson-storefront/internal/repository"
	"github.com/iliyamo/crimson-storefront/internal/service"
)

// OrderHandler stores orders and announces placements and status changes
// on the event publisher.
type OrderHandler struct {
	Orders *repository.OrderRepo
	Events service.Publisher
	Log    zerolog.Logger
	Now    func() time.Time
}

func NewOrderHandler(o *repository.OrderRepo, events service.Publisher, log zerolog.Logger) *OrderHandler {
	if events == nil {
		events = service.Noop{}
	}
	return &OrderHandler{Orders: o, Events: events, Log: log, Now: time.Now}
}

// ListAll handles GET /api/orders (every customer, newest first).
func (h *OrderHandler) ListAll(c echo.Context) error {
	list, err := h.Orders.List(c.Request().Context())
	if err != nil {
		return storeError(c, h.Log, err, "order")
	}
	return c.JSON(http.StatusOK, list)
}

// ListByUser handles GET /api/orders/:userId, newest first.
func (h *OrderHandler) ListByUser(c echo.Context) error {
	list, err := h.Orders.ListByUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return storeError(c, h.Log, err, "order")
	}
	return c.JSON(http.StatusOK, list)
}

// Create handles POST /api/orders.  The total is recomputed from the item
// snapshot and a new order always starts PENDING.
func (h *OrderHandler) Create(c echo.Context) error {
	var o model.Order
	if err := c.Bind(&o); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(o.UserID) == "" {
		return badRequest(c, "userId is required")
	}
	if len(o.Items) == 0 {
		return badRequest(c, "order has no items")
	}
	for _, it := range o.Items {
		if it.Quantity < 1 {
			return badRequest(c, "item quantity must be at least 1")
		}
	}
	if strings.TrimSpace(o.ID) == "" {
		o.ID = model.NewOrderID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = h.Now()
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.Total = model.OrderTotal(o.Items)
	o.Status = model.OrderStatusPending

	if err := h.Orders.Create(c.Request().Context(), o); err != nil {
		return storeError(c, h.Log, err, "order")
	}
	h.publish(c, queue.NewOrderEvent(queue.OrderPlaced, o, "", middleware.UserID(c)))
	return c.JSON(http.StatusCreated, o)
}

type orderUpdateReq struct {
	Status model.OrderStatus `json:"status"`
}

// Update handles PUT /api/orders/:id.  Only the status may change, and
// only along the order lifecycle; anything else is 409.
func (h *OrderHandler) Update(c echo.Context) error {
	var req orderUpdateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if !req.Status.Valid() {
		return badRequest(c, "unknown status")
	}

	ctx := c.Request().Context()
	o, err := h.Orders.Get(ctx, c.Param("id"))
	if err != nil {
		return storeError(c, h.Log, err, "order")
	}
	if !model.CanTransition(o.Status, req.Status) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": model.ErrInvalidTransition.Error(),
			"from":  o.Status,
			"to":    req.Status,
		})
	}
	if err := h.Orders.UpdateStatus(ctx, o.ID, req.Status); err != nil {
		return storeError(c, h.Log, err, "order")
	}
	prev := o.Status
	o.Status = req.Status
	h.publish(c, queue.NewOrderEvent(queue.OrderStatusChanged, o, prev, middleware.UserID(c)))
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) publish(c echo.Context, ev queue.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 3*time.Second)
	defer cancel()
	if err := h.Events.Publish(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		h.Log.Warn().Err(err).Str("order", ev.OrderID).Str("type", ev.Type).Msg("publish order event failed")
	}
}
