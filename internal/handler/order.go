package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/mo"

	"github.com/iliyamo/order-desk/internal/model"
	"github.com/iliyamo/order-desk/internal/queue"
	"github.com/iliyamo/order-desk/internal/repository"
	"github.com/iliyamo/order-desk/internal/service"
)

// publishTimeout bounds a single event publish, which runs detached from the
// request that triggered it.
const publishTimeout = 10 * time.Second

// OrderHandler serves the /orders resource and its line items. Successful
// writes publish an order event; publish failures are logged by the
// publisher and never affect the response.
type OrderHandler struct {
	Orders *repository.OrderRepo
	Events service.OrderEventPublisher
}

// NewOrderHandler constructs an OrderHandler. A nil publisher disables
// events.
func NewOrderHandler(repo *repository.OrderRepo, events service.OrderEventPublisher) *OrderHandler {
	if repo == nil {
		panic("nil repository passed to NewOrderHandler")
	}
	if events == nil {
		events = service.NopPublisher{}
	}
	return &OrderHandler{Orders: repo, Events: events}
}

type createOrderRequest struct {
	ID         idField            `json:"order_id"`
	Notes      mo.Option[*string] `json:"notes"`
	CustomerID mo.Option[*int64]  `json:"cust_id"`
}

type updateOrderRequest struct {
	Notes mo.Option[*string] `json:"notes"`
}

type addLineRequest struct {
	ItemID mo.Option[*int64] `json:"item_id"`
}

func (h *OrderHandler) publish(eventType string, o *model.Order) {
	ev := queue.OrderEvent{
		Type:       eventType,
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Notes:      o.Notes,
		Timestamp:  o.Timestamp,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		_ = h.Events.PublishOrderEvent(ctx, ev)
	}()
}

// Create handles POST /orders/. The customer must exist.
func (h *OrderHandler) Create(c echo.Context) error {
	var body createOrderRequest
	if err := c.Bind(&body); err != nil {
		return badBody(c)
	}
	if idSupplied(body.ID) {
		return errorJSON(c, http.StatusBadRequest, "order_id must not be supplied")
	}
	notes, okNotes := body.Notes.Get()
	custID, okCust := body.CustomerID.Get()
	if !okNotes || !okCust || notes == nil || custID == nil {
		return errorJSON(c, http.StatusBadRequest, "notes and cust_id are required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order := &model.Order{Notes: *notes, CustomerID: *custID}
	if err := h.Orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return errorJSON(c, http.StatusNotFound, "customer not found")
		}
		return internalError(c, "create order", err)
	}
	h.publish(queue.OrderCreated, order)
	return c.JSON(http.StatusCreated, order)
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.Orders.GetByID(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return errorJSON(c, http.StatusNotFound, "order not found")
	}
	if err != nil {
		return internalError(c, "get order", err)
	}
	return c.JSON(http.StatusOK, order)
}

// Update handles PUT /orders/:id. Only notes can change.
func (h *OrderHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}
	var body updateOrderRequest
	if err := c.Bind(&body); err != nil {
		return badBody(c)
	}
	notes, err := nonNull("notes", body.Notes)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Orders.UpdateNotes(ctx, id, notes); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return errorJSON(c, http.StatusNotFound, "order not found")
		}
		return internalError(c, "update order", err)
	}
	if order, err := h.Orders.GetByID(ctx, id); err == nil {
		h.publish(queue.OrderUpdated, order)
	}
	return messageJSON(c, "Order updated successfully")
}

// Delete handles DELETE /orders/:id, removing the order's lines with it.
func (h *OrderHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	deleted, err := h.Orders.Delete(ctx, id)
	if err != nil {
		return internalError(c, "delete order", err)
	}
	if deleted {
		h.publish(queue.OrderDeleted, &model.Order{ID: id})
	}
	return messageJSON(c, "Order deleted successfully")
}

// ListLines handles GET /orders/:id/items.
func (h *OrderHandler) ListLines(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	lines, err := h.Orders.Lines(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return errorJSON(c, http.StatusNotFound, "order not found")
	}
	if err != nil {
		return internalError(c, "list order lines", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": lines})
}

// AddLine handles POST /orders/:id/items with body {"item_id": N}.
func (h *OrderHandler) AddLine(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}
	var body addLineRequest
	if err := c.Bind(&body); err != nil {
		return badBody(c)
	}
	itemID, ok := body.ItemID.Get()
	if !ok || itemID == nil {
		return errorJSON(c, http.StatusBadRequest, "item_id is required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	line, err := h.Orders.AddLine(ctx, id, *itemID)
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		return errorJSON(c, http.StatusNotFound, "order not found")
	case errors.Is(err, repository.ErrItemNotFound):
		return errorJSON(c, http.StatusNotFound, "item not found")
	case err != nil:
		return internalError(c, "add order line", err)
	}
	return c.JSON(http.StatusCreated, line)
}
