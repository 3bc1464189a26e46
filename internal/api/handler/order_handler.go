package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/closetshop/closet-api/internal/core/ports"
)

// IdempotencyHeader carries the client key that makes order placement safe
// to retry.
const IdempotencyHeader = "Idempotency-Key"

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Place handles POST /orders.
//
// 201 means every item was marked sold and the order recorded against the
// buyer. 202 means the order was stored but fulfilment is still being
// retried in the background. A replayed Idempotency-Key answers 200 with the
// original order.
//
// @Summary      Place an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     AccessToken
// @Param        Idempotency-Key  header    string             false  "Idempotency key to prevent duplicate orders"
// @Param        body             body      placeOrderRequest  true   "Items and shipping details"
// @Success      200              {object}  orderResponse
// @Success      201              {object}  orderResponse
// @Success      202              {object}  orderResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /orders [post]
func (h *OrderHandler) Place(c echo.Context) error {
	buyer, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	key := c.Request().Header.Get(IdempotencyHeader)
	result, err := h.service.PlaceOrder(c.Request().Context(), toPlaceOrderInput(req, buyer, key))
	if err != nil {
		return err
	}

	status := http.StatusCreated
	switch {
	case result.Replayed:
		status = http.StatusOK
	case !result.Order.Fulfilled:
		status = http.StatusAccepted
	}

	c.Response().Header().Set(echo.HeaderLocation, "/orders/"+result.Order.ID)
	return c.JSON(status, toOrderResponse(result.Order))
}

// Get handles GET /orders/:orderId.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     AccessToken
// @Param        orderId  path      string  true  "Order ID"
// @Success      200      {object}  orderResponse
// @Failure      401      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /orders/{orderId} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	view, err := h.service.GetOrder(c.Request().Context(), actor, c.Param("orderId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderViewResponse(*view))
}

// UpdateStatus handles PUT /orders/:orderId/status.
//
// @Summary      Advance an order
// @Description  Pending → Processing → Shipped. Any other move answers 409.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     AccessToken
// @Param        orderId  path      string               true  "Order ID"
// @Param        body     body      updateStatusRequest  true  "Target status"
// @Success      200      {object}  orderResponse
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /orders/{orderId}/status [put]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.UpdateStatus(c.Request().Context(), c.Param("orderId"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}
