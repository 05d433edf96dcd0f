package handler

import (
	"net/http"

	"hosting-storefront/internal/dto"
	"hosting-storefront/internal/middleware"
	"hosting-storefront/internal/model"
	"hosting-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req dto.CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), middleware.RequesterFrom(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	orders, err := h.orderService.ListForUser(c.Request().Context(), middleware.RequesterFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.orderService.Get(c.Request().Context(), middleware.RequesterFrom(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	orders, err := h.orderService.ListAll(c.Request().Context(), middleware.RequesterFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	var req dto.OrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.SetStatus(c.Request().Context(), middleware.RequesterFrom(c), c.Param("id"), model.OrderStatus(req.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}
